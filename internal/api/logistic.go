package api

import (
    "net/http"
    "strconv"
    "strings"

    "logistica/internal/model"
    "logistica/internal/store"
)

// ShorterHandler handles POST /api/v1/logistic/shorter: the cheapest round
// trip through the named nodes.
func (s *Server) ShorterHandler(w http.ResponseWriter, r *http.Request) {
    var req model.ShortestRouteRequest
    if !decodeAndValidate(w, r, &req) { return }
    resp, err := s.Planner.ShortestRoute(r.Context(), req.Nodes)
    if err != nil {
        writeError(w, r, "Shortest route failed", err)
        return
    }
    writeJSON(w, http.StatusOK, resp)
}

// VehicleRoutesHandler handles GET /api/v1/logistic/routes?patent=X&cant=N:
// the last N trips of a vehicle, newest route start first.
func (s *Server) VehicleRoutesHandler(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    patent := strings.TrimSpace(q.Get("patent"))
    if patent == "" {
        writeProblem(w, http.StatusBadRequest, "Missing patent", "query parameter patent is required", r.URL.Path)
        return
    }
    limit := 10
    if v := q.Get("cant"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 0 {
            writeProblem(w, http.StatusBadRequest, "Invalid cant", "cant must be a non-negative integer", r.URL.Path)
            return
        }
        if n > store.MaxTripsLimit { n = store.MaxTripsLimit }
        limit = n
    }
    if limit == 0 {
        writeJSON(w, http.StatusOK, []model.VehicleResponse{})
        return
    }
    trips, err := s.Store.ListVehicleTrips(r.Context(), patent, limit)
    if err != nil {
        writeError(w, r, "List vehicle routes failed", err)
        return
    }
    writeJSON(w, http.StatusOK, model.VehiclesToResponse(trips))
}

// VehiclesInTravelHandler handles GET /api/v1/logistic/vehicules/travel.
func (s *Server) VehiclesInTravelHandler(w http.ResponseWriter, r *http.Request) {
    s.vehiclesByAvailability(w, r, false)
}

// VehiclesAvailableHandler handles GET /api/v1/logistic/vehicules/available.
func (s *Server) VehiclesAvailableHandler(w http.ResponseWriter, r *http.Request) {
    s.vehiclesByAvailability(w, r, true)
}

func (s *Server) vehiclesByAvailability(w http.ResponseWriter, r *http.Request, available bool) {
    trips, err := s.Store.ListVehiclesByAvailability(r.Context(), available)
    if err != nil {
        writeError(w, r, "List vehicles failed", err)
        return
    }
    writeJSON(w, http.StatusOK, model.VehiclesToResponse(trips))
}

// CreateNodeRouteHandler handles POST /api/v1/logistic. It stores a node and
// answers with a route whose source and destination are that node.
func (s *Server) CreateNodeRouteHandler(w http.ResponseWriter, r *http.Request) {
    var in model.NodeInput
    if !decodeAndValidate(w, r, &in) { return }
    n, err := s.Store.CreateNode(r.Context(), in)
    if err != nil {
        writeError(w, r, "Create node failed", err)
        return
    }
    nr := model.NodeToResponse(n)
    writeJSON(w, http.StatusCreated, model.RouteResponse{SourceNode: &nr, DestinationNode: &nr})
}
