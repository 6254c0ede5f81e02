package api

import (
    "context"
    "net/http"
    "strings"
    "time"

    "logistica/internal/model"
)

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, 200, map[string]string{"status": "ok"})
}

// ReadyHandler pings the store and, when it can, the broker.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    type pinger interface{ Ping(ctx context.Context) error }
    ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
    defer cancel()
    if err := s.Store.Ping(ctx); err != nil { writeProblem(w, 503, "Not Ready", "store: "+err.Error(), r.URL.Path); return }
    if p, ok := s.Broker.(pinger); ok {
        if err := p.Ping(ctx); err != nil { writeProblem(w, 503, "Not Ready", "broker: "+err.Error(), r.URL.Path); return }
    }
    writeJSON(w, 200, map[string]string{"status": "ready"})
}

func (s *Server) ListNodesHandler(w http.ResponseWriter, r *http.Request) {
    nodes, err := s.Store.ListNodes(r.Context())
    if err != nil { writeError(w, r, "List nodes failed", err); return }
    writeJSON(w, http.StatusOK, model.NodesToResponse(nodes))
}

func (s *Server) CreateNodeHandler(w http.ResponseWriter, r *http.Request) {
    var in model.NodeInput
    if !decodeAndValidate(w, r, &in) { return }
    n, err := s.Store.CreateNode(r.Context(), in)
    if err != nil { writeError(w, r, "Create node failed", err); return }
    writeJSON(w, http.StatusCreated, model.NodeToResponse(n))
}

func (s *Server) ListRoutesHandler(w http.ResponseWriter, r *http.Request) {
    routes, err := s.Store.ListRoutes(r.Context())
    if err != nil { writeError(w, r, "List routes failed", err); return }
    out := make([]model.RouteResponse, 0, len(routes))
    for _, rd := range routes {
        out = append(out, model.RouteToResponse(rd))
    }
    writeJSON(w, http.StatusOK, out)
}

func (s *Server) CreateRouteHandler(w http.ResponseWriter, r *http.Request) {
    var in model.RouteInput
    if !decodeAndValidate(w, r, &in) { return }
    rd, err := s.Store.CreateRoute(r.Context(), in)
    if err != nil { writeError(w, r, "Create route failed", err); return }
    writeJSON(w, http.StatusCreated, model.RouteToResponse(rd))
}

func (s *Server) CreateVehicleHandler(w http.ResponseWriter, r *http.Request) {
    var in model.VehicleInput
    if !decodeAndValidate(w, r, &in) { return }
    in.Patent = strings.TrimSpace(in.Patent)
    trip, err := s.Store.CreateVehicle(r.Context(), in)
    if err != nil { writeError(w, r, "Create vehicle failed", err); return }
    writeJSON(w, http.StatusCreated, model.VehicleToResponse(trip))
}

// AvailabilityHandler handles PUT /api/v1/vehicules/{patent}/availability. A
// successful change is published to stream subscribers and webhooks.
func (s *Server) AvailabilityHandler(w http.ResponseWriter, r *http.Request) {
    patent := strings.TrimSpace(r.PathValue("patent"))
    var req model.AvailabilityRequest
    if !decodeAndValidate(w, r, &req) { return }
    n, err := s.Store.SetVehicleAvailability(r.Context(), patent, *req.Available)
    if err != nil { writeError(w, r, "Update availability failed", err); return }

    evt := model.VehicleEvent{Type: model.EventVehicleInTransit, Patent: patent, Available: *req.Available, Updated: n, TS: s.now().UTC()}
    if evt.Available { evt.Type = model.EventVehicleAvailable }
    s.publish(r.Context(), evt)
    writeJSON(w, http.StatusOK, evt)
}
