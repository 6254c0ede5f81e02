package model

// NodeToResponse renders a node; latitude and longitude are null when the
// node has no location.
func NodeToResponse(n Node) NodeResponse {
	out := NodeResponse{ID: n.ID, Name: n.Name, Distance: float64(n.Distance)}
	if n.HasLocation() {
		lat, lon := n.Location.Lat(), n.Location.Lon()
		out.Latitude = &lat
		out.Longitude = &lon
	}
	return out
}

func NodesToResponse(nodes []Node) []NodeResponse {
	out := make([]NodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeToResponse(n))
	}
	return out
}

func RouteToResponse(r RouteDetail) RouteResponse {
	src := NodeToResponse(r.Source)
	dst := NodeToResponse(r.Destination)
	return RouteResponse{
		ID:              r.ID,
		Name:            r.Name,
		SourceNode:      &src,
		DestinationNode: &dst,
		FromDate:        r.FromDate,
		ToDate:          r.ToDate,
	}
}

// VehicleToResponse renders a trip; Route stays nil when the trip has no route loaded.
func VehicleToResponse(v VehicleTrip) VehicleResponse {
	out := VehicleResponse{Patent: v.Patent, Available: v.Available}
	if v.Route != nil {
		rr := RouteToResponse(*v.Route)
		out.Route = &rr
	}
	return out
}

func VehiclesToResponse(trips []VehicleTrip) []VehicleResponse {
	out := make([]VehicleResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, VehicleToResponse(t))
	}
	return out
}
