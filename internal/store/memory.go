package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"logistica/internal/model"
)

// Memory is a simple in-memory store used when no database is configured.
type Memory struct {
	mu       sync.Mutex
	nodes    map[int]model.Node
	byName   map[string]int // lower(name) -> node id
	routes   map[int]model.Route
	vehicles map[int]model.Vehicle
	nextNode int
	nextRt   int
	nextVeh  int
}

func NewMemory() *Memory {
	return &Memory{
		nodes:    map[int]model.Node{},
		byName:   map[string]int{},
		routes:   map[int]model.Route{},
		vehicles: map[int]model.Vehicle{},
	}
}

func (m *Memory) ListNodes(ctx context.Context) ([]model.Node, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	out := make([]model.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b model.Node) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) GetNode(ctx context.Context, id int) (model.Node, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok { return model.Node{}, fmt.Errorf("node %d: %w", id, ErrNotFound) }
	return n, nil
}

func (m *Memory) CreateNode(ctx context.Context, in model.NodeInput) (model.Node, error) {
	if err := checkNode(in); err != nil { return model.Node{}, err }
	m.mu.Lock(); defer m.mu.Unlock()
	key := nameKey(in.Name)
	if _, ok := m.byName[key]; ok {
		return model.Node{}, fmt.Errorf("node %q: %w", in.Name, ErrConflict)
	}
	m.nextNode++
	n := model.Node{ID: m.nextNode, Name: strings.TrimSpace(in.Name), Distance: in.Distance, Location: in.Point()}
	m.nodes[n.ID] = n
	m.byName[key] = n.ID
	return n, nil
}

func (m *Memory) ListRoutes(ctx context.Context) ([]model.RouteDetail, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	out := make([]model.RouteDetail, 0, len(m.routes))
	for _, r := range m.routes {
		out = append(out, m.detail(r))
	}
	slices.SortFunc(out, func(a, b model.RouteDetail) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) CreateRoute(ctx context.Context, in model.RouteInput) (model.RouteDetail, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	for _, id := range []int{in.SourceNodeID, in.DestinationNodeID} {
		if _, ok := m.nodes[id]; !ok {
			return model.RouteDetail{}, fmt.Errorf("node %d: %w", id, ErrNotFound)
		}
	}
	m.nextRt++
	r := model.Route{
		ID:                m.nextRt,
		Name:              in.Name,
		SourceNodeID:      in.SourceNodeID,
		DestinationNodeID: in.DestinationNodeID,
		FromDate:          in.FromDate.UTC(),
		ToDate:            in.ToDate.UTC(),
	}
	m.routes[r.ID] = r
	return m.detail(r), nil
}

func (m *Memory) CreateVehicle(ctx context.Context, in model.VehicleInput) (model.VehicleTrip, error) {
	if err := checkVehicle(in); err != nil { return model.VehicleTrip{}, err }
	m.mu.Lock(); defer m.mu.Unlock()
	if _, ok := m.routes[in.RouteID]; !ok {
		return model.VehicleTrip{}, fmt.Errorf("route %d: %w", in.RouteID, ErrNotFound)
	}
	m.nextVeh++
	v := model.Vehicle{ID: m.nextVeh, Patent: strings.TrimSpace(in.Patent), RouteID: in.RouteID, Available: in.Available}
	m.vehicles[v.ID] = v
	return m.trip(v), nil
}

func (m *Memory) ListVehicleTrips(ctx context.Context, patent string, limit int) ([]model.VehicleTrip, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	var out []model.VehicleTrip
	for _, v := range m.vehicles {
		if v.Patent == patent { out = append(out, m.trip(v)) }
	}
	slices.SortFunc(out, func(a, b model.VehicleTrip) int {
		if c := b.Route.FromDate.Compare(a.Route.FromDate); c != 0 { return c }
		return cmp.Compare(b.ID, a.ID)
	})
	if limit = clampLimit(limit); len(out) > limit { out = out[:limit] }
	return out, nil
}

func (m *Memory) ListVehiclesByAvailability(ctx context.Context, available bool) ([]model.VehicleTrip, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	var out []model.VehicleTrip
	for _, v := range m.vehicles {
		if v.Available == available { out = append(out, m.trip(v)) }
	}
	slices.SortFunc(out, func(a, b model.VehicleTrip) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) SetVehicleAvailability(ctx context.Context, patent string, available bool) (int, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	n := 0
	for id, v := range m.vehicles {
		if v.Patent != patent { continue }
		v.Available = available
		m.vehicles[id] = v
		n++
	}
	if n == 0 { return 0, fmt.Errorf("vehicle %q: %w", patent, ErrNotFound) }
	return n, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// detail and trip expect m.mu held. Routes always reference existing nodes.
func (m *Memory) detail(r model.Route) model.RouteDetail {
	return model.RouteDetail{Route: r, Source: m.nodes[r.SourceNodeID], Destination: m.nodes[r.DestinationNodeID]}
}

func (m *Memory) trip(v model.Vehicle) model.VehicleTrip {
	t := model.VehicleTrip{Vehicle: v}
	if r, ok := m.routes[v.RouteID]; ok {
		d := m.detail(r)
		t.Route = &d
	}
	return t
}
