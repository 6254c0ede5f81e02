package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"logistica/internal/model"
)

// Store is the persistence interface used by the API server and the planner.
type Store interface {
	// Nodes
	ListNodes(ctx context.Context) ([]model.Node, error)
	GetNode(ctx context.Context, id int) (model.Node, error)
	CreateNode(ctx context.Context, in model.NodeInput) (model.Node, error)

	// Routes
	ListRoutes(ctx context.Context) ([]model.RouteDetail, error)
	CreateRoute(ctx context.Context, in model.RouteInput) (model.RouteDetail, error)

	// Vehicles (one row per trip)
	CreateVehicle(ctx context.Context, in model.VehicleInput) (model.VehicleTrip, error)
	// ListVehicleTrips returns the trips of patent, newest route start first.
	ListVehicleTrips(ctx context.Context, patent string, limit int) ([]model.VehicleTrip, error)
	ListVehiclesByAvailability(ctx context.Context, available bool) ([]model.VehicleTrip, error)
	// SetVehicleAvailability updates every row of patent and returns how many changed.
	SetVehicleAvailability(ctx context.Context, patent string, available bool) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	// ErrInvalid rejects input no backend may store, whatever its caller
	// validated beforehand.
	ErrInvalid = errors.New("invalid input")
)

// MaxTripsLimit caps ListVehicleTrips.
const MaxTripsLimit = 100

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > MaxTripsLimit {
		return MaxTripsLimit
	}
	return limit
}

// checkNode enforces what the solver needs from every stored node.
func checkNode(in model.NodeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("node name is blank: %w", ErrInvalid)
	}
	if in.Distance < 0 {
		return fmt.Errorf("node %q distance %d is negative: %w", in.Name, in.Distance, ErrInvalid)
	}
	return nil
}

func checkVehicle(in model.VehicleInput) error {
	if strings.TrimSpace(in.Patent) == "" {
		return fmt.Errorf("vehicle patent is blank: %w", ErrInvalid)
	}
	return nil
}
