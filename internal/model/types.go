package model

import (
	"time"

	"github.com/paulmach/orb"
)

// Core domain records

type Node struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Distance int       `json:"distance"`
	Location orb.Point `json:"-"`
}

// HasLocation reports whether the node carries a location. The zero point
// means "no location", as an empty geometry does in storage.
func (n Node) HasLocation() bool { return n.Location != (orb.Point{}) }

type Route struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	SourceNodeID      int       `json:"sourceNodeId"`
	DestinationNodeID int       `json:"destinationNodeId"`
	FromDate          time.Time `json:"fromDate"`
	ToDate            time.Time `json:"toDate"`
}

// Vehicle is one trip of a truck: the same patent appears once per route driven.
type Vehicle struct {
	ID        int    `json:"id"`
	Patent    string `json:"patent"`
	RouteID   int    `json:"routeId"`
	Available bool   `json:"available"`
}

// RouteDetail is a route joined with both of its nodes.
type RouteDetail struct {
	Route
	Source      Node
	Destination Node
}

// VehicleTrip is a vehicle row joined with its route.
type VehicleTrip struct {
	Vehicle
	Route *RouteDetail
}

// Inputs

type NodeInput struct {
	Name      string   `json:"name" yaml:"name" validate:"required,notblank,max=200"`
	Distance  int      `json:"distance" yaml:"distance" validate:"gte=0"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude" validate:"omitempty,longitude"`
}

// Point returns the input location, or the zero point when either coordinate is missing.
func (in NodeInput) Point() orb.Point {
	if in.Latitude == nil || in.Longitude == nil {
		return orb.Point{}
	}
	return orb.Point{*in.Longitude, *in.Latitude}
}

type RouteInput struct {
	Name              string    `json:"name" validate:"required,max=200"`
	SourceNodeID      int       `json:"sourceNodeId" validate:"gt=0"`
	DestinationNodeID int       `json:"destinationNodeId" validate:"gt=0"`
	FromDate          time.Time `json:"fromDate" validate:"required"`
	ToDate            time.Time `json:"toDate" validate:"required,gtefield=FromDate"`
}

type VehicleInput struct {
	Patent    string `json:"patent" validate:"required,notblank,max=20"`
	RouteID   int    `json:"routeId" validate:"gt=0"`
	Available bool   `json:"available"`
}

// Requests and responses

type ShortestRouteRequest struct {
	Nodes []string `json:"nodes" validate:"dive,required"`
}

type NodeResponse struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Distance  float64  `json:"distance"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type ShortestRouteResponse struct {
	MinDistance  int            `json:"minDistance"`
	ShorterRoute []NodeResponse `json:"shorterRoute"`
}

type RouteResponse struct {
	ID              int           `json:"id"`
	Name            string        `json:"name"`
	SourceNode      *NodeResponse `json:"sourceNode"`
	DestinationNode *NodeResponse `json:"destinationNode"`
	FromDate        time.Time     `json:"fromDate"`
	ToDate          time.Time     `json:"toDate"`
}

type VehicleResponse struct {
	Patent    string         `json:"patent"`
	Route     *RouteResponse `json:"route"`
	Available bool           `json:"available"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// VehicleEvent is published when a vehicle changes availability.
type VehicleEvent struct {
	Type      string    `json:"type"`
	Patent    string    `json:"patent"`
	Available bool      `json:"available"`
	Updated   int       `json:"updated"`
	TS        time.Time `json:"ts"`
}

const (
	EventVehicleAvailable = "vehicle.available"
	EventVehicleInTransit = "vehicle.in_transit"
)
