package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"logistica/internal/model"
)

// SeedFile is the YAML layout accepted by Seed. Routes reference nodes and
// vehicles reference routes by name.
type SeedFile struct {
	Nodes  []model.NodeInput `yaml:"nodes"`
	Routes []struct {
		Name        string    `yaml:"name"`
		Source      string    `yaml:"source"`
		Destination string    `yaml:"destination"`
		From        time.Time `yaml:"from"`
		To          time.Time `yaml:"to"`
	} `yaml:"routes"`
	Vehicles []struct {
		Patent    string `yaml:"patent"`
		Route     string `yaml:"route"`
		Available bool   `yaml:"available"`
	} `yaml:"vehicles"`
}

type SeedReport struct {
	Nodes, Routes, Vehicles int
}

// Seed loads a SeedFile into s. Nodes that already exist (by name) are
// reused, so seeding the same file twice adds routes and vehicles only.
func Seed(ctx context.Context, s Store, r io.Reader) (SeedReport, error) {
	var rep SeedReport
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return rep, fmt.Errorf("seed: decode: %w", err)
	}

	existing, err := s.ListNodes(ctx)
	if err != nil { return rep, err }
	nodeIDs := make(map[string]int, len(existing)+len(f.Nodes))
	for _, n := range existing {
		nodeIDs[nameKey(n.Name)] = n.ID
	}
	for _, in := range f.Nodes {
		key := nameKey(in.Name)
		if _, ok := nodeIDs[key]; ok { continue }
		n, err := s.CreateNode(ctx, in)
		if err != nil { return rep, fmt.Errorf("seed: node %q: %w", in.Name, err) }
		nodeIDs[key] = n.ID
		rep.Nodes++
	}

	routeIDs := make(map[string]int, len(f.Routes))
	for _, rt := range f.Routes {
		src, ok := nodeIDs[nameKey(rt.Source)]
		if !ok { return rep, fmt.Errorf("seed: route %q: source %q: %w", rt.Name, rt.Source, ErrNotFound) }
		dst, ok := nodeIDs[nameKey(rt.Destination)]
		if !ok { return rep, fmt.Errorf("seed: route %q: destination %q: %w", rt.Name, rt.Destination, ErrNotFound) }
		rd, err := s.CreateRoute(ctx, model.RouteInput{Name: rt.Name, SourceNodeID: src, DestinationNodeID: dst, FromDate: rt.From, ToDate: rt.To})
		if err != nil { return rep, fmt.Errorf("seed: route %q: %w", rt.Name, err) }
		routeIDs[strings.TrimSpace(rt.Name)] = rd.ID
		rep.Routes++
	}

	for _, v := range f.Vehicles {
		rid, ok := routeIDs[strings.TrimSpace(v.Route)]
		if !ok { return rep, fmt.Errorf("seed: vehicle %q: route %q: %w", v.Patent, v.Route, ErrNotFound) }
		if _, err := s.CreateVehicle(ctx, model.VehicleInput{Patent: v.Patent, RouteID: rid, Available: v.Available}); err != nil {
			return rep, fmt.Errorf("seed: vehicle %q: %w", v.Patent, err)
		}
		rep.Vehicles++
	}
	return rep, nil
}

func nameKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
