// Package planner answers shortest round-trip queries against stored nodes.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"logistica/internal/metrics"
	"logistica/internal/model"
	"logistica/internal/tsp"
)

var (
	// ErrUnknownDestination is returned for a name no stored node carries.
	ErrUnknownDestination = errors.New("unknown destination")
	// ErrBlankDestination is returned for an empty or whitespace-only name.
	ErrBlankDestination = errors.New("blank destination name")
	// ErrTooManyNodes is returned when the store holds more nodes than
	// Options.MaxNodes allows in one distance matrix.
	ErrTooManyNodes = errors.New("too many stored nodes")
)

// NodeLister is the part of the store the planner reads.
type NodeLister interface {
	ListNodes(ctx context.Context) ([]model.Node, error)
}

// Options bound the work of one ShortestRoute call.
type Options struct {
	MaxDestinations int
	// MaxNodes caps the stored node count a matrix is built over. The
	// matrix holds one int per node pair. Zero disables the cap.
	MaxNodes int
	// Timeout bounds one search. Zero leaves only the caller's deadline.
	Timeout time.Duration
}

// Planner resolves destination names against a NodeLister and solves the
// round trip. It is safe for concurrent use.
type Planner struct {
	nodes    NodeLister
	solver   *tsp.Solver
	maxNodes int
	timeout  time.Duration
	tracer   trace.Tracer
}

// New returns a Planner reading nodes from the given lister.
func New(nodes NodeLister, opts Options) *Planner {
	return &Planner{
		nodes:    nodes,
		solver:   tsp.NewSolver(tsp.Options{MaxDestinations: opts.MaxDestinations}),
		maxNodes: opts.MaxNodes,
		timeout:  opts.Timeout,
		tracer:   otel.Tracer("logistica/internal/planner"),
	}
}

// IsInvalidInput reports whether err was caused by the request rather than
// by the store or a deadline.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrUnknownDestination) || errors.Is(err, ErrBlankDestination) || tsp.IsPrecondition(err)
}

// ShortestRoute resolves names (trimmed, case-insensitive) to stored nodes
// and returns the cheapest round trip through them in visiting order.
func (p *Planner) ShortestRoute(ctx context.Context, names []string) (resp model.ShortestRouteResponse, err error) {
	ctx, span := p.tracer.Start(ctx, "planner.ShortestRoute", trace.WithAttributes(attribute.Int("tsp.destinations", len(names))))
	start := time.Now()
	var evaluated uint64
	defer func() {
		outcome := classify(err)
		metrics.Solves.WithLabelValues(outcome).Inc()
		metrics.SolveDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		metrics.PermutationsEvaluated.Add(float64(evaluated))
		span.SetAttributes(attribute.String("tsp.outcome", outcome), attribute.Int64("tsp.evaluated", int64(evaluated)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()
	metrics.Destinations.Observe(float64(len(names)))

	nodes, err := p.nodes.ListNodes(ctx)
	if err != nil {
		return resp, fmt.Errorf("planner: list nodes: %w", err)
	}
	if p.maxNodes > 0 && len(nodes) > p.maxNodes {
		return resp, fmt.Errorf("planner: %d nodes, limit %d: %w", len(nodes), p.maxNodes, ErrTooManyNodes)
	}
	byName := make(map[string]model.Node, len(nodes))
	byID := make(map[int]model.Node, len(nodes))
	tn := make([]tsp.Node, 0, len(nodes))
	for _, n := range nodes {
		byName[strings.ToLower(n.Name)] = n
		byID[n.ID] = n
		tn = append(tn, tsp.Node{ID: n.ID, Distance: n.Distance})
	}

	dest := make([]int, 0, len(names))
	for i, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return resp, fmt.Errorf("nodes[%d]: %w", i, ErrBlankDestination)
		}
		n, ok := byName[key]
		if !ok {
			return resp, fmt.Errorf("%q: %w", name, ErrUnknownDestination)
		}
		dest = append(dest, n.ID)
	}

	m, err := tsp.NewMatrix(tn)
	if err != nil {
		return resp, fmt.Errorf("planner: %w", err)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	res, err := p.solver.Solve(ctx, m, dest)
	evaluated = res.Evaluated
	if err != nil {
		return resp, err
	}
	span.SetAttributes(attribute.Int("tsp.cost", res.Cost))

	resp.MinDistance = res.Cost
	resp.ShorterRoute = make([]model.NodeResponse, 0, len(res.Tour))
	for _, id := range res.Tour {
		resp.ShorterRoute = append(resp.ShorterRoute, model.NodeToResponse(byID[id]))
	}
	return resp, nil
}

func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsInvalidInput(err):
		return "invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrTooManyNodes):
		return "rejected"
	}
	return "error"
}
