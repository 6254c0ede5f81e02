package tsp

import (
	"context"
	"fmt"
)

// cancelCheckEvery is how many permutations are scored between context checks.
const cancelCheckEvery = 1024

// Options tunes a Solver. The zero value is an unbounded exhaustive search.
type Options struct {
	// MaxDestinations rejects larger destination sets with
	// ErrTooManyDestinations. Zero means no limit.
	MaxDestinations int
}

// Result is the cheapest round trip found.
type Result struct {
	// Tour lists the destination identifiers in visiting order. The trip
	// returns from the last element to the first.
	Tour []int
	// Cost is the total cycle cost of Tour.
	Cost int
	// Evaluated is the number of orderings scored.
	Evaluated uint64
}

// Solver runs the exhaustive search. It holds no per-call state and is safe
// for concurrent use.
type Solver struct {
	opts Options
}

// NewSolver returns a Solver with the given options.
func NewSolver(opts Options) *Solver {
	return &Solver{opts: opts}
}

// Solve finds the cheapest round trip visiting every destination once, using
// the package defaults (no destination limit).
func Solve(ctx context.Context, m *Matrix, destinations []int) (Result, error) {
	return NewSolver(Options{}).Solve(ctx, m, destinations)
}

// Solve scores every ordering of destinations against m and returns the
// cheapest. Ties keep the ordering found first, so the result is
// deterministic for a given input order.
//
// Destinations must be known to m and distinct. An empty set yields an empty
// tour of cost 0. The context is checked between orderings; on cancellation
// the context error is returned and no partial result.
func (s *Solver) Solve(ctx context.Context, m *Matrix, destinations []int) (Result, error) {
	if s.opts.MaxDestinations > 0 && len(destinations) > s.opts.MaxDestinations {
		return Result{}, fmt.Errorf("%d destinations, limit %d: %w", len(destinations), s.opts.MaxDestinations, ErrTooManyDestinations)
	}
	seen := make(map[int]struct{}, len(destinations))
	for _, id := range destinations {
		if _, dup := seen[id]; dup {
			return Result{}, fmt.Errorf("node %d: %w", id, ErrDuplicateDestination)
		}
		seen[id] = struct{}{}
	}
	idx, err := m.resolve(destinations)
	if err != nil {
		return Result{}, err
	}

	best := make([]int, len(idx))
	bestCost := -1
	var evaluated uint64
	for perm := range Permutations(idx) {
		if evaluated%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, fmt.Errorf("tsp: search stopped after %d orderings: %w", evaluated, err)
			}
		}
		evaluated++
		if c := m.cycleCost(perm); bestCost < 0 || c < bestCost {
			bestCost = c
			copy(best, perm)
		}
	}

	tour := make([]int, len(best))
	for k, i := range best {
		tour[k] = m.ids[i]
	}
	return Result{Tour: tour, Cost: bestCost, Evaluated: evaluated}, nil
}
