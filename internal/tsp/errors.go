// Package tsp finds the cheapest round trip through a small set of nodes by
// exhaustive search.
//
// The package has four parts:
//
//   - NewMatrix builds a symmetric distance matrix from the known nodes.
//   - Permutations lazily enumerates every ordering of a destination set.
//   - TourCost scores one ordering as a closed cycle.
//   - Solver.Solve drives enumeration and keeps the cheapest ordering.
//
// The search is exact and factorial in the number of destinations. It is
// meant for small inputs; Options.MaxDestinations bounds the work.
package tsp

import "errors"

// Precondition errors. They are always wrapped with the offending
// identifier or value; match them with errors.Is.
var (
	// ErrInvalidNode is returned for a node identifier that is not positive.
	ErrInvalidNode = errors.New("tsp: invalid node identifier")
	// ErrDuplicateNode is returned when the node list repeats an identifier.
	ErrDuplicateNode = errors.New("tsp: duplicate node identifier")
	// ErrNegativeDistance is returned for a node with a negative distance value.
	ErrNegativeDistance = errors.New("tsp: negative distance")
	// ErrUnknownNode is returned when a tour or destination references an
	// identifier the matrix does not contain.
	ErrUnknownNode = errors.New("tsp: unknown node")
	// ErrDuplicateDestination is returned when a destination set repeats an identifier.
	ErrDuplicateDestination = errors.New("tsp: duplicate destination")
	// ErrTooManyDestinations is returned when the destination count exceeds
	// Options.MaxDestinations.
	ErrTooManyDestinations = errors.New("tsp: too many destinations")
)

// IsPrecondition reports whether err is one of the input validation errors
// above, as opposed to cancellation or an internal failure.
func IsPrecondition(err error) bool {
	for _, target := range []error{
		ErrInvalidNode,
		ErrDuplicateNode,
		ErrNegativeDistance,
		ErrUnknownNode,
		ErrDuplicateDestination,
		ErrTooManyDestinations,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
