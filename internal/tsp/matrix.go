package tsp

import (
	"cmp"
	"fmt"
	"slices"
)

// Node is the solver's view of a location: an identifier and the scalar
// distance value stored on it.
type Node struct {
	ID       int
	Distance int
}

// Matrix is a symmetric distance table addressed through an explicit
// identifier-to-index map, so identifiers need not be contiguous or start at 1.
// A Matrix is read-only after NewMatrix returns.
type Matrix struct {
	ids   []int
	index map[int]int
	cells []int // row-major, n*n
}

// NewMatrix builds the distance matrix for nodes.
//
// Nodes are ordered by ascending identifier. The diagonal is zero. For each
// pair (i, j) with i before j, both cell(i, j) and cell(j, i) hold the
// distance value of node i: each node's own scalar distance stands in for
// the edge weight to every node after it.
//
// Identifiers must be positive and unique and distances non-negative; the
// first violation is returned naming the offending node.
func NewMatrix(nodes []Node) (*Matrix, error) {
	sorted := slices.Clone(nodes)
	slices.SortFunc(sorted, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })

	n := len(sorted)
	m := &Matrix{
		ids:   make([]int, n),
		index: make(map[int]int, n),
		cells: make([]int, n*n),
	}
	for i, node := range sorted {
		if node.ID <= 0 {
			return nil, fmt.Errorf("node %d: %w", node.ID, ErrInvalidNode)
		}
		if node.Distance < 0 {
			return nil, fmt.Errorf("node %d distance %d: %w", node.ID, node.Distance, ErrNegativeDistance)
		}
		if _, dup := m.index[node.ID]; dup {
			return nil, fmt.Errorf("node %d: %w", node.ID, ErrDuplicateNode)
		}
		m.ids[i] = node.ID
		m.index[node.ID] = i
	}
	for i := 0; i < n; i++ {
		d := sorted[i].Distance
		for j := i + 1; j < n; j++ {
			m.cells[i*n+j] = d
			m.cells[j*n+i] = d
		}
	}
	return m, nil
}

// Len returns the number of nodes in the matrix.
func (m *Matrix) Len() int { return len(m.ids) }

// IDs returns the node identifiers in index order.
func (m *Matrix) IDs() []int { return slices.Clone(m.ids) }

// Index returns the matrix index of a node identifier.
func (m *Matrix) Index(id int) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// At returns the cell at matrix indices (i, j). It panics on out-of-range
// indices like any slice access; use Distance for identifier lookups.
func (m *Matrix) At(i, j int) int {
	n := len(m.ids)
	if i < 0 || j < 0 || i >= n || j >= n {
		panic(fmt.Sprintf("tsp: matrix index (%d,%d) out of range [0,%d)", i, j, n))
	}
	return m.cells[i*n+j]
}

// Distance returns the edge weight between two node identifiers.
func (m *Matrix) Distance(fromID, toID int) (int, error) {
	i, ok := m.index[fromID]
	if !ok {
		return 0, fmt.Errorf("node %d: %w", fromID, ErrUnknownNode)
	}
	j, ok := m.index[toID]
	if !ok {
		return 0, fmt.Errorf("node %d: %w", toID, ErrUnknownNode)
	}
	return m.cells[i*len(m.ids)+j], nil
}

// resolve maps identifiers to matrix indices.
func (m *Matrix) resolve(ids []int) ([]int, error) {
	out := make([]int, len(ids))
	for k, id := range ids {
		i, ok := m.index[id]
		if !ok {
			return nil, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
		}
		out[k] = i
	}
	return out, nil
}
