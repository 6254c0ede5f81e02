package tsp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"logistica/internal/tsp"
)

func threeNodes() []tsp.Node {
	return []tsp.Node{{ID: 1, Distance: 10}, {ID: 2, Distance: 20}, {ID: 3, Distance: 5}}
}

func TestNewMatrix_SymmetricEarlierNodeRule(t *testing.T) {
	m, err := tsp.NewMatrix(threeNodes())
	require.NoError(t, err)
	require.Equal(t, 3, m.Len())

	want := [][]int{
		{0, 10, 10},
		{10, 0, 20},
		{10, 20, 0},
	}
	for i := range want {
		for j := range want[i] {
			require.Equalf(t, want[i][j], m.At(i, j), "cell (%d,%d)", i, j)
			require.Equal(t, m.At(i, j), m.At(j, i))
		}
	}
}

func TestNewMatrix_SparseIdentifiersAndInputOrder(t *testing.T) {
	// Unsorted, non-contiguous identifiers map through the index, not id-1.
	m, err := tsp.NewMatrix([]tsp.Node{{ID: 40, Distance: 7}, {ID: 5, Distance: 3}, {ID: 12, Distance: 9}})
	require.NoError(t, err)
	require.Equal(t, []int{5, 12, 40}, m.IDs())

	i, ok := m.Index(40)
	require.True(t, ok)
	require.Equal(t, 2, i)
	_, ok = m.Index(1)
	require.False(t, ok)

	d, err := m.Distance(5, 40)
	require.NoError(t, err)
	require.Equal(t, 3, d)
	d, err = m.Distance(40, 12)
	require.NoError(t, err)
	require.Equal(t, 9, d)
	d, err = m.Distance(12, 12)
	require.NoError(t, err)
	require.Zero(t, d)
}

func TestNewMatrix_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		nodes []tsp.Node
		want  error
		msg   string
	}{
		{"zero id", []tsp.Node{{ID: 0, Distance: 1}}, tsp.ErrInvalidNode, "node 0"},
		{"negative id", []tsp.Node{{ID: 2, Distance: 1}, {ID: -3, Distance: 1}}, tsp.ErrInvalidNode, "node -3"},
		{"duplicate", []tsp.Node{{ID: 2, Distance: 1}, {ID: 2, Distance: 4}}, tsp.ErrDuplicateNode, "node 2"},
		{"negative distance", []tsp.Node{{ID: 1, Distance: 1}, {ID: 2, Distance: -4}}, tsp.ErrNegativeDistance, "distance -4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tsp.NewMatrix(tc.nodes)
			require.ErrorIs(t, err, tc.want)
			require.Contains(t, err.Error(), tc.msg)
			require.True(t, tsp.IsPrecondition(err))
		})
	}
}

func TestMatrix_DistanceUnknownNode(t *testing.T) {
	m, err := tsp.NewMatrix(threeNodes())
	require.NoError(t, err)
	_, err = m.Distance(1, 4)
	require.ErrorIs(t, err, tsp.ErrUnknownNode)
	require.Contains(t, err.Error(), "node 4")
}

func TestMatrix_AtPanicsOutOfRange(t *testing.T) {
	m, err := tsp.NewMatrix(threeNodes())
	require.NoError(t, err)
	require.Panics(t, func() { m.At(3, 0) })
}

func TestNewMatrix_Empty(t *testing.T) {
	m, err := tsp.NewMatrix(nil)
	require.NoError(t, err)
	require.Zero(t, m.Len())
}
