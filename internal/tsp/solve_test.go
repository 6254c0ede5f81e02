package tsp_test

import (
	"context"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"logistica/internal/tsp"
)

func mustMatrix(t *testing.T, nodes []tsp.Node) *tsp.Matrix {
	t.Helper()
	m, err := tsp.NewMatrix(nodes)
	require.NoError(t, err)
	return m
}

func TestTourCost(t *testing.T) {
	m := mustMatrix(t, threeNodes())

	c, err := tsp.TourCost(m, []int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 40, c) // 10 + 20 + 10

	c, err = tsp.TourCost(m, []int{2, 3})
	require.NoError(t, err)
	require.Equal(t, 40, c) // 20 there, 20 back

	c, err = tsp.TourCost(m, []int{3})
	require.NoError(t, err)
	require.Zero(t, c)

	c, err = tsp.TourCost(m, nil)
	require.NoError(t, err)
	require.Zero(t, c)

	_, err = tsp.TourCost(m, []int{1, 9})
	require.ErrorIs(t, err, tsp.ErrUnknownNode)
}

func TestSolve_ThreeNodeScenario(t *testing.T) {
	m := mustMatrix(t, threeNodes())
	res, err := tsp.Solve(context.Background(), m, []int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 40, res.Cost)
	// every 3-cycle costs 40, so the first ordering wins
	require.Equal(t, []int{1, 2, 3}, res.Tour)
	require.EqualValues(t, 6, res.Evaluated)
}

func TestSolve_EmptyAndSingle(t *testing.T) {
	m := mustMatrix(t, threeNodes())

	res, err := tsp.Solve(context.Background(), m, nil)
	require.NoError(t, err)
	require.Zero(t, res.Cost)
	require.NotNil(t, res.Tour)
	require.Empty(t, res.Tour)

	res, err = tsp.Solve(context.Background(), m, []int{1})
	require.NoError(t, err)
	require.Zero(t, res.Cost)
	require.Equal(t, []int{1}, res.Tour)
}

func TestSolve_Preconditions(t *testing.T) {
	m := mustMatrix(t, threeNodes())
	ctx := context.Background()

	for _, dest := range [][]int{{1, 4}, {0}, {-2, 1}} {
		_, err := tsp.Solve(ctx, m, dest)
		require.ErrorIs(t, err, tsp.ErrUnknownNode, "destinations %v", dest)
	}

	_, err := tsp.Solve(ctx, m, []int{1, 2, 1})
	require.ErrorIs(t, err, tsp.ErrDuplicateDestination)
	require.Contains(t, err.Error(), "node 1")

	_, err = tsp.NewSolver(tsp.Options{MaxDestinations: 2}).Solve(ctx, m, []int{1, 2, 3})
	require.ErrorIs(t, err, tsp.ErrTooManyDestinations)
	require.True(t, tsp.IsPrecondition(err))
}

func randomInstance(r *rand.Rand, n int) []tsp.Node {
	nodes := make([]tsp.Node, n)
	for i := range nodes {
		nodes[i] = tsp.Node{ID: (i + 1) * 3, Distance: r.Intn(50)}
	}
	return nodes
}

func TestSolve_GlobalMinimum(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		nodes := randomInstance(r, 7)
		m := mustMatrix(t, nodes)
		dest := []int{nodes[0].ID, nodes[2].ID, nodes[3].ID, nodes[5].ID, nodes[6].ID}

		res, err := tsp.Solve(context.Background(), m, dest)
		require.NoError(t, err)

		got, err := tsp.TourCost(m, res.Tour)
		require.NoError(t, err)
		require.Equal(t, res.Cost, got)

		for p := range tsp.Permutations(dest) {
			c, err := tsp.TourCost(m, p)
			require.NoError(t, err)
			require.LessOrEqual(t, res.Cost, c)
		}
	}
}

func TestSolve_IdempotentAndOrderIndependentCost(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	nodes := randomInstance(r, 8)
	m := mustMatrix(t, nodes)
	dest := []int{nodes[1].ID, nodes[4].ID, nodes[2].ID, nodes[7].ID, nodes[0].ID, nodes[5].ID}

	a, err := tsp.Solve(context.Background(), m, dest)
	require.NoError(t, err)
	b, err := tsp.Solve(context.Background(), m, dest)
	require.NoError(t, err)
	require.Equal(t, a, b)

	swapped := slices.Clone(dest)
	swapped[0], swapped[3] = swapped[3], swapped[0]
	c, err := tsp.Solve(context.Background(), m, swapped)
	require.NoError(t, err)
	require.Equal(t, a.Cost, c.Cost)
	require.ElementsMatch(t, dest, c.Tour)
}

func TestSolve_ResultIsIndependentCopy(t *testing.T) {
	m := mustMatrix(t, threeNodes())
	dest := []int{3, 1, 2}
	res, err := tsp.Solve(context.Background(), m, dest)
	require.NoError(t, err)
	res.Tour[0] = 99
	require.Equal(t, []int{3, 1, 2}, dest)

	again, err := tsp.Solve(context.Background(), m, dest)
	require.NoError(t, err)
	require.NotEqual(t, 99, again.Tour[0])
}

func TestSolve_Cancelled(t *testing.T) {
	m := mustMatrix(t, threeNodes())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tsp.Solve(ctx, m, []int{1, 2, 3})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, tsp.IsPrecondition(err))
}

func TestSolve_DeadlineMidSearch(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	nodes := randomInstance(r, 12)
	m := mustMatrix(t, nodes)
	dest := make([]int, len(nodes))
	for i, n := range nodes {
		dest[i] = n.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	res, err := tsp.Solve(ctx, m, dest)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, tsp.IsPrecondition(err))
	// The deadline passes after the search started, so the periodic check stopped it.
	require.NotContains(t, err.Error(), "after 0 orderings")
	require.Zero(t, res.Cost)
	require.Empty(t, res.Tour)
	// 12! orderings take tens of seconds; stopping must not wait for them.
	require.Less(t, elapsed, 2*time.Second)
}

func BenchmarkSolve8(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	nodes := randomInstance(r, 8)
	m, err := tsp.NewMatrix(nodes)
	if err != nil {
		b.Fatal(err)
	}
	dest := make([]int, len(nodes))
	for i, n := range nodes {
		dest[i] = n.ID
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tsp.Solve(context.Background(), m, dest); err != nil {
			b.Fatal(err)
		}
	}
}
