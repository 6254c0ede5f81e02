package tsp_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"logistica/internal/tsp"
)

func collect(items []int) [][]int {
	var out [][]int
	for p := range tsp.Permutations(items) {
		out = append(out, slices.Clone(p))
	}
	return out
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

func TestPermutations_CountAndDistinct(t *testing.T) {
	for m := 0; m <= 6; m++ {
		t.Run(fmt.Sprintf("M=%d", m), func(t *testing.T) {
			items := make([]int, m)
			for i := range items {
				items[i] = (i + 1) * 11
			}
			perms := collect(items)
			require.Len(t, perms, factorial(m))

			seen := map[string]struct{}{}
			sortedItems := slices.Sorted(slices.Values(items))
			for _, p := range perms {
				key := fmt.Sprint(p)
				_, dup := seen[key]
				require.Falsef(t, dup, "duplicate permutation %v", p)
				seen[key] = struct{}{}
				require.Equal(t, sortedItems, slices.Sorted(slices.Values(p)))
			}
		})
	}
}

func TestPermutations_LexicographicOverPositions(t *testing.T) {
	// Values are deliberately not sorted: order follows positions, not values.
	got := collect([]int{30, 10, 20})
	want := [][]int{
		{30, 10, 20},
		{30, 20, 10},
		{10, 30, 20},
		{10, 20, 30},
		{20, 30, 10},
		{20, 10, 30},
	}
	require.Equal(t, want, got)
}

func TestPermutations_SingleAndEmpty(t *testing.T) {
	require.Equal(t, [][]int{{7}}, collect([]int{7}))

	empty := collect(nil)
	require.Len(t, empty, 1)
	require.Empty(t, empty[0])
}

func TestPermutations_MultisetYieldsFactorial(t *testing.T) {
	require.Len(t, collect([]int{4, 4, 4}), 6)
}

func TestPermutations_RestartableAndInputUntouched(t *testing.T) {
	items := []int{3, 1, 2}
	seq := tsp.Permutations(items)

	var first, second [][]int
	for p := range seq {
		first = append(first, slices.Clone(p))
	}
	for p := range seq {
		second = append(second, slices.Clone(p))
	}
	require.Equal(t, first, second)
	require.Equal(t, []int{3, 1, 2}, items)
}

func TestPermutations_EarlyBreak(t *testing.T) {
	n := 0
	for range tsp.Permutations([]int{1, 2, 3, 4}) {
		n++
		if n == 5 {
			break
		}
	}
	require.Equal(t, 5, n)
}

func TestPermutations_SharedBuffer(t *testing.T) {
	// Without copying, retained slices all alias the same buffer.
	var kept [][]int
	for p := range tsp.Permutations([]int{1, 2}) {
		kept = append(kept, p)
	}
	require.Len(t, kept, 2)
	require.Equal(t, kept[0], kept[1])
}
