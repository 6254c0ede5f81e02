package tsp

import "iter"

// Permutations returns every ordering of items, lazily, in lexicographic
// order of positions: the first ordering is items as given and the last is
// items with positions fully reversed. It yields exactly len(items)! orderings,
// even when values repeat. For zero or one item it yields the input once.
//
// The sequence is restartable: every range over it starts from the original
// order again, and items itself is never modified.
//
// The yielded slice is a buffer shared across steps and overwritten by the
// next one. Callers that keep a permutation past the current step must copy it.
func Permutations(items []int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		n := len(items)
		buf := make([]int, n)
		copy(buf, items)
		pos := make([]int, n)
		for i := range pos {
			pos[i] = i
		}
		for {
			if !yield(buf) {
				return
			}
			if !nextPermutation(pos, buf) {
				return
			}
		}
	}
}

// nextPermutation advances pos to its lexicographic successor and applies the
// same swap and suffix reversal to vals. It reports false once pos is the
// final, strictly descending arrangement.
func nextPermutation(pos, vals []int) bool {
	n := len(pos)
	k := n - 2
	for k >= 0 && pos[k] >= pos[k+1] {
		k--
	}
	if k < 0 {
		return false
	}
	l := n - 1
	for pos[k] >= pos[l] {
		l--
	}
	pos[k], pos[l] = pos[l], pos[k]
	vals[k], vals[l] = vals[l], vals[k]
	reverse(pos[k+1:])
	reverse(vals[k+1:])
	return true
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
