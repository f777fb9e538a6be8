package algos

import (
	"golang.org/x/exp/constraints"
)

// this package provides some generic (in both senses of the word) algorithmic conveniences.

func MapRange[S any](begin, end int, f func(int) S) []S {
	out := make([]S, end-begin)
	for i := begin; i < end; i++ {
		out[i] = f(i)
	}
	return out
}

func Max[T constraints.Ordered](a T, bs ...T) T {
	for _, b := range bs {
		if b > a {
			a = b
		}
	}
	return a
}

// Search returns the number of elements of the sorted slice strictly
// below x, which is also the index where x would insert to keep the
// slice sorted.
func Search[T constraints.Ordered](slice []T, x T) int {
	lo, hi := 0, len(slice)
	for lo < hi {
		mid := (lo + hi) / 2
		if slice[mid] < x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
