package utils

import "cmp"

// Clamp bounds x to [lo, hi].
func Clamp[T cmp.Ordered](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
