// Package xslices provides generic slice helpers missing from the standard slices package.
package xslices

import "golang.org/x/exp/constraints"

// At takes an element at the given index, where index can be negative, in which
// case it takes from the end of the slice.
func At[T any](slice []T, index int) T {
	if index < 0 {
		index = len(slice) + index
	}
	return slice[index]
}

// Last returns the last element of a slice.
func Last[T any](slice []T) T {
	return At(slice, -1)
}

// Map executes the given function sequentially for every element on in, and returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Product returns the product of all elements of the slice; 1 for an empty slice.
func Product[T constraints.Integer](slice []T) (product T) {
	product = 1
	for _, v := range slice {
		product *= v
	}
	return
}
