// Package reduce collapses square windows of a float plane to single
// representative values.
package reduce

import (
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Func reduces a flattened window to one value. It may reorder w in place.
type Func func(w []float64) float64

func Min(w []float64) float64 { return floats.Min(w) }

func Max(w []float64) float64 { return floats.Max(w) }

// Median returns the element at len/2 of the sorted window.
func Median(w []float64) float64 {
	slices.Sort(w)
	return w[len(w)/2]
}

// Middle returns the element physically at the window center, without
// sorting.
func Middle(w []float64) float64 {
	return w[len(w)/2]
}

// FindPixel picks the pixel that best represents a patch: the minority
// extreme when the window is skewed toward it, the center pixel otherwise.
func FindPixel(w []float64) float64 {
	half := len(w) / 2
	mid := w[half]
	slices.Sort(w)
	med := w[half]
	mu := floats.Sum(w) / float64(len(w))
	lo, hi := w[0], w[len(w)-1]
	brightSpan := hi - med
	darkSpan := med - lo
	if med < mu && brightSpan > darkSpan {
		return lo
	}
	if med > mu && brightSpan < darkSpan {
		return hi
	}
	return mid
}
