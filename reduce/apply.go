package reduce

import (
	"fmt"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/grid"
)

func padShift(k, stride int) (start, end int) {
	s := max(k-stride, 0)
	return s / 2, s - s/2
}

// PadSize returns the size of the edge-padded buffer windows of size k at
// the given stride are taken from.
func PadSize(w, h, k, stride int) (int, int) {
	s := max(k-stride, 0)
	return w + s, h + s
}

// ResultSize returns how many k-sized windows at the given stride fit in a
// padded buffer of pw×ph.
func ResultSize(pw, ph, k, stride int) (int, int) {
	rw, rh := 0, 0
	if pw >= k {
		rw = (pw-k)/stride + 1
	}
	if ph >= k {
		rh = (ph-k)/stride + 1
	}
	return rw, rh
}

// NewPad allocates the padded buffer for src. When no padding is needed
// src itself is returned, so Apply skips the copy.
func NewPad(src grid.Grid[float64], k, stride int) (grid.Grid[float64], error) {
	pw, ph := PadSize(src.W, src.H, k, stride)
	if pw == src.W && ph == src.H {
		return src, nil
	}
	return grid.New[float64](pw, ph)
}

// Apply edge-pads src into pad and writes fn of every k×k window, taken at
// the given stride, into dst.
func Apply(be backend.Backend, src, dst, pad grid.Grid[float64], k, stride int, fn Func) error {
	if k <= 0 || stride <= 0 {
		return fmt.Errorf("%w: window %d stride %d", grid.ErrInvalidArgument, k, stride)
	}
	pw, ph := PadSize(src.W, src.H, k, stride)
	rw, rh := ResultSize(pw, ph, k, stride)
	if dst.W != rw || dst.H != rh {
		return fmt.Errorf("%w: result %dx%d, want %dx%d", grid.ErrInvalidArgument, dst.W, dst.H, rw, rh)
	}
	start, end := padShift(k, stride)
	if err := pad.PadEdgeFrom(src, start, end, start, end); err != nil {
		return err
	}
	backend.Or(be).Rows(rh, rw*k*k, func(lo, hi int) {
		buf := make([]float64, k*k)
		for yi := lo; yi < hi; yi++ {
			row := dst.Row(yi)
			for xi := range row {
				row[xi] = fn(pad.WindowInto(buf, xi*stride, yi*stride, k, k))
			}
		}
	})
	return nil
}
