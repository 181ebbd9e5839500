// Package grid provides the flat row-major 2D buffer shared by every stage
// of the pixelization pipeline.
package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidArgument = errors.New("grid: invalid argument")
	ErrCapacity        = errors.New("grid: size exceeds addressable range")
)

// MaxElements is the largest element count a Grid may hold.
const MaxElements = math.MaxInt32

// Grid is a W×H buffer stored row-major: index = y*W + x.
type Grid[T any] struct {
	W, H int
	Pix  []T // len >= W*H
}

func checkSize(w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidArgument, w, h)
	}
	if h != 0 && w > MaxElements/h {
		return fmt.Errorf("%w: %dx%d", ErrCapacity, w, h)
	}
	return nil
}

// New allocates a zeroed w×h grid.
func New[T any](w, h int) (Grid[T], error) {
	if err := checkSize(w, h); err != nil {
		return Grid[T]{}, err
	}
	return Grid[T]{W: w, H: h, Pix: make([]T, w*h)}, nil
}

// MustNew is New for sizes already validated by the caller.
func MustNew[T any](w, h int) Grid[T] {
	g, err := New[T](w, h)
	if err != nil {
		panic(err)
	}
	return g
}

// Wrap borrows pix as a w×h grid without copying.
func Wrap[T any](w, h int, pix []T) (Grid[T], error) {
	if err := checkSize(w, h); err != nil {
		return Grid[T]{}, err
	}
	if len(pix) < w*h {
		return Grid[T]{}, fmt.Errorf("%w: buffer of %d elements for %dx%d", ErrInvalidArgument, len(pix), w, h)
	}
	return Grid[T]{W: w, H: h, Pix: pix[:w*h]}, nil
}

func (g Grid[T]) Len() int { return g.W * g.H }

func (g Grid[T]) Empty() bool { return g.W == 0 || g.H == 0 }

func (g Grid[T]) Offset(x, y int) int { return y*g.W + x }

func (g Grid[T]) At(x, y int) T { return g.Pix[y*g.W+x] }

func (g Grid[T]) Set(x, y int, v T) { g.Pix[y*g.W+x] = v }

// Row returns row y as a slice aliasing the grid.
func (g Grid[T]) Row(y int) []T {
	off := y * g.W
	return g.Pix[off : off+g.W : off+g.W]
}

// Plane returns the k-th block of h rows as a grid sharing storage.
// Used for planar buffers where several planes are stacked vertically.
func (g Grid[T]) Plane(k, h int) Grid[T] {
	off := k * h * g.W
	return Grid[T]{W: g.W, H: h, Pix: g.Pix[off : off+h*g.W]}
}

func (g Grid[T]) Fill(v T) {
	pix := g.Pix[:g.Len()]
	for i := range pix {
		pix[i] = v
	}
}

func (g Grid[T]) Clear() {
	clear(g.Pix[:g.Len()])
}

func (g Grid[T]) Copy() Grid[T] {
	out := Grid[T]{W: g.W, H: g.H, Pix: make([]T, g.Len())}
	copy(out.Pix, g.Pix)
	return out
}

// CopyFrom copies src into g. Both must have the same dimensions.
func (g Grid[T]) CopyFrom(src Grid[T]) error {
	if g.W != src.W || g.H != src.H {
		return fmt.Errorf("%w: copy %dx%d into %dx%d", ErrInvalidArgument, src.W, src.H, g.W, g.H)
	}
	copy(g.Pix[:g.Len()], src.Pix[:src.Len()])
	return nil
}

// SameStorage reports whether a and b start at the same element.
func SameStorage[T any](a, b Grid[T]) bool {
	if len(a.Pix) == 0 || len(b.Pix) == 0 {
		return len(a.Pix) == len(b.Pix)
	}
	return &a.Pix[0] == &b.Pix[0]
}

// PadEdgeFrom copies src into the interior of g and replicates the nearest
// edge row or column into the padding on every side.
func (g Grid[T]) PadEdgeFrom(src Grid[T], left, right, top, bottom int) error {
	if left < 0 || right < 0 || top < 0 || bottom < 0 {
		return fmt.Errorf("%w: negative padding", ErrInvalidArgument)
	}
	if left+src.W+right != g.W || top+src.H+bottom != g.H {
		return fmt.Errorf("%w: pad %dx%d by (%d,%d,%d,%d) into %dx%d",
			ErrInvalidArgument, src.W, src.H, left, right, top, bottom, g.W, g.H)
	}
	if left|right|top|bottom == 0 {
		if !SameStorage(g, src) {
			copy(g.Pix[:g.Len()], src.Pix[:src.Len()])
		}
		return nil
	}
	if src.Empty() || g.Empty() {
		g.Clear()
		return nil
	}
	for y := range src.H {
		line := g.Row(top + y)
		main := line[left : left+src.W]
		copy(main, src.Row(y))
		first, last := main[0], main[src.W-1]
		for x := range left {
			line[x] = first
		}
		for x := left + src.W; x < g.W; x++ {
			line[x] = last
		}
	}
	firstLine := g.Row(top)
	for y := range top {
		copy(g.Row(y), firstLine)
	}
	lastLine := g.Row(top + src.H - 1)
	for y := top + src.H; y < g.H; y++ {
		copy(g.Row(y), lastLine)
	}
	return nil
}

// Window returns the w×h rectangle at (x, y) flattened row by row. A
// single-row window is returned as a view into g; otherwise it is a copy.
func (g Grid[T]) Window(x, y, w, h int) []T {
	if w == 0 || h == 0 {
		return nil
	}
	if h == 1 {
		return g.Row(y)[x : x+w]
	}
	out := make([]T, w*h)
	g.WindowInto(out, x, y, w, h)
	return out
}

// WindowInto is Window writing into caller-owned scratch. It returns the
// filled prefix of buf.
func (g Grid[T]) WindowInto(buf []T, x, y, w, h int) []T {
	n := w * h
	if len(buf) < n {
		panic(fmt.Sprintf("grid: window buffer %d < %d", len(buf), n))
	}
	for r := range h {
		copy(buf[r*w:], g.Row(y + r)[x:x+w])
	}
	return buf[:n]
}

// Slice returns a view of the given rectangle.
func (g Grid[T]) Slice(x, y, w, h int) Slice[T] {
	return Slice[T]{Grid: g, X: x, Y: y, W: w, H: h}
}

func (g Grid[T]) String() string {
	return fmt.Sprintf("Grid[%dx%d]", g.W, g.H)
}
