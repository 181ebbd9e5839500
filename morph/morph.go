// Package morph implements grayscale erosion and dilation with 3×3
// structuring elements. Packed BGRA32 pixels are processed per byte
// channel so colors never bleed across channels.
package morph

import (
	"fmt"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/grid"
)

// Kernel selects the 3×3 neighbors taking part, indexed [dy+1][dx+1].
type Kernel [3][3]bool

var (
	// Expansion is the full 3×3 square.
	Expansion = Kernel{
		{true, true, true},
		{true, true, true},
		{true, true, true},
	}
	// Smoothing is the 5-neighbor plus shape.
	Smoothing = Kernel{
		{false, true, false},
		{true, true, true},
		{false, true, false},
	}
)

func (k Kernel) offsets() [][2]int {
	var out [][2]int
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if k[dy+1][dx+1] {
				out = append(out, [2]int{dx, dy})
			}
		}
	}
	return out
}

type Op int

const (
	Erode Op = iota
	Dilate
)

func (o Op) String() string {
	if o == Dilate {
		return "dilate"
	}
	return "erode"
}

// ops combines two values of T per channel; init is the identity of the
// reduction.
type ops[T any] struct {
	init    T
	combine func(a, b T) T
}

func packedMin(a, b uint32) uint32 {
	var out uint32
	for s := uint32(0); s < 32; s += 8 {
		out |= min(a>>s&0xff, b>>s&0xff) << s
	}
	return out
}

func packedMax(a, b uint32) uint32 {
	var out uint32
	for s := uint32(0); s < 32; s += 8 {
		out |= max(a>>s&0xff, b>>s&0xff) << s
	}
	return out
}

func packedOps(op Op) ops[uint32] {
	if op == Dilate {
		return ops[uint32]{0, packedMax}
	}
	return ops[uint32]{0xffffffff, packedMin}
}

func byteOps(op Op) ops[uint8] {
	if op == Dilate {
		return ops[uint8]{0, func(a, b uint8) uint8 { return max(a, b) }}
	}
	return ops[uint8]{0xff, func(a, b uint8) uint8 { return min(a, b) }}
}

// Packed applies op to a packed image the given number of times and returns
// a new grid. src is left untouched.
func Packed(be backend.Backend, src grid.Grid[uint32], k Kernel, op Op, iterations int) (grid.Grid[uint32], error) {
	return run(be, src, k, packedOps(op), iterations)
}

// Bytes is Packed for single-channel byte grids.
func Bytes(be backend.Backend, src grid.Grid[uint8], k Kernel, op Op, iterations int) (grid.Grid[uint8], error) {
	return run(be, src, k, byteOps(op), iterations)
}

func run[T any](be backend.Backend, src grid.Grid[T], k Kernel, o ops[T], iterations int) (grid.Grid[T], error) {
	if iterations < 0 {
		return grid.Grid[T]{}, fmt.Errorf("%w: %d iterations", grid.ErrInvalidArgument, iterations)
	}
	out := src.Copy()
	if iterations == 0 || src.Empty() {
		return out, nil
	}
	be = backend.Or(be)
	offs := k.offsets()
	tmp := grid.MustNew[T](src.W, src.H)
	for range iterations {
		step(be, out, tmp, offs, o)
		out, tmp = tmp, out
	}
	return out, nil
}

func step[T any](be backend.Backend, src, dst grid.Grid[T], offs [][2]int, o ops[T]) {
	w, h := src.W, src.H
	be.Rows(h, w, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			drow := dst.Row(y)
			for x := range drow {
				v := o.init
				for _, d := range offs {
					sx := max(0, min(w-1, x+d[0]))
					sy := max(0, min(h-1, y+d[1]))
					v = o.combine(v, src.Pix[sy*w+sx])
				}
				drow[x] = v
			}
		}
	})
}
