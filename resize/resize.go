// Package resize implements nearest, bilinear and bicubic resampling over
// packed BGRA32 grids and float planes.
package resize

import (
	"errors"
	"fmt"

	"github.com/setanarut/pixeloe/grid"
)

var ErrUnsupportedMethod = errors.New("resize: unsupported interpolation method")

type Method int

const (
	Nearest Method = iota
	Bilinear
	Bicubic
)

func (m Method) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case Bicubic:
		return "bicubic"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Cubic is the Catmull-Rom interpolation of v1..v2 at fraction f, with v0
// and v3 as the outer neighbors.
func Cubic(v0, v1, v2, v3, f float64) float64 {
	return v1 + 0.5*f*(v2-v0+f*(2*v0-5*v1+4*v2-v3+f*(3*(v1-v2)+v3-v0)))
}

// LinearIndex maps destination index i onto the source axis so that both
// end points coincide.
func LinearIndex(i, srcLen, dstLen int) (int, float64) {
	if srcLen == 1 || dstLen == 1 {
		return 0, 0
	}
	a := i * (srcLen - 1)
	idx := a / (dstLen - 1)
	return idx, float64(a)/float64(dstLen-1) - float64(idx)
}

// NearestIndex maps destination index i to the source sample whose cell
// contains the destination cell center.
func NearestIndex(i, srcLen, dstLen int) int {
	return min(((2*i+1)*srcLen)/(2*dstLen), srcLen-1)
}

// axis caches the source coordinates for every destination index.
type axis struct {
	idx  []int
	frac []float64
	// clamped neighbor indices idx-1 .. idx+2
	n [][4]int
}

func linearAxis(srcLen, dstLen int) axis {
	a := axis{idx: make([]int, dstLen), frac: make([]float64, dstLen), n: make([][4]int, dstLen)}
	last := srcLen - 1
	for i := range dstLen {
		idx, f := LinearIndex(i, srcLen, dstLen)
		a.idx[i], a.frac[i] = idx, f
		for k := range 4 {
			a.n[i][k] = max(0, min(last, idx+k-1))
		}
	}
	return a
}

func nearestAxis(srcLen, dstLen int) []int {
	idx := make([]int, dstLen)
	for i := range dstLen {
		idx[i] = NearestIndex(i, srcLen, dstLen)
	}
	return idx
}

// degenerate handles the shortcuts shared by every resizer: equal sizes
// copy, empty sizes clear, and a 1×1 source fills. It reports whether dst
// is final.
func degenerate[T any](src, dst grid.Grid[T]) bool {
	switch {
	case src.W == dst.W && src.H == dst.H:
		copy(dst.Pix[:dst.Len()], src.Pix[:src.Len()])
	case src.Empty() || dst.Empty():
		dst.Clear()
	case src.W == 1 && src.H == 1:
		dst.Fill(src.Pix[0])
	default:
		return false
	}
	return true
}
