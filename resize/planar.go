package resize

import (
	"fmt"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/grid"
)

// Planes is the number of stacked planes in a planar LabA buffer.
const Planes = 4

// Planar resizes a buffer of four stacked planes, each src.H/4 rows tall,
// to planes of w×h. Source coordinates are computed once and reused for
// every plane.
func Planar(be backend.Backend, src grid.Grid[float64], w, h int, m Method) (grid.Grid[float64], error) {
	if src.H%Planes != 0 {
		return grid.Grid[float64]{}, fmt.Errorf("%w: planar height %d is not a multiple of %d", grid.ErrInvalidArgument, src.H, Planes)
	}
	if h > grid.MaxElements/Planes {
		return grid.Grid[float64]{}, fmt.Errorf("%w: planar height %d", grid.ErrCapacity, h)
	}
	dst, err := grid.New[float64](w, h*Planes)
	if err != nil {
		return dst, err
	}
	sh := src.H / Planes
	k, err := kernelFor(m, max(src.W, 1), max(sh, 1), w, h)
	if err != nil {
		return grid.Grid[float64]{}, err
	}
	var srcPlanes, dstPlanes [Planes]grid.Grid[float64]
	for p := range Planes {
		srcPlanes[p] = src.Plane(p, sh)
		dstPlanes[p] = dst.Plane(p, h)
	}
	if src.W == w && sh == h {
		copy(dst.Pix, src.Pix[:src.Len()])
		return dst, nil
	}
	if src.W == 0 || sh == 0 || w == 0 || h == 0 {
		return dst, nil
	}
	if src.W == 1 && sh == 1 {
		for p := range Planes {
			dstPlanes[p].Fill(srcPlanes[p].Pix[0])
		}
		return dst, nil
	}
	backend.Or(be).Rows(h, w*Planes, func(lo, hi int) {
		for p := range Planes {
			k(srcPlanes[p], dstPlanes[p], lo, hi)
		}
	})
	return dst, nil
}
