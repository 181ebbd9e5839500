package resize

import (
	"fmt"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/grid"
)

// planeKernel resamples rows [lo, hi) of one float plane into dst.
type planeKernel func(src, dst grid.Grid[float64], lo, hi int)

func kernelFor(m Method, srcW, srcH, dstW, dstH int) (planeKernel, error) {
	switch m {
	case Nearest:
		xs, ys := nearestAxis(srcW, dstW), nearestAxis(srcH, dstH)
		return func(src, dst grid.Grid[float64], lo, hi int) {
			for y := lo; y < hi; y++ {
				srow, drow := src.Row(ys[y]), dst.Row(y)
				for x, sx := range xs {
					drow[x] = srow[sx]
				}
			}
		}, nil
	case Bilinear:
		ax, ay := linearAxis(srcW, dstW), linearAxis(srcH, dstH)
		return func(src, dst grid.Grid[float64], lo, hi int) {
			for y := lo; y < hi; y++ {
				r0, r1 := src.Row(ay.n[y][1]), src.Row(ay.n[y][2])
				fy := ay.frac[y]
				drow := dst.Row(y)
				for x := range drow {
					x0, x1 := ax.n[x][1], ax.n[x][2]
					fx := ax.frac[x]
					v0 := lerp(r0[x0], r0[x1], fx)
					v1 := lerp(r1[x0], r1[x1], fx)
					drow[x] = lerp(v0, v1, fy)
				}
			}
		}, nil
	case Bicubic:
		ax, ay := linearAxis(srcW, dstW), linearAxis(srcH, dstH)
		return func(src, dst grid.Grid[float64], lo, hi int) {
			var col [4]float64
			for y := lo; y < hi; y++ {
				var rows [4][]float64
				for k := range 4 {
					rows[k] = src.Row(ay.n[y][k])
				}
				fy := ay.frac[y]
				drow := dst.Row(y)
				for x := range drow {
					nx := ax.n[x]
					fx := ax.frac[x]
					for k, row := range rows {
						col[k] = Cubic(row[nx[0]], row[nx[1]], row[nx[2]], row[nx[3]], fx)
					}
					drow[x] = Cubic(col[0], col[1], col[2], col[3], fy)
				}
			}
		}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedMethod, m)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Simple resizes a single float plane to w×h.
func Simple(be backend.Backend, src grid.Grid[float64], w, h int, m Method) (grid.Grid[float64], error) {
	dst, err := grid.New[float64](w, h)
	if err != nil {
		return dst, err
	}
	return dst, SimpleInto(be, src, dst, m)
}

// SimpleInto resizes src into the already allocated dst.
func SimpleInto(be backend.Backend, src, dst grid.Grid[float64], m Method) error {
	k, err := kernelFor(m, max(src.W, 1), max(src.H, 1), dst.W, dst.H)
	if err != nil {
		return err
	}
	if degenerate(src, dst) {
		return nil
	}
	backend.Or(be).Rows(dst.H, dst.W, func(lo, hi int) {
		k(src, dst, lo, hi)
	})
	return nil
}
