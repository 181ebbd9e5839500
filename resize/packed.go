package resize

import (
	"fmt"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/grid"
)

// Packed resizes a packed BGRA32 grid. Only Nearest and Bicubic are
// supported; channels are interpolated independently.
func Packed(be backend.Backend, src grid.Grid[uint32], w, h int, m Method) (grid.Grid[uint32], error) {
	if m != Nearest && m != Bicubic {
		return grid.Grid[uint32]{}, fmt.Errorf("%w: %v on packed image", ErrUnsupportedMethod, m)
	}
	dst, err := grid.New[uint32](w, h)
	if err != nil {
		return dst, err
	}
	if degenerate(src, dst) {
		return dst, nil
	}
	be = backend.Or(be)
	if m == Nearest {
		packedNearest(be, src, dst)
	} else {
		packedBicubic(be, src, dst)
	}
	return dst, nil
}

func packedNearest(be backend.Backend, src, dst grid.Grid[uint32]) {
	xs := nearestAxis(src.W, dst.W)
	ys := nearestAxis(src.H, dst.H)
	be.Rows(dst.H, dst.W, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			srow := src.Row(ys[y])
			drow := dst.Row(y)
			for x, sx := range xs {
				drow[x] = srow[sx]
			}
		}
	})
}

func packedBicubic(be backend.Backend, src, dst grid.Grid[uint32]) {
	ax := linearAxis(src.W, dst.W)
	ay := linearAxis(src.H, dst.H)
	be.Rows(dst.H, dst.W, func(lo, hi int) {
		var col [4]float64
		for y := lo; y < hi; y++ {
			var rows [4][]uint32
			for k := range 4 {
				rows[k] = src.Row(ay.n[y][k])
			}
			fy := ay.frac[y]
			drow := dst.Row(y)
			for x := range drow {
				nx := ax.n[x]
				fx := ax.frac[x]
				var out uint32
				for c := uint32(0); c < 32; c += 8 {
					for k, row := range rows {
						col[k] = Cubic(
							float64(uint8(row[nx[0]]>>c)),
							float64(uint8(row[nx[1]]>>c)),
							float64(uint8(row[nx[2]]>>c)),
							float64(uint8(row[nx[3]]>>c)),
							fx)
					}
					v := Cubic(col[0], col[1], col[2], col[3], fy)
					out |= uint32(toByte(v)) << c
				}
				drow[x] = out
			}
		}
	})
}

func toByte(v float64) uint8 {
	v = max(0, min(255, v))
	return uint8(v + 0.5)
}
