// Package colorspace converts packed BGRA32 pixels to planar CIELAB+alpha
// and back.
//
// Packed pixels hold the bytes B, G, R, A from the least significant byte
// up, which is the in-memory order of a little-endian 32bpp ARGB surface.
//
// NaN and Inf never arise from byte input; planar values that carry them
// into LabToBGRA produce unspecified bytes.
package colorspace

import (
	"math"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/grid"
)

// sRGB D65 primaries.
var (
	rgb2x = [3]float64{0.4124564, 0.3575761, 0.1804375}
	rgb2y = [3]float64{0.2126729, 0.7151522, 0.0721750}
	rgb2z = [3]float64{0.0193339, 0.1191920, 0.9503041}
	xyz2r = [3]float64{3.2404542, -1.5371385, -0.4985314}
	xyz2g = [3]float64{-0.9692660, 1.8760108, 0.0415560}
	xyz2b = [3]float64{0.0556434, -0.2040259, 1.0572252}
)

const (
	epsilon = 216.0 / 24389.0
	kappa   = 24389.0 / 27.0
	whiteX  = 0.950470
	whiteZ  = 1.088830
)

func Pack(b, g, r, a uint8) uint32 {
	return uint32(b) | uint32(g)<<8 | uint32(r)<<16 | uint32(a)<<24
}

func Unpack(p uint32) (b, g, r, a uint8) {
	return uint8(p), uint8(p >> 8), uint8(p >> 16), uint8(p >> 24)
}

func dot(m [3]float64, r, g, b float64) float64 {
	return m[0]*r + m[1]*g + m[2]*b
}

// ToLinear undoes sRGB companding of a channel in [0,1].
func ToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// FromLinear applies sRGB companding to a linear channel.
func FromLinear(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return math.Pow(v, 1/2.4)*1.055 - 0.055
}

func labF(t float64) float64 {
	if t > epsilon {
		return math.Cbrt(t)
	}
	return (kappa*t + 16) / 116
}

// ToByte clamps v to [0,255] and rounds to nearest. Truncating would turn
// values like 4.9999999 from a float round trip into 4, shifting flat
// colors by one level.
func ToByte(v float64) uint8 {
	return uint8(math.Floor(max(0, min(255, v)) + 0.5))
}

func linearRGB(p uint32) (r, g, b float64) {
	bb, gg, rr, _ := Unpack(p)
	return ToLinear(float64(rr) / 255), ToLinear(float64(gg) / 255), ToLinear(float64(bb) / 255)
}

// BGRAToLab converts one packed pixel to L, a, b and alpha in [0,1].
func BGRAToLab(p uint32) (l, a, b, alpha float64) {
	r, g, bl := linearRGB(p)
	fx := labF(dot(rgb2x, r, g, bl) / whiteX)
	fy := labF(dot(rgb2y, r, g, bl))
	fz := labF(dot(rgb2z, r, g, bl) / whiteZ)
	return 116*fy - 16, 500 * (fx - fy), 200 * (fy - fz), float64(p>>24) / 255
}

// BGRAToL is BGRAToLab reduced to the lightness channel.
func BGRAToL(p uint32) float64 {
	r, g, b := linearRGB(p)
	return 116*labF(dot(rgb2y, r, g, b)) - 16
}

// LabToBGRA converts L, a, b and alpha in [0,1] back to a packed pixel.
func LabToBGRA(l, a, b, alpha float64) uint32 {
	fy := (l + 16) / 116
	fx := a/500 + fy
	fz := fy - b/200
	fx3, fy3, fz3 := fx*fx*fx, fy*fy*fy, fz*fz*fz
	xr := fx3
	if fx3 <= epsilon {
		xr = (116*fx - 16) / kappa
	}
	yr := fy3
	if fy3 <= epsilon {
		yr = l / kappa
	}
	zr := fz3
	if fz3 <= epsilon {
		zr = (116*fz - 16) / kappa
	}
	x, y, z := xr*whiteX, yr, zr*whiteZ
	return Pack(
		ToByte(FromLinear(dot(xyz2b, x, y, z))*255),
		ToByte(FromLinear(dot(xyz2g, x, y, z))*255),
		ToByte(FromLinear(dot(xyz2r, x, y, z))*255),
		ToByte(alpha*255),
	)
}

// PackedToPlanarLabA converts a packed image into a planar buffer of four
// stacked planes L, a, b, A, each src.H rows tall.
func PackedToPlanarLabA(be backend.Backend, src grid.Grid[uint32]) grid.Grid[float64] {
	w, h := src.W, src.H
	dst := grid.MustNew[float64](w, h*4)
	n := w * h
	pl, pa, pb, pA := dst.Pix[:n], dst.Pix[n:2*n], dst.Pix[2*n:3*n], dst.Pix[3*n:4*n]
	backend.Or(be).Rows(h, w, func(lo, hi int) {
		for i := lo * w; i < hi*w; i++ {
			pl[i], pa[i], pb[i], pA[i] = BGRAToLab(src.Pix[i])
		}
	})
	return dst
}

// PackedToL returns the lightness plane of a packed image.
func PackedToL(be backend.Backend, src grid.Grid[uint32]) grid.Grid[float64] {
	w, h := src.W, src.H
	dst := grid.MustNew[float64](w, h)
	backend.Or(be).Rows(h, w, func(lo, hi int) {
		for i := lo * w; i < hi*w; i++ {
			dst.Pix[i] = BGRAToL(src.Pix[i])
		}
	})
	return dst
}

// PlanarLabAToPacked is the inverse of PackedToPlanarLabA.
func PlanarLabAToPacked(be backend.Backend, src grid.Grid[float64]) grid.Grid[uint32] {
	w, h := src.W, src.H/4
	dst := grid.MustNew[uint32](w, h)
	n := w * h
	pl, pa, pb, pA := src.Pix[:n], src.Pix[n:2*n], src.Pix[2*n:3*n], src.Pix[3*n:4*n]
	backend.Or(be).Rows(h, w, func(lo, hi int) {
		for i := lo * w; i < hi*w; i++ {
			dst.Pix[i] = LabToBGRA(pl[i], pa[i], pb[i], pA[i])
		}
	})
	return dst
}
