package pixeloe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/colorspace"
	"github.com/setanarut/pixeloe/grid"
	"github.com/setanarut/pixeloe/morph"
	"github.com/setanarut/pixeloe/reduce"
	"github.com/setanarut/pixeloe/resize"
)

// Weight model constants used by Pixelize.
const (
	AvgScale  = 9.0
	DistScale = 4.0
)

// Suggested ExpansionWeight parameters for stand-alone use.
const (
	WeightWindow    = 16
	WeightAvgScale  = 10.0
	WeightDistScale = 3.0
)

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ExpansionWeight estimates, per pixel, how much a pixel sits in a bright
// region next to darker outlines (toward 1) or the opposite (toward 0).
//
// Lightness is summarized over a 2k median window and k min/max windows
// taken every stride pixels, pushed through a sigmoid, upsampled back to
// full size and blurred by a half-resolution bilinear round trip.
// The result is normalized as (w-min)/max. A stride below 1 is treated as
// 1; a stride above k is an error.
func ExpansionWeight(be backend.Backend, img grid.Grid[uint32], k, stride int, avgScale, distScale float64) (grid.Grid[float64], error) {
	if k < 1 || stride > k {
		return grid.Grid[float64]{}, fmt.Errorf("%w: window %d stride %d", grid.ErrInvalidArgument, k, stride)
	}
	stride = max(1, stride)
	width, height := img.W, img.H
	if img.Empty() {
		return grid.New[float64](width, height)
	}

	lum := colorspace.PackedToL(be, img)
	floats.Scale(1.0/100, lum.Pix)

	pw, ph := reduce.PadSize(width, height, k, stride)
	rw, rh := reduce.ResultSize(pw, ph, k, stride)

	avg, err := windowStat(be, lum, rw, rh, k*2, stride, reduce.Median)
	if err != nil {
		return grid.Grid[float64]{}, err
	}
	lo, err := windowStat(be, lum, rw, rh, k, stride, reduce.Min)
	if err != nil {
		return grid.Grid[float64]{}, err
	}
	hi, err := windowStat(be, lum, rw, rh, k, stride, reduce.Max)
	if err != nil {
		return grid.Grid[float64]{}, err
	}

	coarse := grid.MustNew[float64](rw, rh)
	for i := range coarse.Pix {
		bright := hi.Pix[i] - avg.Pix[i]
		dark := avg.Pix[i] - lo.Pix[i]
		coarse.Pix[i] = sigmoid(avgScale*(avg.Pix[i]-0.5) - distScale*(bright-dark))
	}

	weight, err := resize.Simple(be, coarse, width, height, resize.Nearest)
	if err != nil {
		return weight, err
	}
	if width/2 > 0 && height/2 > 0 {
		half := grid.MustNew[float64](width/2, height/2)
		if err := resize.SimpleInto(be, weight, half, resize.Bilinear); err != nil {
			return weight, err
		}
		if err := resize.SimpleInto(be, half, weight, resize.Bilinear); err != nil {
			return weight, err
		}
	}

	// Divides by max, not max-min.
	wmin, wmax := floats.Min(weight.Pix), floats.Max(weight.Pix)
	floats.AddConst(-wmin, weight.Pix)
	if wmax != 0 {
		floats.Scale(1/wmax, weight.Pix)
	}
	return weight, nil
}

func windowStat(be backend.Backend, src grid.Grid[float64], rw, rh, k, stride int, fn reduce.Func) (grid.Grid[float64], error) {
	pad, err := reduce.NewPad(src, k, stride)
	if err != nil {
		return grid.Grid[float64]{}, err
	}
	dst := grid.MustNew[float64](rw, rh)
	return dst, reduce.Apply(be, src, dst, pad, k, stride, fn)
}

// OutlineExpansion thickens outlines before downscaling: bright regions are
// eroded and dark regions dilated according to ExpansionWeight, then the
// result is smoothed with the plus-shaped kernel. It returns the expanded
// image and a smoothed [0,1] mask of how decisive the weight was per pixel.
func OutlineExpansion(be backend.Backend, img grid.Grid[uint32], erode, dilate, k int, avgScale, distScale float64) (grid.Grid[uint32], grid.Grid[float64], error) {
	weight, err := ExpansionWeight(be, img, k, k/4*2, avgScale, distScale)
	if err != nil {
		return grid.Grid[uint32]{}, weight, err
	}
	if img.Empty() {
		return img.Copy(), weight, nil
	}

	eroded, err := morph.Packed(be, img, morph.Expansion, morph.Erode, erode)
	if err != nil {
		return grid.Grid[uint32]{}, weight, err
	}
	dilated, err := morph.Packed(be, img, morph.Expansion, morph.Dilate, dilate)
	if err != nil {
		return grid.Grid[uint32]{}, weight, err
	}

	out := grid.MustNew[uint32](img.W, img.H)
	backend.Or(be).Rows(img.H, img.W, func(lo, hi int) {
		for i := lo * img.W; i < hi*img.W; i++ {
			out.Pix[i] = blend(eroded.Pix[i], dilated.Pix[i], img.Pix[i], weight.Pix[i])
		}
	})

	for _, pass := range []struct {
		op morph.Op
		n  int
	}{
		{morph.Erode, erode},
		{morph.Dilate, dilate * 2},
		{morph.Erode, erode},
	} {
		if out, err = morph.Packed(be, out, morph.Smoothing, pass.op, pass.n); err != nil {
			return grid.Grid[uint32]{}, weight, err
		}
	}

	mask := grid.MustNew[uint8](img.W, img.H)
	for i, w := range weight.Pix {
		mask.Pix[i] = uint8(min(255, math.Abs(w*2-1)*255))
	}
	if mask, err = morph.Bytes(be, mask, morph.Expansion, morph.Dilate, dilate); err != nil {
		return grid.Grid[uint32]{}, weight, err
	}
	for i, v := range mask.Pix {
		weight.Pix[i] = float64(v) / 255
	}
	return out, weight, nil
}

// blend mixes the eroded and dilated pixels by w and keeps a share of the
// original pixel that grows where w is decisive.
func blend(eroded, dilated, orig uint32, w float64) uint32 {
	keep := sigmoid((w-0.5)*5) * 0.25
	var out uint32
	for s := uint32(0); s < 32; s += 8 {
		e := float64(eroded >> s & 0xff)
		d := float64(dilated >> s & 0xff)
		o := float64(orig >> s & 0xff)
		v := (e*w+d*(1-w))*(1-keep) + o*keep
		out |= uint32(colorspace.ToByte(v)) << s
	}
	return out
}
