package pixeloe

import (
	"fmt"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/grid"
	"github.com/setanarut/pixeloe/reduce"
	"github.com/setanarut/pixeloe/resize"
)

// Downscaler turns a planar LabA image into one cell per patch.
type Downscaler func(be backend.Backend, lab grid.Grid[float64], patchSize int) (grid.Grid[float64], error)

// DownscaleFunc resolves a mode to its strategy.
func DownscaleFunc(mode DownscaleMode) (Downscaler, error) {
	switch mode {
	case Bicubic:
		return DownscaleBicubic, nil
	case Nearest:
		return DownscaleNearest, nil
	case Center:
		return DownscaleCenter, nil
	case Contrast:
		return DownscaleContrast, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
}

func patchGrid(lab grid.Grid[float64], patchSize int) (w, h, rw, rh int, err error) {
	if patchSize < 1 {
		return 0, 0, 0, 0, fmt.Errorf("%w: patch size %d", grid.ErrInvalidArgument, patchSize)
	}
	if lab.H%resize.Planes != 0 {
		return 0, 0, 0, 0, fmt.Errorf("%w: planar height %d", grid.ErrInvalidArgument, lab.H)
	}
	w, h = lab.W, lab.H/resize.Planes
	pw, ph := reduce.PadSize(w, h, patchSize, patchSize)
	rw, rh = reduce.ResultSize(pw, ph, patchSize, patchSize)
	return w, h, rw, rh, nil
}

func DownscaleBicubic(be backend.Backend, lab grid.Grid[float64], patchSize int) (grid.Grid[float64], error) {
	return downscaleResize(be, lab, patchSize, resize.Bicubic)
}

func DownscaleNearest(be backend.Backend, lab grid.Grid[float64], patchSize int) (grid.Grid[float64], error) {
	return downscaleResize(be, lab, patchSize, resize.Nearest)
}

// DownscaleCenter keeps the center pixel's lightness and alpha and the
// median chroma of each patch.
func DownscaleCenter(be backend.Backend, lab grid.Grid[float64], patchSize int) (grid.Grid[float64], error) {
	return downscaleReduce(be, lab, patchSize, reduce.Middle, reduce.Median)
}

// DownscaleContrast picks lightness and alpha with reduce.FindPixel so thin
// dark or bright features survive, and the median chroma.
func DownscaleContrast(be backend.Backend, lab grid.Grid[float64], patchSize int) (grid.Grid[float64], error) {
	return downscaleReduce(be, lab, patchSize, reduce.FindPixel, reduce.Median)
}

func downscaleResize(be backend.Backend, lab grid.Grid[float64], patchSize int, m resize.Method) (grid.Grid[float64], error) {
	_, _, rw, rh, err := patchGrid(lab, patchSize)
	if err != nil {
		return grid.Grid[float64]{}, err
	}
	return resize.Planar(be, lab, rw, rh, m)
}

func downscaleReduce(be backend.Backend, lab grid.Grid[float64], patchSize int, lum, chroma reduce.Func) (grid.Grid[float64], error) {
	w, h, rw, rh, err := patchGrid(lab, patchSize)
	if err != nil {
		return grid.Grid[float64]{}, err
	}
	out, err := grid.New[float64](rw, rh*resize.Planes)
	if err != nil {
		return out, err
	}
	pw, ph := reduce.PadSize(w, h, patchSize, patchSize)
	needPad := pw != w || ph != h
	var pad grid.Grid[float64]
	if needPad {
		if pad, err = grid.New[float64](pw, ph); err != nil {
			return out, err
		}
	}
	fns := [resize.Planes]reduce.Func{lum, chroma, chroma, lum}
	for p, fn := range fns {
		src := lab.Plane(p, h)
		if !needPad {
			pad = src
		}
		if err := reduce.Apply(be, src, out.Plane(p, rh), pad, patchSize, patchSize, fn); err != nil {
			return out, err
		}
	}
	return out, nil
}
