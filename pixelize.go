// Package pixeloe turns images into pixel art. It keeps outlines by
// eroding and dilating the image with a contrast-driven weight before
// collapsing each patch to a single cell with content-aware statistics.
//
// Images are packed BGRA32 grids (see package colorspace); the caller
// decodes and encodes files.
package pixeloe

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/colorspace"
	"github.com/setanarut/pixeloe/grid"
	"github.com/setanarut/pixeloe/resize"
)

type Result struct {
	Image grid.Grid[uint32]
	// Outline mask at working resolution; nil when Thickness is 0.
	Weight *grid.Grid[float64]
}

// WorkingSize returns the size img is resampled to before outline
// expansion: the target patch grid times the patch size.
func WorkingSize(w, h int, opt Options) (int, int, error) {
	cols, rows := opt.Target.Grid(w, h, opt.PatchSize)
	if cols < 0 || rows < 0 {
		return 0, 0, fmt.Errorf("%w: target grid %dx%d", ErrInvalidOptions, cols, rows)
	}
	if cols > grid.MaxElements/opt.PatchSize || rows > grid.MaxElements/opt.PatchSize {
		return 0, 0, fmt.Errorf("%w: target grid %dx%d at patch %d", grid.ErrCapacity, cols, rows, opt.PatchSize)
	}
	tw, th := cols*opt.PatchSize, rows*opt.PatchSize
	if th > 0 && tw > grid.MaxElements/th {
		return 0, 0, fmt.Errorf("%w: working size %dx%d", grid.ErrCapacity, tw, th)
	}
	return tw, th, nil
}

// Pixelize runs the pipeline on img. The context is checked between
// stages; a stage in progress always completes.
func Pixelize(ctx context.Context, img grid.Grid[uint32], opt Options) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	downscale, err := DownscaleFunc(opt.Mode)
	if err != nil {
		return nil, err
	}
	be := opt.Backend
	if be == nil {
		be = backend.Default()
	}
	tw, th, err := WorkingSize(img.W, img.H, opt)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stage := func(name string) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pixeloe: %s: %w", name, err)
		}
		opt.logf("pixeloe: %-9s %v", name, time.Since(start))
		start = time.Now()
		return nil
	}

	work, err := resize.Packed(be, img, tw, th, resize.Bicubic)
	if err != nil {
		return nil, err
	}
	if err := stage("resize"); err != nil {
		return nil, err
	}

	res := &Result{}
	if opt.Thickness > 0 {
		var weight grid.Grid[float64]
		work, weight, err = OutlineExpansion(be, work, opt.Thickness, opt.Thickness, opt.PatchSize, AvgScale, DistScale)
		if err != nil {
			return nil, err
		}
		res.Weight = &weight
		if err := stage("outline"); err != nil {
			return nil, err
		}
	}
	if opt.NoDownscale {
		res.Image = work
		return res, nil
	}

	lab := colorspace.PackedToPlanarLabA(be, work)
	small, err := downscale(be, lab, opt.PatchSize)
	if err != nil {
		return nil, err
	}
	if err := stage(opt.Mode.String()); err != nil {
		return nil, err
	}

	if !opt.Hooks.empty() {
		if small, err = runHooks(ctx, be, small, res.Weight, opt); err != nil {
			return nil, err
		}
		if err := stage("hooks"); err != nil {
			return nil, err
		}
	}

	out := colorspace.PlanarLabAToPacked(be, small)
	if !opt.NoUpscale {
		px := opt.pixelSize()
		if out.W > grid.MaxElements/px || out.H > grid.MaxElements/px {
			return nil, fmt.Errorf("%w: upscale %dx%d by %d", grid.ErrCapacity, out.W, out.H, px)
		}
		if out, err = resize.Packed(be, out, out.W*px, out.H*px, resize.Nearest); err != nil {
			return nil, err
		}
	}
	if err := stage("finish"); err != nil {
		return nil, err
	}
	res.Image = out
	return res, nil
}

func runHooks(ctx context.Context, be backend.Backend, small grid.Grid[float64], weight *grid.Grid[float64], opt Options) (grid.Grid[float64], error) {
	h := opt.Hooks
	ref := small
	if h.Quantizer != nil {
		var wm *grid.Grid[float64]
		if weight != nil {
			m, err := resize.Simple(be, *weight, small.W, small.H/resize.Planes, resize.Bilinear)
			if err != nil {
				return small, err
			}
			gamma := float64(small.W) / 512
			for i, v := range m.Pix {
				m.Pix[i] = math.Pow(v, gamma)
			}
			wm = &m
		}
		q, err := h.Quantizer.Quantize(ctx, small, wm)
		if err != nil {
			return small, fmt.Errorf("pixeloe: quantize: %w", err)
		}
		small = q
	}
	if h.ColorMatch != nil {
		m, err := h.ColorMatch.MatchColors(ctx, small, ref)
		if err != nil {
			return small, fmt.Errorf("pixeloe: match colors: %w", err)
		}
		small = m
	}
	if h.Styler != nil {
		s, err := h.Styler.Style(ctx, small)
		if err != nil {
			return small, fmt.Errorf("pixeloe: style: %w", err)
		}
		small = s
	}
	return small, nil
}
