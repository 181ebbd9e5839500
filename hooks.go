package pixeloe

import (
	"context"

	"github.com/setanarut/pixeloe/grid"
)

// Quantizer reduces the coarse planar LabA grid to a limited palette.
// weight is the outline mask resized to the grid, or nil when outline
// expansion did not run.
type Quantizer interface {
	Quantize(ctx context.Context, lab grid.Grid[float64], weight *grid.Grid[float64]) (grid.Grid[float64], error)
}

// ColorMatcher pulls the colors of lab back toward ref, the grid before
// quantization.
type ColorMatcher interface {
	MatchColors(ctx context.Context, lab, ref grid.Grid[float64]) (grid.Grid[float64], error)
}

// Styler adjusts contrast and saturation of the coarse grid.
type Styler interface {
	Style(ctx context.Context, lab grid.Grid[float64]) (grid.Grid[float64], error)
}

// Hooks are optional coarse-grid stages, run in field order when set.
// The module ships no implementations.
type Hooks struct {
	Quantizer  Quantizer
	ColorMatch ColorMatcher
	Styler     Styler
}

func (h Hooks) empty() bool {
	return h.Quantizer == nil && h.ColorMatch == nil && h.Styler == nil
}
