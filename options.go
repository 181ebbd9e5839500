package pixeloe

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"strings"

	"github.com/setanarut/pixeloe/backend"
)

var (
	ErrInvalidOptions = errors.New("pixeloe: invalid options")
	ErrUnknownMode    = errors.New("pixeloe: unknown downscale mode")
)

type DownscaleMode int

const (
	Bicubic DownscaleMode = iota
	Nearest
	Center
	Contrast
)

var modeNames = [...]string{
	Bicubic:  "bicubic",
	Nearest:  "nearest",
	Center:   "center",
	Contrast: "contrast",
}

func (m DownscaleMode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("DownscaleMode(%d)", int(m))
}

// ParseDownscaleMode accepts the lower-case mode names, ignoring case.
func ParseDownscaleMode(s string) (DownscaleMode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return DownscaleMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// TargetSize chooses the patch grid of the output. Width and Height set it
// directly; otherwise Square > 0 asks for a grid with the area of a
// Square×Square grid at the input's aspect ratio; otherwise the grid is
// the input size divided by the patch size.
type TargetSize struct {
	Width, Height int
	Square        int
}

// Grid returns the number of patch columns and rows for a w×h input.
func (t TargetSize) Grid(w, h, patchSize int) (int, int) {
	switch {
	case t.Width > 0 && t.Height > 0:
		return t.Width, t.Height
	case t.Square > 0:
		if w <= 0 || h <= 0 {
			return 0, 0
		}
		ratio := float64(w) / float64(h)
		side := math.Sqrt(float64(t.Square) * float64(t.Square) / ratio)
		return int(side * ratio), int(side)
	default:
		return w / patchSize, h / patchSize
	}
}

type Options struct {
	// Side of the square patch of working pixels collapsed into one
	// output cell. Larger values give coarser, flatter results.
	// Ideal start: 4-8.
	PatchSize int
	// Output block size used by the final nearest upscale.
	// 0 means PatchSize.
	PixelSize int
	// Outline expansion strength in morphology iterations. 0 disables
	// outline expansion. Values above ~patch/2 swallow fine detail.
	Thickness int
	// Downscale strategy.
	Mode DownscaleMode
	// Return the coarse grid without the final upscale.
	NoUpscale bool
	// Return the outline-expanded image at working resolution.
	NoDownscale bool
	// Output patch grid. The zero value divides the input by PatchSize.
	Target TargetSize
	// Execution engine. nil means backend.Default().
	Backend backend.Backend
	// Optional stages that run on the coarse grid.
	Hooks Hooks
	// Receives one line per stage when set.
	Logger *log.Logger
}

func DefaultOptions() Options {
	return Options{
		PatchSize: 6,
		Thickness: 2,
		Mode:      Contrast,
	}
}

// OptionsFromSize caps the output grid for large inputs at an equivalent
// 256×256 grid.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	side := math.Sqrt(float64(size.X)*float64(size.Y)) / float64(opt.PatchSize)
	if side > 256 {
		opt.Target.Square = 256
	}
	return opt
}

func (o Options) Validate() error {
	switch {
	case o.PatchSize < 1:
		return fmt.Errorf("%w: patch size %d < 1", ErrInvalidOptions, o.PatchSize)
	case o.PixelSize < 0:
		return fmt.Errorf("%w: pixel size %d < 0", ErrInvalidOptions, o.PixelSize)
	case o.Thickness < 0:
		return fmt.Errorf("%w: thickness %d < 0", ErrInvalidOptions, o.Thickness)
	case o.Mode < Bicubic || o.Mode > Contrast:
		return fmt.Errorf("%w: %w: %v", ErrInvalidOptions, ErrUnknownMode, o.Mode)
	case o.Target.Width < 0 || o.Target.Height < 0 || o.Target.Square < 0:
		return fmt.Errorf("%w: negative target size", ErrInvalidOptions)
	case (o.Target.Width == 0) != (o.Target.Height == 0):
		return fmt.Errorf("%w: target %dx%d needs both dimensions", ErrInvalidOptions, o.Target.Width, o.Target.Height)
	}
	return nil
}

func (o Options) pixelSize() int {
	if o.PixelSize == 0 {
		return o.PatchSize
	}
	return o.PixelSize
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}
