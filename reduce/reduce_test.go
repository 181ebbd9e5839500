package reduce

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/grid"
)

func TestReducers(t *testing.T) {
	for _, tc := range []struct {
		name string
		fn   Func
		want float64
	}{
		{"median", Median, 3},
		{"min", Min, 1},
		{"max", Max, 5},
		{"middle", Middle, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.fn([]float64{5, 1, 4, 2, 3}))
		})
	}
}

func TestMiddleIgnoresOrder(t *testing.T) {
	w := []float64{9, 8, 7, 6, 42, 4, 3, 2, 1}
	assert.Equal(t, 42.0, Middle(w))
	w = []float64{-1, 100, 0, 50, 0.5, 3, 3, 3, 3}
	assert.Equal(t, 0.5, Middle(w))
}

func TestFindPixel(t *testing.T) {
	for _, tc := range []struct {
		name string
		w    []float64
		want float64
	}{
		{"dark majority keeps min", []float64{10, 10, 10, 10, 90}, 10},
		{"bright majority keeps max", []float64{90, 90, 10, 90, 90}, 90},
		{"symmetric keeps center", []float64{1, 2, 3, 4, 5}, 3},
		{"symmetric unsorted keeps center", []float64{5, 1, 2, 4, 3}, 2},
		{"flat", []float64{7, 7, 7, 7}, 7},
		{"skewed picks min not center", []float64{20, 20, 20, 20, 30, 90, 20, 20, 20}, 20},
		{"skewed dark outlier picks max", []float64{80, 80, 80, 80, 50, 80, 80, 80, 0}, 80},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FindPixel(tc.w))
		})
	}
}

func TestSizes(t *testing.T) {
	pw, ph := PadSize(10, 7, 4, 2)
	assert.Equal(t, [2]int{12, 9}, [2]int{pw, ph})
	rw, rh := ResultSize(pw, ph, 4, 2)
	assert.Equal(t, [2]int{5, 3}, [2]int{rw, rh})

	pw, ph = PadSize(12, 12, 6, 6)
	assert.Equal(t, [2]int{12, 12}, [2]int{pw, ph})
	rw, rh = ResultSize(pw, ph, 6, 6)
	assert.Equal(t, [2]int{2, 2}, [2]int{rw, rh})

	rw, rh = ResultSize(3, 8, 4, 4)
	assert.Equal(t, [2]int{0, 2}, [2]int{rw, rh})
}

func TestApplyPatches(t *testing.T) {
	src := grid.MustNew[float64](4, 4)
	for i := range src.Pix {
		src.Pix[i] = float64(i)
	}
	dst := grid.MustNew[float64](2, 2)
	pad, err := NewPad(src, 2, 2)
	require.NoError(t, err)
	require.True(t, grid.SameStorage(pad, src))
	for name, be := range map[string]backend.Backend{"serial": backend.Serial{}, "parallel": backend.Parallel{Workers: 2, Batch: 1}} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Apply(be, src, dst, pad, 2, 2, Max))
			assert.Equal(t, []float64{5, 7, 13, 15}, dst.Pix)
			require.NoError(t, Apply(be, src, dst, pad, 2, 2, Min))
			assert.Equal(t, []float64{0, 2, 8, 10}, dst.Pix)
		})
	}
	// Apply must not reorder the source when windows are copied.
	assert.Equal(t, 5.0, src.Pix[5])
}

func TestApplyOverlappingWindows(t *testing.T) {
	src := grid.MustNew[float64](4, 4)
	src.Set(3, 3, 1)
	pad, err := NewPad(src, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, pad.W)
	pw, ph := PadSize(4, 4, 4, 2)
	rw, rh := ResultSize(pw, ph, 4, 2)
	dst := grid.MustNew[float64](rw, rh)
	require.NoError(t, Apply(nil, src, dst, pad, 4, 2, Max))
	assert.Equal(t, []float64{0, 0, 0, 1}, dst.Pix)
	// The padded border replicates the bright corner.
	assert.Equal(t, 1.0, pad.At(5, 5))
}

func TestApplyRejectsBadArguments(t *testing.T) {
	src := grid.MustNew[float64](4, 4)
	err := Apply(nil, src, grid.MustNew[float64](3, 3), src, 2, 2, Max)
	assert.True(t, errors.Is(err, grid.ErrInvalidArgument))
	err = Apply(nil, src, grid.MustNew[float64](2, 2), src, 0, 2, Max)
	assert.True(t, errors.Is(err, grid.ErrInvalidArgument))
}
