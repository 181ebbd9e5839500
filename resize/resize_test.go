package resize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setanarut/pixeloe/backend"
	"github.com/setanarut/pixeloe/grid"
)

var backends = map[string]backend.Backend{
	"serial":   backend.Serial{},
	"parallel": backend.Parallel{Workers: 4, Batch: 1},
}

func packedRamp(w, h int) grid.Grid[uint32] {
	g := grid.MustNew[uint32](w, h)
	for y := range h {
		for x := range w {
			v := uint32(x*16+y*3) & 0xff
			g.Set(x, y, v|(255-v)<<8|uint32(y*20&0xff)<<16|0xff<<24)
		}
	}
	return g
}

func floatRamp(w, h int) grid.Grid[float64] {
	g := grid.MustNew[float64](w, h)
	for i := range g.Pix {
		g.Pix[i] = float64(i%w)*1.5 - float64(i/w)*0.25
	}
	return g
}

func TestLinearIndex(t *testing.T) {
	idx, f := LinearIndex(0, 5, 9)
	assert.Equal(t, 0, idx)
	assert.Zero(t, f)
	idx, f = LinearIndex(8, 5, 9)
	assert.Equal(t, 4, idx)
	assert.Zero(t, f)
	idx, f = LinearIndex(3, 5, 9)
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 0.5, f, 1e-12)
	idx, f = LinearIndex(3, 1, 9)
	assert.Equal(t, 0, idx)
	assert.Zero(t, f)
}

func TestNearestIndex(t *testing.T) {
	// 2x upscale repeats each sample twice.
	got := make([]int, 6)
	for i := range got {
		got[i] = NearestIndex(i, 3, 6)
	}
	assert.Equal(t, []int{0, 0, 1, 1, 2, 2}, got)
	// 3x downscale samples cell centers.
	assert.Equal(t, 1, NearestIndex(0, 9, 3))
	assert.Equal(t, 4, NearestIndex(1, 9, 3))
	assert.Equal(t, 7, NearestIndex(2, 9, 3))
}

func TestCubicInterpolatesEndpoints(t *testing.T) {
	assert.Equal(t, 3.0, Cubic(1, 3, 5, 7, 0))
	assert.InDelta(t, 5.0, Cubic(1, 3, 5, 7, 1), 1e-12)
	assert.InDelta(t, 4.0, Cubic(1, 3, 5, 7, 0.5), 1e-12)
	assert.Equal(t, 9.0, Cubic(9, 9, 9, 9, 0.37))
}

func TestIdentity(t *testing.T) {
	for name, be := range backends {
		t.Run(name, func(t *testing.T) {
			src := packedRamp(7, 5)
			for _, m := range []Method{Nearest, Bicubic} {
				out, err := Packed(be, src, 7, 5, m)
				require.NoError(t, err)
				assert.Equal(t, src.Pix, out.Pix)
			}
			fsrc := floatRamp(6, 4)
			for _, m := range []Method{Nearest, Bilinear, Bicubic} {
				out, err := Simple(be, fsrc, 6, 4, m)
				require.NoError(t, err)
				assert.Equal(t, fsrc.Pix, out.Pix)

				planar := floatRamp(6, 16)
				pout, err := Planar(be, planar, 6, 4, m)
				require.NoError(t, err)
				assert.Equal(t, planar.Pix, pout.Pix)
			}
		})
	}
}

func TestDegenerateTargetsClear(t *testing.T) {
	for _, size := range [][2]int{{0, 4}, {4, 0}, {0, 0}} {
		out, err := Packed(nil, packedRamp(3, 3), size[0], size[1], Bicubic)
		require.NoError(t, err)
		assert.Equal(t, size[0], out.W)
		assert.Equal(t, size[1], out.H)
		for _, v := range out.Pix {
			assert.Zero(t, v)
		}

		f, err := Simple(nil, floatRamp(3, 3), size[0], size[1], Bilinear)
		require.NoError(t, err)
		for _, v := range f.Pix {
			assert.Zero(t, v)
		}

		p, err := Planar(nil, floatRamp(3, 12), size[0], size[1], Bicubic)
		require.NoError(t, err)
		assert.Equal(t, size[1]*Planes, p.H)
		for _, v := range p.Pix {
			assert.Zero(t, v)
		}
	}
}

func TestEmptySourceClears(t *testing.T) {
	dst := grid.MustNew[float64](3, 3)
	dst.Fill(4)
	require.NoError(t, SimpleInto(nil, grid.MustNew[float64](0, 2), dst, Bicubic))
	for _, v := range dst.Pix {
		assert.Zero(t, v)
	}
}

func TestSinglePixelFills(t *testing.T) {
	src := grid.MustNew[uint32](1, 1)
	src.Pix[0] = 0xdeadbeef
	out, err := Packed(nil, src, 4, 3, Bicubic)
	require.NoError(t, err)
	for _, v := range out.Pix {
		assert.Equal(t, uint32(0xdeadbeef), v)
	}

	planar := grid.MustNew[float64](1, 4)
	copy(planar.Pix, []float64{1, 2, 3, 4})
	pout, err := Planar(nil, planar, 2, 2, Bilinear)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}, pout.Pix)
}

func TestPackedNearestUpscale(t *testing.T) {
	src := grid.MustNew[uint32](2, 2)
	copy(src.Pix, []uint32{1, 2, 3, 4})
	out, err := Packed(nil, src, 4, 4, Nearest)
	require.NoError(t, err)
	assert.Equal(t, []uint32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, out.Pix)
}

func TestBilinearMidpoint(t *testing.T) {
	src := grid.MustNew[float64](2, 2)
	copy(src.Pix, []float64{0, 2, 4, 6})
	out, err := Simple(nil, src, 3, 3, Bilinear)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 2, 2, 3, 4, 4, 5, 6}, out.Pix, 1e-12)
}

func TestBicubicFlatStaysFlat(t *testing.T) {
	src := grid.MustNew[uint32](5, 5)
	src.Fill(0x80402010)
	out, err := Packed(backend.Parallel{Workers: 2, Batch: 1}, src, 13, 9, Bicubic)
	require.NoError(t, err)
	for _, v := range out.Pix {
		assert.Equal(t, uint32(0x80402010), v)
	}
}

func TestPackedBicubicClamps(t *testing.T) {
	src := grid.MustNew[uint32](4, 1)
	copy(src.Pix, []uint32{0, 0, 0xffffffff, 0xffffffff})
	out, err := Packed(nil, src, 9, 1, Bicubic)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), out.Pix[0])
	assert.Equal(t, uint32(0xffffffff), out.Pix[8])
}

func TestBackendsAgree(t *testing.T) {
	src := packedRamp(31, 17)
	a, err := Packed(backend.Serial{}, src, 70, 45, Bicubic)
	require.NoError(t, err)
	b, err := Packed(backend.Parallel{Workers: 8, Batch: 3}, src, 70, 45, Bicubic)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)

	planar := floatRamp(9, 24)
	pa, err := Planar(backend.Serial{}, planar, 20, 13, Bicubic)
	require.NoError(t, err)
	pb, err := Planar(backend.Parallel{Workers: 8, Batch: 1}, planar, 20, 13, Bicubic)
	require.NoError(t, err)
	assert.Equal(t, pa.Pix, pb.Pix)
}

func TestPlanarPlanesIndependent(t *testing.T) {
	src := grid.MustNew[float64](3, 8)
	for p := range Planes {
		src.Plane(p, 2).Fill(float64(p * 10))
	}
	out, err := Planar(nil, src, 5, 4, Bicubic)
	require.NoError(t, err)
	for p := range Planes {
		for _, v := range out.Plane(p, 4).Pix {
			assert.InDelta(t, float64(p*10), v, 1e-12)
		}
	}
}

func TestUnsupportedMethods(t *testing.T) {
	_, err := Packed(nil, packedRamp(2, 2), 3, 3, Bilinear)
	assert.True(t, errors.Is(err, ErrUnsupportedMethod))
	_, err = Simple(nil, floatRamp(2, 2), 3, 3, Method(42))
	assert.True(t, errors.Is(err, ErrUnsupportedMethod))
	_, err = Planar(nil, floatRamp(2, 5), 3, 3, Nearest)
	assert.True(t, errors.Is(err, grid.ErrInvalidArgument))
	assert.Equal(t, "Method(42)", Method(42).String())
}
