package utils

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setanarut/pixeloe/colorspace"
	"github.com/setanarut/pixeloe/grid"
)

func testSurface(w, h int, opaque bool) grid.Grid[uint32] {
	s := grid.MustNew[uint32](w, h)
	for y := range h {
		for x := range w {
			a := uint8(255)
			if !opaque {
				a = uint8(x * 40)
			}
			s.Set(x, y, colorspace.Pack(uint8(x*30), uint8(y*50), uint8(x*y), a))
		}
	}
	return s
}

func TestSurfaceImageRoundTrip(t *testing.T) {
	s := testSurface(7, 5, false)
	img := FromSurface(s)
	assert.Equal(t, color.NRGBA{R: 1, G: 50, B: 30, A: 40}, img.NRGBAAt(1, 1))
	assert.Equal(t, s.Pix, ToSurface(img).Pix)
}

func TestToSurfaceOffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(3, 4, 6, 6))
	img.Set(3, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	s := ToSurface(img)
	require.Equal(t, 3, s.W)
	require.Equal(t, 2, s.H)
	assert.Equal(t, colorspace.Pack(30, 20, 10, 255), s.At(0, 0))
	assert.Zero(t, s.At(2, 1))
}

func TestEncodeSurface(t *testing.T) {
	s := testSurface(9, 4, false)
	var buf bytes.Buffer
	require.NoError(t, EncodeSurface(&buf, s))
	assert.Equal(t, "BGRA", buf.String()[:4])

	got, err := DecodeSurface(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, s.W, got.W)
	assert.Equal(t, s.H, got.H)
	assert.Equal(t, s.Pix, got.Pix)

	_, err = DecodeSurface(bytes.NewReader([]byte("PNG\x00\x00\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrInvalidMagic)

	_, err = DecodeSurface(bytes.NewReader(buf.Bytes()[:20]))
	assert.Error(t, err)
}

func TestDecodeSurfaceShortPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSurface(&buf, testSurface(4, 2, true)))
	data := buf.Bytes()
	// Claim 46340x46340 in front of an 8-pixel payload.
	binary.BigEndian.PutUint32(data[4:], 46340)
	binary.BigEndian.PutUint32(data[8:], 46340)

	_, err := DecodeSurface(bytes.NewReader(data))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeSurfaceEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSurface(&buf, grid.MustNew[uint32](0, 3)))
	got, err := DecodeSurface(&buf)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 3}, [2]int{got.W, got.H})
}

func TestSaveLoadFormats(t *testing.T) {
	dir := t.TempDir()
	s := testSurface(6, 4, true)
	for _, ext := range []string{".png", ".qoi", ".bmp", ".tiff", ".bgra"} {
		t.Run(ext, func(t *testing.T) {
			name := filepath.Join(dir, "out"+ext)
			require.NoError(t, SaveImage(FromSurface(s), name))
			got, err := LoadSurface(name)
			require.NoError(t, err)
			assert.Equal(t, s.Pix, got.Pix)
		})
	}

	name := filepath.Join(dir, "out.jpg")
	require.NoError(t, SaveImage(FromSurface(s), name))
	got, err := LoadSurface(name)
	require.NoError(t, err)
	assert.Equal(t, [2]int{6, 4}, [2]int{got.W, got.H})

	assert.ErrorIs(t, SaveImage(FromSurface(s), filepath.Join(dir, "out.xyz")), ErrUnsupportedFormat)
	_, err = ReadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestWeightImage(t *testing.T) {
	w := grid.MustNew[float64](3, 1)
	copy(w.Pix, []float64{0, 0.5, 1})
	img := WeightImage(w)
	assert.Equal(t, []uint8{0, 128, 255}, img.Pix)
}

func TestSortPaletteByBrightness(t *testing.T) {
	p := []colorful.Color{{R: 1, G: 1, B: 1}, {R: 0, G: 0, B: 1}, {R: 0, G: 1, B: 0}, {}}
	SortPaletteByBrightness(p)
	assert.Equal(t, []colorful.Color{{}, {R: 0, G: 0, B: 1}, {R: 0, G: 1, B: 0}, {R: 1, G: 1, B: 1}}, p)
}

func TestExtractPalette(t *testing.T) {
	s := grid.MustNew[uint32](40, 40)
	s.Fill(colorspace.Pack(0, 0, 200, 255))
	for y := range 40 {
		for x := range 12 {
			s.Set(x, y, colorspace.Pack(200, 0, 0, 255))
		}
	}
	for _, method := range []PaletteMethod{PaletteDominant, PaletteKMeans} {
		t.Run(method.String(), func(t *testing.T) {
			p := ExtractPalette(s, 2, method)
			require.Len(t, p, 2)
			var reds, blues int
			for _, c := range p {
				switch {
				case c.R > 0.5 && c.B < 0.3:
					reds++
				case c.B > 0.5 && c.R < 0.3:
					blues++
				}
			}
			assert.Equal(t, 1, reds)
			assert.Equal(t, 1, blues)
		})
	}
	assert.Nil(t, ExtractPalette(grid.MustNew[uint32](0, 0), 3, PaletteKMeans))
	assert.Nil(t, ExtractPalette(s, 0, PaletteDominant))
}

func TestPaletteImage(t *testing.T) {
	img, err := PaletteImage([]colorful.Color{{R: 1}, {B: 1}}, 4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(3, 3))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(4, 0))

	_, err = PaletteImage(nil, 4)
	assert.Error(t, err)
}
