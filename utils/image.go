// Package utils holds the file-facing helpers around the pixeloe pipeline:
// image decoding and encoding, conversion between image.Image and packed
// BGRA32 surfaces, a raw surface container and a palette report.
package utils

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/setanarut/pixeloe/colorspace"
	"github.com/setanarut/pixeloe/grid"
)

var ErrUnsupportedFormat = errors.New("utils: unsupported image format")

// ReadImage decodes any registered format: png, jpeg, gif, bmp, tiff, webp
// and qoi.
func ReadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Encode writes img in the format named by ext (".png", ".jpg", ...).
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case ".gif":
		return gif.Encode(w, img, nil)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".qoi":
		return qoi.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// SaveImage encodes img by the extension of filename.
func SaveImage(img image.Image, filename string) error {
	ext := filepath.Ext(filename)
	if ext == ".bgra" {
		return SaveSurface(ToSurface(img), filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Encode(f, img, ext); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSurface reads filename into a packed BGRA32 surface. ".bgra" files
// are read with DecodeSurface, everything else with ReadImage.
func LoadSurface(filename string) (grid.Grid[uint32], error) {
	if filepath.Ext(filename) == ".bgra" {
		f, err := os.Open(filename)
		if err != nil {
			return grid.Grid[uint32]{}, err
		}
		defer f.Close()
		return DecodeSurface(f)
	}
	img, err := ReadImage(filename)
	if err != nil {
		return grid.Grid[uint32]{}, err
	}
	return ToSurface(img), nil
}

// ToSurface converts img to straight-alpha BGRA32.
func ToSurface(img image.Image) grid.Grid[uint32] {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	s := grid.MustNew[uint32](b.Dx(), b.Dy())
	for y := range s.H {
		line := nrgba.Pix[y*nrgba.Stride:]
		row := s.Row(y)
		for x := range row {
			p := line[x*4 : x*4+4]
			row[x] = colorspace.Pack(p[2], p[1], p[0], p[3])
		}
	}
	return s
}

// FromSurface converts a BGRA32 surface to an image.
func FromSurface(s grid.Grid[uint32]) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.W, s.H))
	for y := range s.H {
		line := img.Pix[y*img.Stride:]
		for x, v := range s.Row(y) {
			b, g, r, a := colorspace.Unpack(v)
			copy(line[x*4:x*4+4], []byte{r, g, b, a})
		}
	}
	return img
}

// WeightImage renders a [0,1] mask as grayscale.
func WeightImage(w grid.Grid[float64]) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w.W, w.H))
	for y := range w.H {
		line := img.Pix[y*img.Stride:]
		for x, v := range w.Row(y) {
			line[x] = colorspace.ToByte(v * 255)
		}
	}
	return img
}
