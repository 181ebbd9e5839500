package utils

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/setanarut/pixeloe/colorspace"
	"github.com/setanarut/pixeloe/grid"
)

// PaletteMethod selects how the palette report finds candidate colors.
type PaletteMethod int

const (
	PaletteDominant PaletteMethod = iota
	PaletteKMeans
)

func (m PaletteMethod) String() string {
	if m == PaletteKMeans {
		return "kmeans"
	}
	return "dominant"
}

// maxPaletteSamples bounds the pixels fed to k-means.
const maxPaletteSamples = 12000

type candidate struct {
	col colorful.Color
	lab [3]float64
	n   float64
}

func newCandidate(col colorful.Color, n float64) candidate {
	col = col.Clamped()
	l, a, b := col.Lab()
	return candidate{col: col, lab: [3]float64{l, a, b}, n: max(n, 1e-6)}
}

// ExtractPalette reports up to k representative colors of a pixelized
// surface, strongest first. Fully transparent pixels are ignored.
func ExtractPalette(s grid.Grid[uint32], k int, method PaletteMethod) []colorful.Color {
	if k <= 0 || s.Empty() {
		return nil
	}
	if method == PaletteKMeans {
		if p := kmeansPalette(s, k); len(p) > 0 {
			return p
		}
		log.Println("palette: k-means found no clusters, using dominant colors")
	}
	return dominantPalette(s, k)
}

func dominantPalette(s grid.Grid[uint32], k int) []colorful.Color {
	found := dominantcolor.FindWeight(FromSurface(s), max(24, k*8))
	cands := make([]candidate, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		cands = append(cands, newCandidate(col, c.Weight))
	}
	return pickDiverse(cands, k)
}

func kmeansPalette(s grid.Grid[uint32], k int) []colorful.Color {
	step := 1
	if n := s.Len(); n > maxPaletteSamples {
		step = int(math.Sqrt(float64(n)/maxPaletteSamples)) + 1
	}
	var obs clusters.Observations
	for y := 0; y < s.H; y += step {
		row := s.Row(y)
		for x := 0; x < len(row); x += step {
			b, g, r, a := colorspace.Unpack(row[x])
			if a == 0 {
				continue
			}
			obs = append(obs, clusters.Coordinates{float64(r) / 255, float64(g) / 255, float64(b) / 255})
		}
	}
	if len(obs) == 0 {
		return nil
	}
	cc, err := kmeans.New().Partition(obs, min(k*4, len(obs)))
	if err != nil {
		return nil
	}
	cands := make([]candidate, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}
		cands = append(cands, newCandidate(col, float64(len(c.Observations))))
	}
	return pickDiverse(cands, k)
}

// pickDiverse seeds with the heaviest candidate and then greedily adds the
// one farthest in Lab from everything picked, scaled by its weight.
func pickDiverse(cands []candidate, k int) []colorful.Color {
	if len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))
	heaviest := slices.MaxFunc(cands, func(a, b candidate) int { return cmp.Compare(a.n, b.n) }).n

	picked := make([]bool, len(cands))
	var out []candidate
	for len(out) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if picked[i] {
				continue
			}
			score := c.n
			if len(out) > 0 {
				d := math.MaxFloat64
				for _, p := range out {
					d = min(d, labDist2(c.lab, p.lab))
				}
				score = math.Sqrt(d) * (0.55 + 0.45*math.Sqrt(c.n/heaviest))
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		picked[best] = true
		out = append(out, cands[best])
	}

	cols := make([]colorful.Color, len(out))
	for i, c := range out {
		cols[i] = c.col
	}
	return cols
}

func labDist2(a, b [3]float64) float64 {
	d0, d1, d2 := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// SortPaletteByBrightness orders colors from darkest to brightest by
// relative luminance.
func SortPaletteByBrightness(palette []colorful.Color) {
	lum := func(c colorful.Color) float64 {
		r, g, b := c.LinearRgb()
		return 0.2126*r + 0.7152*g + 0.0722*b
	}
	slices.SortStableFunc(palette, func(a, b colorful.Color) int {
		return cmp.Compare(lum(a), lum(b))
	})
}

// PaletteImage draws the palette as a strip of tile×tile swatches.
func PaletteImage(palette []colorful.Color, tile int) (*image.NRGBA, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("utils: empty palette")
	}
	if tile <= 0 {
		tile = 64
	}
	img := image.NewNRGBA(image.Rect(0, 0, tile*len(palette), tile))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		sw := color.NRGBA{R: r, G: g, B: b, A: 255}
		for y := range tile {
			for x := i * tile; x < (i+1)*tile; x++ {
				img.SetNRGBA(x, y, sw)
			}
		}
	}
	return img, nil
}

// SavePalette writes the palette strip to filename.
func SavePalette(palette []colorful.Color, tile int, filename string) error {
	img, err := PaletteImage(palette, tile)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}
