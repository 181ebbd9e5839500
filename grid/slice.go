package grid

// Slice is a non-owning rectangular view into a Grid. Several slices may
// alias the same storage.
type Slice[T any] struct {
	Grid       Grid[T]
	X, Y, W, H int
}

func (s Slice[T]) Row(y int) []T {
	off := (y+s.Y)*s.Grid.W + s.X
	return s.Grid.Pix[off : off+s.W : off+s.W]
}

func (s Slice[T]) At(x, y int) T {
	return s.Grid.Pix[(y+s.Y)*s.Grid.W+s.X+x]
}

// AtIndex addresses the view as if it were flattened row-major.
func (s Slice[T]) AtIndex(i int) T {
	return s.At(i%s.W, i/s.W)
}

func (s Slice[T]) Fill(v T) {
	for y := range s.H {
		row := s.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Flatten copies the view into buf row by row.
func (s Slice[T]) Flatten(buf []T) []T {
	return s.Grid.WindowInto(buf, s.X, s.Y, s.W, s.H)
}
