package utils

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/setanarut/pixeloe/grid"
)

// Raw surface container: magic(4) + width(uint32) + height(uint32), then a
// zstd frame of little-endian BGRA32 pixels in row-major order.
const surfaceMagic = "BGRA"

// surfaceChunk is how many pixels DecodeSurface reads at a time.
const surfaceChunk = 1 << 16

var ErrInvalidMagic = errors.New("utils: invalid surface magic")

// EncodeSurface writes s to w in the raw surface container.
func EncodeSurface(w io.Writer, s grid.Grid[uint32]) error {
	if _, err := io.WriteString(w, surfaceMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, [2]uint32{uint32(s.W), uint32(s.H)}); err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	if err := binary.Write(bw, binary.LittleEndian, s.Pix[:s.Len()]); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// DecodeSurface reads a surface written by EncodeSurface.
func DecodeSurface(r io.Reader) (grid.Grid[uint32], error) {
	magic := make([]byte, len(surfaceMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return grid.Grid[uint32]{}, err
	}
	if string(magic) != surfaceMagic {
		return grid.Grid[uint32]{}, ErrInvalidMagic
	}
	var size [2]uint32
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return grid.Grid[uint32]{}, err
	}
	if size[0] > grid.MaxElements || size[1] > grid.MaxElements {
		return grid.Grid[uint32]{}, fmt.Errorf("%w: surface %dx%d", grid.ErrCapacity, size[0], size[1])
	}
	w, h := int(size[0]), int(size[1])
	if h != 0 && w > grid.MaxElements/h {
		return grid.Grid[uint32]{}, fmt.Errorf("%w: surface %dx%d", grid.ErrCapacity, w, h)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return grid.Grid[uint32]{}, err
	}
	defer dec.Close()

	// Grow with the payload so a header alone cannot force a large
	// allocation.
	br := bufio.NewReader(dec)
	n := w * h
	chunk := make([]uint32, min(n, surfaceChunk))
	pix := make([]uint32, 0, len(chunk))
	for len(pix) < n {
		c := chunk[:min(len(chunk), n-len(pix))]
		if err := binary.Read(br, binary.LittleEndian, c); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return grid.Grid[uint32]{}, fmt.Errorf("surface payload at pixel %d of %d: %w", len(pix), n, err)
		}
		pix = append(pix, c...)
	}
	return grid.Wrap(w, h, pix)
}

// SaveSurface writes s to filename in the raw surface container.
func SaveSurface(s grid.Grid[uint32], filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := EncodeSurface(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
