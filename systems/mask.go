package systems

import (
	"image"
)

// alphaThreshold matches the usual sprite mask convention: a pixel is solid
// when its alpha is above half.
const alphaThreshold = 127

// Mask is a per-pixel opacity bitmap.
type Mask struct {
	W, H int
	bits []uint64
	row  int // words per row
}

// NewMask returns an empty w x h mask.
func NewMask(w, h int) *Mask {
	row := (w + 63) / 64
	return &Mask{W: w, H: h, row: row, bits: make([]uint64, row*h)}
}

// MaskFromImage builds a mask with every pixel whose alpha exceeds the
// threshold set.
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a>>8 > alphaThreshold {
				m.Set(x, y)
			}
		}
	}
	return m
}

// Set marks (x, y) solid.
func (m *Mask) Set(x, y int) {
	m.bits[y*m.row+x/64] |= 1 << uint(x%64)
}

// At reports whether (x, y) is solid. Coordinates outside the mask are empty.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.bits[y*m.row+x/64]&(1<<uint(x%64)) != 0
}

// Count returns the number of solid pixels.
func (m *Mask) Count() int {
	n := 0
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.At(x, y) {
				n++
			}
		}
	}
	return n
}

// Overlap reports the first solid pixel (in m's coordinates) shared with
// other placed at offset (dx, dy) relative to m's top-left corner.
func (m *Mask) Overlap(other *Mask, dx, dy int) (image.Point, bool) {
	x0, y0 := max(0, dx), max(0, dy)
	x1, y1 := min(m.W, dx+other.W), min(m.H, dy+other.H)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if m.At(x, y) && other.At(x-dx, y-dy) {
				return image.Pt(x, y), true
			}
		}
	}
	return image.Point{}, false
}
