package systems

import (
	"image"
	"image/color"
	"testing"
)

func square(w, h int, solid image.Rectangle) *Mask {
	m := NewMask(w, h)
	for y := solid.Min.Y; y < solid.Max.Y; y++ {
		for x := solid.Min.X; x < solid.Max.X; x++ {
			m.Set(x, y)
		}
	}
	return m
}

func TestMaskFromImageThreshold(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.SetRGBA(0, 0, color.RGBA{A: 255})
	img.SetRGBA(1, 0, color.RGBA{A: 128})
	img.SetRGBA(2, 0, color.RGBA{A: 127})

	m := MaskFromImage(img)
	if !m.At(0, 0) || !m.At(1, 0) || m.At(2, 0) {
		t.Errorf("mask = %v %v %v, want true true false", m.At(0, 0), m.At(1, 0), m.At(2, 0))
	}
	if m.Count() != 2 {
		t.Errorf("count = %d, want 2", m.Count())
	}
}

func TestMaskWideRows(t *testing.T) {
	m := NewMask(130, 2)
	m.Set(129, 1)
	m.Set(64, 0)
	if !m.At(129, 1) || !m.At(64, 0) || m.At(63, 0) || m.At(129, 0) {
		t.Error("bits crossing word boundaries are misplaced")
	}
}

func TestOverlap(t *testing.T) {
	// 10x10 masks whose solid part is the 5x5 top-left quadrant.
	a := square(10, 10, image.Rect(0, 0, 5, 5))
	b := square(10, 10, image.Rect(0, 0, 5, 5))

	tests := []struct {
		name   string
		dx, dy int
		want   bool
	}{
		{"same place", 0, 0, true},
		{"touching solid edge", 4, 4, true},
		{"boxes overlap, solids apart", 5, 0, false},
		{"boxes overlap diagonally", 5, 5, false},
		{"boxes apart", 20, 0, false},
		{"other above-left", -4, -4, true},
		{"other above-left, solids apart", -5, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := a.Overlap(b, tt.dx, tt.dy)
			if got != tt.want {
				t.Errorf("Overlap(%d,%d) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}
