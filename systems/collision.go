package systems

import (
	"image"
	"math"

	"github.com/pthm-cable/flapneat/assets"
	"github.com/pthm-cable/flapneat/components"
)

type birdMask struct {
	mask   *Mask
	offset image.Point
}

// MaskSet caches the collision masks derived from a sprite sheet. Bird masks
// are built lazily per (frame, tilt). Not safe for concurrent use.
type MaskSet struct {
	sheet      *assets.Sheet
	PipeTop    *Mask
	PipeBottom *Mask
	birds      map[[2]int]birdMask
}

// NewMaskSet derives pipe masks from the sheet.
func NewMaskSet(sheet *assets.Sheet) *MaskSet {
	return &MaskSet{
		sheet:      sheet,
		PipeTop:    MaskFromImage(sheet.PipeTop),
		PipeBottom: MaskFromImage(sheet.PipeBottom),
		birds:      make(map[[2]int]birdMask),
	}
}

// Bird returns the mask of the bird sprite as currently drawn and the offset
// of its top-left corner from the bird's position.
func (ms *MaskSet) Bird(frame, tilt int) (*Mask, image.Point) {
	key := [2]int{frame, tilt}
	if bm, ok := ms.birds[key]; ok {
		return bm.mask, bm.offset
	}
	r := ms.sheet.BirdFrame(frame, tilt)
	bm := birdMask{mask: MaskFromImage(r.Image), offset: r.Offset}
	ms.birds[key] = bm
	return bm.mask, bm.offset
}

// PipeCollides reports whether any solid pixel of the bird, as drawn with
// its current frame and tilt, overlaps a solid pixel of either spout.
func PipeCollides(b *components.Bird, pipe *components.Pipe, ms *MaskSet) bool {
	mask, off := ms.Bird(b.Frame, b.Tilt)
	bx := int(math.Round(b.X)) + off.X
	by := int(math.Round(b.Y)) + off.Y
	px := int(math.Round(pipe.X))

	if _, hit := mask.Overlap(ms.PipeTop, px-bx, int(math.Round(pipe.Top))-by); hit {
		return true
	}
	_, hit := mask.Overlap(ms.PipeBottom, px-bx, int(math.Round(pipe.Bottom))-by)
	return hit
}
