package assets

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

type rotationKey struct {
	frame int
	tilt  int
}

// Rotated is a bird frame turned by its tilt. Offset is the position of the
// rotated image's top-left corner relative to the unrotated sprite's
// top-left, so the rotated sprite stays centred on the same point.
type Rotated struct {
	Image  *image.RGBA
	Offset image.Point
}

// BirdFrame returns wing frame rotated counter-clockwise by tilt degrees.
// Results are cached per (frame, tilt).
func (s *Sheet) BirdFrame(frame, tilt int) *Rotated {
	key := rotationKey{frame: frame, tilt: tilt}
	if r, ok := s.rotated[key]; ok {
		return r
	}
	r := Rotate(s.Bird[frame], tilt)
	s.rotated[key] = r
	return r
}

// Rotate turns src counter-clockwise (as seen on screen) by deg degrees.
// The output is the bounding box of the turned image; uncovered pixels are
// transparent. Nearest-neighbour sampling keeps the alpha edge crisp so the
// collision mask does not pick up half-transparent fringe.
func Rotate(src *image.RGBA, deg int) *Rotated {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if deg%360 == 0 {
		return &Rotated{Image: src}
	}

	rad := float64(deg) * math.Pi / 180
	sin, cos := math.Sincos(rad)
	// The epsilon absorbs rounding in sin/cos at right angles.
	nw := int(math.Ceil(math.Abs(float64(w)*cos) + math.Abs(float64(h)*sin) - 1e-9))
	nh := int(math.Ceil(math.Abs(float64(w)*sin) + math.Abs(float64(h)*cos) - 1e-9))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))

	// Source to destination: translate the source centre to the origin,
	// rotate (y grows downward, so counter-clockwise is [cos sin; -sin cos]),
	// then translate to the destination centre.
	cx, cy := float64(w)/2, float64(h)/2
	dcx, dcy := float64(nw)/2, float64(nh)/2
	m := f64.Aff3{
		cos, sin, dcx - cos*cx - sin*cy,
		-sin, cos, dcy + sin*cx - cos*cy,
	}
	draw.NearestNeighbor.Transform(dst, m, src, b, draw.Over, nil)

	return &Rotated{
		Image:  dst,
		Offset: image.Pt(w/2-nw/2, h/2-nh/2),
	}
}
