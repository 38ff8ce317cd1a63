// Package assets builds the sprite images the game draws and collides with.
//
// Sprites are generated procedurally at the doubled resolution the game runs
// at, so the harness needs no image files on disk. Every sprite keeps real
// transparency around its silhouette; collision masks are derived from it.
package assets

import (
	"image"
	"image/color"
	"math"
)

// Sprite dimensions in view pixels.
const (
	BirdWidth        = 68
	BirdHeight       = 48
	PipeWidth        = 104
	PipeHeight       = 640
	PipeLipHeight    = 48
	PipeBodyInset    = 6
	BaseWidth        = 672
	BaseHeight       = 224
	BackgroundWidth  = 576
	BackgroundHeight = 1024
)

// BirdFrames is the number of wing animation frames.
const BirdFrames = 3

// Palette
var (
	colorBody    = color.RGBA{R: 247, G: 206, B: 58, A: 255}
	colorBelly   = color.RGBA{R: 250, G: 236, B: 160, A: 255}
	colorWing    = color.RGBA{R: 255, G: 250, B: 230, A: 255}
	colorEye     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorPupil   = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	colorBeak    = color.RGBA{R: 240, G: 110, B: 40, A: 255}
	colorPipe    = color.RGBA{R: 116, G: 191, B: 46, A: 255}
	colorPipeHi  = color.RGBA{R: 168, G: 228, B: 96, A: 255}
	colorPipeLo  = color.RGBA{R: 84, G: 128, B: 34, A: 255}
	colorDirt    = color.RGBA{R: 222, G: 216, B: 149, A: 255}
	colorDirtDk  = color.RGBA{R: 196, G: 186, B: 118, A: 255}
	colorGrass   = color.RGBA{R: 115, G: 191, B: 46, A: 255}
	colorGrassDk = color.RGBA{R: 85, G: 150, B: 32, A: 255}
	colorSkyTop  = color.RGBA{R: 78, G: 192, B: 202, A: 255}
	colorSkyLow  = color.RGBA{R: 200, G: 240, B: 236, A: 255}
	colorCloud   = color.RGBA{R: 234, G: 252, B: 250, A: 255}
)

// wingLift is the vertical wing centre for each animation frame (up, mid, down).
var wingLift = [BirdFrames]float64{17, 24, 31}

// Sheet holds every sprite the game uses plus a cache of rotated bird frames.
type Sheet struct {
	Bird       [BirdFrames]*image.RGBA
	PipeTop    *image.RGBA
	PipeBottom *image.RGBA
	Base       *image.RGBA
	Background *image.RGBA

	rotated map[rotationKey]*Rotated
}

// NewSheet generates the sprite sheet.
func NewSheet() *Sheet {
	s := &Sheet{
		rotated: make(map[rotationKey]*Rotated),
	}
	for i := range s.Bird {
		s.Bird[i] = drawBird(wingLift[i])
	}
	s.PipeBottom = drawPipe()
	s.PipeTop = flipVertical(s.PipeBottom)
	s.Base = drawBase()
	s.Background = drawBackground()
	return s
}

// insideEllipse reports whether the centre of pixel (x, y) lies inside the
// axis-aligned ellipse centred at (cx, cy).
func insideEllipse(x, y int, cx, cy, rx, ry float64) bool {
	dx := (float64(x) + 0.5 - cx) / rx
	dy := (float64(y) + 0.5 - cy) / ry
	return dx*dx+dy*dy <= 1
}

func drawBird(wingY float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, BirdWidth, BirdHeight))
	for y := 0; y < BirdHeight; y++ {
		for x := 0; x < BirdWidth; x++ {
			switch {
			case insideEllipse(x, y, 47, 16, 6, 6):
				if insideEllipse(x, y, 49, 16, 2.5, 2.5) {
					img.SetRGBA(x, y, colorPupil)
				} else {
					img.SetRGBA(x, y, colorEye)
				}
			case insideEllipse(x, y, 58, 29, 10, 5):
				img.SetRGBA(x, y, colorBeak)
			case insideEllipse(x, y, 22, wingY, 13, 7):
				img.SetRGBA(x, y, colorWing)
			case insideEllipse(x, y, 34, 32, 20, 10):
				img.SetRGBA(x, y, colorBelly)
			case insideEllipse(x, y, 32, 24, 28, 20):
				img.SetRGBA(x, y, colorBody)
			}
		}
	}
	return img
}

// drawPipe draws the upright (bottom) pipe: a wide lip on top of a narrower body.
func drawPipe() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, PipeWidth, PipeHeight))
	for y := 0; y < PipeHeight; y++ {
		left, right := 0, PipeWidth
		if y >= PipeLipHeight {
			left, right = PipeBodyInset, PipeWidth-PipeBodyInset
		}
		for x := left; x < right; x++ {
			c := colorPipe
			switch {
			case x-left < 6 || y == 0 || y == PipeLipHeight-1:
				c = colorPipeLo
			case x-left < 18:
				c = colorPipeHi
			case right-x <= 10:
				c = colorPipeLo
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func drawBase() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, BaseWidth, BaseHeight))
	for y := 0; y < BaseHeight; y++ {
		for x := 0; x < BaseWidth; x++ {
			var c color.RGBA
			switch {
			case y < 4:
				c = colorGrassDk
			case y < 22:
				// Diagonal stripes make the scroll visible.
				if ((x+y)/12)%2 == 0 {
					c = colorGrass
				} else {
					c = colorGrassDk
				}
			case y < 28:
				c = colorDirtDk
			default:
				c = colorDirt
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func drawBackground() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, BackgroundWidth, BackgroundHeight))
	for y := 0; y < BackgroundHeight; y++ {
		t := float64(y) / float64(BackgroundHeight-1)
		sky := lerpColor(colorSkyTop, colorSkyLow, t)
		for x := 0; x < BackgroundWidth; x++ {
			img.SetRGBA(x, y, sky)
		}
	}
	// Cloud band along the horizon
	for i := 0; i < 9; i++ {
		cx := float64(i*72 + 20)
		cy := 600 + 18*math.Sin(float64(i)*1.7)
		r := 40 + 12*math.Cos(float64(i)*2.3)
		for y := int(cy - r); y < int(cy+r); y++ {
			for x := int(cx - r); x < int(cx+r); x++ {
				if x < 0 || x >= BackgroundWidth || y < 0 || y >= BackgroundHeight {
					continue
				}
				if insideEllipse(x, y, cx, cy, r, r) {
					img.SetRGBA(x, y, colorCloud)
				}
			}
		}
	}
	return img
}

func flipVertical(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, b.Max.Y-1-(y-b.Min.Y), src.RGBAAt(x, y))
		}
	}
	return dst
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
