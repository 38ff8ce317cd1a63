// Package renderer provides the frontends that present each tick: a raylib
// window and a tcell terminal view.
package renderer

import (
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flapneat/assets"
)

// textures holds GPU copies of the sprite sheet. Must be created after the
// raylib window is open.
type textures struct {
	bird       [assets.BirdFrames]rl.Texture2D
	pipeTop    rl.Texture2D
	pipeBottom rl.Texture2D
	base       rl.Texture2D
	background rl.Texture2D
}

func loadTextures(sheet *assets.Sheet) *textures {
	t := &textures{
		pipeTop:    upload(sheet.PipeTop),
		pipeBottom: upload(sheet.PipeBottom),
		base:       upload(sheet.Base),
		background: upload(sheet.Background),
	}
	for i, img := range sheet.Bird {
		t.bird[i] = upload(img)
	}
	return t
}

func upload(img *image.RGBA) rl.Texture2D {
	cpu := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(cpu)
	rl.UnloadImage(cpu)
	return tex
}

func (t *textures) unload() {
	for _, tex := range t.bird {
		rl.UnloadTexture(tex)
	}
	rl.UnloadTexture(t.pipeTop)
	rl.UnloadTexture(t.pipeBottom)
	rl.UnloadTexture(t.base)
	rl.UnloadTexture(t.background)
}
