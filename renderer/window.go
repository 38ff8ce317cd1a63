package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flapneat/assets"
	"github.com/pthm-cable/flapneat/config"
	"github.com/pthm-cable/flapneat/game"
	"github.com/pthm-cable/flapneat/inspector"
	"github.com/pthm-cable/flapneat/ui"
)

// Window presents ticks in a raylib window. raylib's frame governor paces
// the loop at screen.target_fps; with speed above 1 only every n-th tick is
// drawn, so the simulation runs n times faster.
type Window struct {
	cfg       *config.Config
	tex       *textures
	hud       *ui.HUD
	inspector *inspector.Panel
	ticks     int
}

// OpenWindow creates the window and uploads the sprite sheet. Call Close
// when done.
func OpenWindow(cfg *config.Config, sheet *assets.Sheet, title string) *Window {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), title)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	return &Window{
		cfg:       cfg,
		tex:       loadTextures(sheet),
		hud:       ui.NewHUD(),
		inspector: inspector.NewPanel(int32(cfg.Screen.Width), int32(cfg.Screen.Height)),
	}
}

// Close frees textures and closes the window.
func (w *Window) Close() {
	w.tex.unload()
	rl.CloseWindow()
}

// Present implements game.Frontend. While paused it keeps redrawing the
// same frame until resumed or closed.
func (w *Window) Present(f *game.Frame) game.Input {
	w.ticks++
	if !w.hud.Paused && w.ticks%w.hud.Speed != 0 && f.Alive > 0 {
		return game.InputNone
	}

	for {
		if rl.WindowShouldClose() {
			return game.InputQuit
		}
		w.hud.HandleKeys()
		w.draw(f)
		if !w.hud.Paused {
			return game.InputNone
		}
	}
}

func (w *Window) draw(f *game.Frame) {
	screenW := int32(w.cfg.Screen.Width)
	screenH := int32(w.cfg.Screen.Height)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	rl.DrawTexture(w.tex.background, 0, 0, rl.White)

	for _, p := range f.Pipes {
		rl.DrawTextureV(w.tex.pipeTop, rl.Vector2{X: float32(p.X), Y: float32(p.Top)}, rl.White)
		rl.DrawTextureV(w.tex.pipeBottom, rl.Vector2{X: float32(p.X), Y: float32(p.Bottom)}, rl.White)
	}

	w.hud.Draw(ui.HUDData{
		Generation:   f.Generation,
		Score:        f.Score,
		Alive:        f.Alive,
		Ticks:        f.Ticks,
		FPS:          rl.GetFPS(),
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
	})

	rl.DrawTextureV(w.tex.base, rl.Vector2{X: float32(f.Base.X1), Y: float32(f.Base.Y)}, rl.White)
	rl.DrawTextureV(w.tex.base, rl.Vector2{X: float32(f.Base.X2), Y: float32(f.Base.Y)}, rl.White)

	for _, b := range f.Birds {
		w.drawBird(b)
	}

	if w.hud.ShowInspector {
		w.inspector.Draw(f, w.cfg.Rewards.JumpThreshold)
	}
	w.hud.DrawControls(screenW, screenH)

	rl.EndDrawing()
}

// drawBird draws the sprite rotated about its centre. raylib rotates
// clockwise, so a nose-up tilt is a negative rotation.
func (w *Window) drawBird(b game.BirdView) {
	tex := w.tex.bird[b.Frame]
	width, height := float32(tex.Width), float32(tex.Height)

	src := rl.Rectangle{X: 0, Y: 0, Width: width, Height: height}
	dst := rl.Rectangle{
		X:      float32(b.X) + width/2,
		Y:      float32(b.Y) + height/2,
		Width:  width,
		Height: height,
	}
	origin := rl.Vector2{X: width / 2, Y: height / 2}
	tint := rl.Color{R: b.Tint.R, G: b.Tint.G, B: b.Tint.B, A: 255}

	rl.DrawTexturePro(tex, src, dst, origin, float32(-b.Tilt), tint)
}
