package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxSpeed is the largest ticks-per-frame setting offered by the slider.
const MaxSpeed = 20

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Generation   int
	Score        int
	Alive        int
	Ticks        int
	FPS          int32
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the score overlay and the playback controls. The control
// state lives here; the window reads it after each draw.
type HUD struct {
	renderer *Renderer

	Paused        bool
	Speed         int // ticks simulated per drawn frame
	ShowInspector bool
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		Speed:    1,
	}
}

// Draw renders the score top right and the generation top left.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	size := r.Theme.ScoreFontSize

	score := fmt.Sprintf("Score: %d", data.Score)
	r.DrawShadowText(score, data.ScreenWidth-10-rl.MeasureText(score, size), 10, size)
	r.DrawShadowText(fmt.Sprintf("Gen: %d", data.Generation), 10, 10, size)

	rl.DrawText(
		fmt.Sprintf("Alive: %d | Tick: %d | FPS: %d", data.Alive, data.Ticks, data.FPS),
		10, 10+size+4, 16, rl.RayWhite,
	)

	if h.Paused {
		r.DrawShadowText("PAUSED", data.ScreenWidth/2-rl.MeasureText("PAUSED", size)/2, data.ScreenHeight/3, size)
	}
}

// DrawControls renders the raygui controls along the bottom of the view.
func (h *HUD) DrawControls(screenWidth, screenHeight int32) {
	r := h.renderer
	y := float32(screenHeight - 40)
	x := float32(10)

	r.DrawPanel(0, screenHeight-50, screenWidth, 50)

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 80, Height: 30}, toggleText(h.Paused, "Resume", "Pause")) {
		h.Paused = !h.Paused
	}
	x += 90

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 90, Height: 30}, toggleText(h.ShowInspector, "Hide net", "Show net")) {
		h.ShowInspector = !h.ShowInspector
	}
	x += 100

	rl.DrawText("Speed", int32(x), int32(y)+8, r.Theme.FontSize, r.Theme.LabelColor)
	x += 45
	sliderWidth := float32(screenWidth) - x - 60
	speed := gui.SliderBar(
		rl.Rectangle{X: x, Y: y + 5, Width: sliderWidth, Height: 20},
		"", "",
		float32(h.Speed), 1, MaxSpeed,
	)
	h.Speed = clampSpeed(int(math.Round(float64(speed))))
	rl.DrawText(fmt.Sprintf("%dx", h.Speed), int32(x+sliderWidth+8), int32(y)+6, 16, r.Theme.ValueColor)
}

// HandleKeys applies keyboard shortcuts: space pauses, N toggles the
// network inspector, up and down change speed.
func (h *HUD) HandleKeys() {
	if rl.IsKeyPressed(rl.KeySpace) {
		h.Paused = !h.Paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		h.ShowInspector = !h.ShowInspector
	}
	if rl.IsKeyPressed(rl.KeyUp) {
		h.Speed = clampSpeed(h.Speed + 1)
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		h.Speed = clampSpeed(h.Speed - 1)
	}
}

func clampSpeed(s int) int {
	if s < 1 {
		return 1
	}
	if s > MaxSpeed {
		return MaxSpeed
	}
	return s
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
