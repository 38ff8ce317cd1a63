// Package inspector draws the lead bird's state and network.
package inspector

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flapneat/game"
)

// Readout is the lead bird's state as shown in the panel. Field tags pick
// the widget; see ParseTag.
type Readout struct {
	Genome  int     `inspect:"label"`
	Species int     `inspect:"label"`
	Fitness float64 `inspect:"label,fmt:%.1f"`
	Nodes   int     `inspect:"label"`
	Links   int     `inspect:"label"`
	Y       float64 `inspect:"bar,max:730,fmt:%.0f"`
	Top     float64 `inspect:"bar,max:730,fmt:%.0f,name:To top"`
	Bottom  float64 `inspect:"bar,max:730,fmt:%.0f,name:To bottom"`
	Jump    float64 `inspect:"bar,min:-1,max:1,mark:0.5"`
	Tilt    int     `inspect:"angle"`
	Flapped bool    `inspect:"bool,name:Jumping"`
}

// NewReadout collects the lead bird's state from a frame. ok is false when
// no bird is alive.
func NewReadout(f *game.Frame, threshold float64) (r Readout, ok bool) {
	if f.Lead == nil || len(f.Birds) == 0 {
		return Readout{}, false
	}
	lead := f.Lead
	r = Readout{
		Species: lead.SpeciesID,
		Fitness: lead.Fitness,
		Y:       lead.Inputs[0],
		Top:     lead.Inputs[1],
		Bottom:  lead.Inputs[2],
		Jump:    lead.Output,
		Tilt:    f.Birds[0].Tilt,
		Flapped: lead.Output > threshold,
	}
	if lead.Genome != nil {
		r.Genome = lead.Genome.Id
		r.Nodes = len(lead.Genome.Nodes)
		r.Links = len(lead.Genome.Genes)
	}
	return r, true
}

// Panel draws the readout and the network diagram on the right of the view.
type Panel struct {
	screenWidth  int32
	screenHeight int32
	width        int32
}

// NewPanel creates a panel sized for the given screen.
func NewPanel(screenWidth, screenHeight int32) *Panel {
	return &Panel{
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		width:        300,
	}
}

// Draw renders the panel for the frame's lead bird.
func (p *Panel) Draw(f *game.Frame, threshold float64) {
	x := p.screenWidth - p.width - 10
	y := int32(70)
	height := p.screenHeight - y - 130

	rl.DrawRectangle(x, y, p.width, height, rl.Color{R: 20, G: 25, B: 30, A: 220})
	rl.DrawRectangleLines(x, y, p.width, height, rl.Color{R: 60, G: 70, B: 80, A: 255})

	readout, ok := NewReadout(f, threshold)
	if !ok {
		rl.DrawText("No bird alive", x+10, y+10, 14, ColorLabelDim)
		return
	}

	rl.DrawText("Lead bird", x+10, y+8, 16, rl.Yellow)
	cy := y + 30
	for _, field := range ExtractFields(&readout) {
		cy += DrawField(x+10, cy, field)
	}

	netTop := cy + 10
	DrawNetworkDiagram(x+10, netTop, p.width-20, y+height-netTop-10, f.Lead.Genome, f.Lead.Inputs, f.Lead.Output, 730)
}
