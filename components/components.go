// Package components defines ECS components for the simulation.
package components

import (
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/flapneat/neural"
)

// Bird holds the kinematic and sprite state of one bird.
type Bird struct {
	X, Y     float64
	Velocity float64 // set by a jump, negative is up
	Ticks    int     // ticks since the last jump
	Height   float64 // Y at the last jump
	Tilt     int     // degrees, positive is nose-up

	Frame      int // wing frame index
	FrameTicks int // animation counter
}

// Pipe is one obstacle pair. Height is the gap's top edge; Top is the y of
// the upper sprite (usually negative) and Bottom the y of the lower sprite.
type Pipe struct {
	X      float64
	Height float64
	Top    float64
	Bottom float64
	Passed bool
}

// Base is the scrolling ground, drawn as two adjacent tiles.
type Base struct {
	Y      float64
	X1, X2 float64
	Width  float64
}

// Controller decides whether a bird jumps from its sensor readings.
type Controller interface {
	Activate(inputs []float64) (float64, error)
}

// Agent binds a bird to its controller and the fitness handle of the genome
// that produced it.
type Agent struct {
	Brain     Controller
	Fitness   *neural.Fitness
	Genome    *genetics.Genome // nil when the controller is not a genome
	SpeciesID int
	Index     int // position in the generation's candidate list

	// Last sensor readings and output, kept for the inspector.
	Inputs [3]float64
	Output float64

	Dead bool
}
