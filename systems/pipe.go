package systems

import (
	"math/rand"

	"github.com/pthm-cable/flapneat/components"
	"github.com/pthm-cable/flapneat/config"
)

// NewPipe returns a pipe at x with a random gap. spriteHeight is the height
// of the pipe sprite, used to place the upper spout above the gap.
func NewPipe(x float64, rng *rand.Rand, spriteHeight float64, p config.PhysicsConfig) components.Pipe {
	pipe := components.Pipe{X: x}
	SetPipeHeight(&pipe, rng, spriteHeight, p)
	return pipe
}

// SetPipeHeight draws the gap's top edge uniformly from [GapMin, GapMax).
func SetPipeHeight(pipe *components.Pipe, rng *rand.Rand, spriteHeight float64, p config.PhysicsConfig) {
	pipe.Height = float64(p.GapMin + rng.Intn(p.GapMax-p.GapMin))
	pipe.Top = pipe.Height - spriteHeight
	pipe.Bottom = pipe.Height + p.PipeGap
}

// AdvancePipe scrolls the pipe left by one tick.
func AdvancePipe(pipe *components.Pipe, p config.PhysicsConfig) {
	pipe.X -= p.PipeVelocity
}

// MarkPassed flags the pipe once its left edge is behind birdX. It reports
// true only on the tick the flag flips.
func MarkPassed(pipe *components.Pipe, birdX float64) bool {
	if pipe.Passed || pipe.X >= birdX {
		return false
	}
	pipe.Passed = true
	return true
}

// PipeOffscreen reports whether the pipe has fully left the view.
func PipeOffscreen(pipe *components.Pipe, spriteWidth float64) bool {
	return pipe.X+spriteWidth < 0
}
