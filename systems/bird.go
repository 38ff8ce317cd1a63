// Package systems contains the per-tick rules for birds, pipes and ground.
//
// Every function mutates a single component in place and is independent of
// the ECS world, so the game loop decides ordering and the tests can drive
// each rule directly.
package systems

import (
	"github.com/pthm-cable/flapneat/components"
	"github.com/pthm-cable/flapneat/config"
)

// NewBird returns a bird at rest at the configured start position.
func NewBird(p config.PhysicsConfig) components.Bird {
	return components.Bird{
		X:      p.BirdStartX,
		Y:      p.BirdStartY,
		Height: p.BirdStartY,
	}
}

// Jump gives the bird upward velocity and restarts its displacement clock.
func Jump(b *components.Bird, p config.PhysicsConfig) {
	b.Velocity = p.JumpVelocity
	b.Ticks = 0
	b.Height = b.Y
}

// AdvanceBird moves the bird by one tick and updates its tilt. It returns the
// displacement applied.
//
// Displacement follows d = v*t + g*t^2 for t ticks since the last jump,
// capped at MaxDrop. While rising, RiseBias more lift is added.
func AdvanceBird(b *components.Bird, p config.PhysicsConfig) float64 {
	b.Ticks++
	t := float64(b.Ticks)

	d := b.Velocity*t + p.Gravity*t*t
	if d >= p.MaxDrop {
		d = p.MaxDrop
	}
	if d < 0 {
		d -= p.RiseBias
	}
	b.Y += d

	if d < 0 || b.Y < b.Height+p.TiltMargin {
		if b.Tilt < p.MaxTilt {
			b.Tilt = p.MaxTilt
		}
	} else if b.Tilt > p.MinTilt {
		b.Tilt -= p.TiltStep
		if b.Tilt < p.MinTilt {
			b.Tilt = p.MinTilt
		}
	}
	return d
}

// AdvanceAnimation steps the wing cycle up, mid, down, mid, up with
// AnimationTicks ticks per frame. A diving bird holds its wings level.
func AdvanceAnimation(b *components.Bird, p config.PhysicsConfig) {
	n := p.AnimationTicks
	b.FrameTicks++

	switch {
	case b.FrameTicks <= n:
		b.Frame = 0
	case b.FrameTicks <= 2*n:
		b.Frame = 1
	case b.FrameTicks <= 3*n:
		b.Frame = 2
	case b.FrameTicks <= 4*n:
		b.Frame = 1
	default:
		b.Frame = 0
		b.FrameTicks = 0
	}

	if b.Tilt <= p.DiveTilt {
		b.Frame = 1
		// Resume on the downstroke once the dive ends.
		b.FrameTicks = 2 * n
	}
}

// OutOfBounds reports whether the bird touched the ground or left the top of
// the view. spriteHeight is the unrotated bird height.
func OutOfBounds(b *components.Bird, spriteHeight float64, p config.PhysicsConfig) bool {
	return b.Y+spriteHeight >= p.BaseY || b.Y < 0
}
