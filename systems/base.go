package systems

import (
	"github.com/pthm-cable/flapneat/components"
	"github.com/pthm-cable/flapneat/config"
)

// NewBase returns the ground with its two tiles side by side.
func NewBase(tileWidth float64, p config.PhysicsConfig) components.Base {
	return components.Base{
		Y:     p.BaseY,
		X1:    0,
		X2:    tileWidth,
		Width: tileWidth,
	}
}

// AdvanceBase scrolls both tiles and moves a tile that left the view to
// the right of the other one.
func AdvanceBase(b *components.Base, p config.PhysicsConfig) {
	b.X1 -= p.BaseVelocity
	b.X2 -= p.BaseVelocity

	if b.X1+b.Width < 0 {
		b.X1 = b.X2 + b.Width
	}
	if b.X2+b.Width < 0 {
		b.X2 = b.X1 + b.Width
	}
}
