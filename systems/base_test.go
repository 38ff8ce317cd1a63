package systems

import (
	"math"
	"testing"
)

func TestAdvanceBaseStaysContiguous(t *testing.T) {
	p := physics()
	const tile = 672
	screen := 575.0
	b := NewBase(tile, p)

	for i := 0; i < 1000; i++ {
		AdvanceBase(&b, p)

		if math.Abs(math.Abs(b.X1-b.X2)-tile) > 1e-9 {
			t.Fatalf("tick %d: tiles at %v and %v are not adjacent", i+1, b.X1, b.X2)
		}
		left := math.Min(b.X1, b.X2)
		if left > 0 || left+2*tile < screen {
			t.Fatalf("tick %d: tiles [%v,%v) leave a gap in the view", i+1, left, left+2*tile)
		}
	}
}
