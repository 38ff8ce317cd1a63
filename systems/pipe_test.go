package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/flapneat/components"
)

func TestSetPipeHeightRange(t *testing.T) {
	p := physics()
	rng := rand.New(rand.NewSource(1))
	const spriteH = 640

	for i := 0; i < 2000; i++ {
		pipe := NewPipe(p.PipeSpawnX, rng, spriteH, p)
		if pipe.Height < float64(p.GapMin) || pipe.Height >= float64(p.GapMax) {
			t.Fatalf("height %v outside [%d,%d)", pipe.Height, p.GapMin, p.GapMax)
		}
		if pipe.Bottom-pipe.Height != p.PipeGap {
			t.Fatalf("gap = %v, want %v", pipe.Bottom-pipe.Height, p.PipeGap)
		}
		if pipe.Top != pipe.Height-spriteH {
			t.Fatalf("top = %v, want %v", pipe.Top, pipe.Height-spriteH)
		}
		if pipe.X != p.PipeSpawnX || pipe.Passed {
			t.Fatalf("new pipe at x=%v passed=%v", pipe.X, pipe.Passed)
		}
	}
}

func TestAdvancePipe(t *testing.T) {
	p := physics()
	pipe := components.Pipe{X: 100}
	AdvancePipe(&pipe, p)
	if pipe.X != 100-p.PipeVelocity {
		t.Errorf("x = %v, want %v", pipe.X, 100-p.PipeVelocity)
	}
}

func TestMarkPassedOnce(t *testing.T) {
	pipe := components.Pipe{X: 235}
	const birdX = 230

	if MarkPassed(&pipe, birdX) {
		t.Fatal("pipe ahead of the bird must not pass")
	}
	pipe.X = 230
	if MarkPassed(&pipe, birdX) {
		t.Fatal("pipe level with the bird must not pass")
	}
	pipe.X = 225
	if !MarkPassed(&pipe, birdX) {
		t.Fatal("pipe behind the bird should pass")
	}
	pipe.X = 220
	if MarkPassed(&pipe, birdX) {
		t.Error("a passed pipe must not pass again")
	}
}

func TestPipeOffscreen(t *testing.T) {
	const w = 104
	tests := []struct {
		x    float64
		want bool
	}{
		{0, false},
		{-w, false},
		{-w - 1, true},
	}
	for _, tt := range tests {
		pipe := components.Pipe{X: tt.x}
		if got := PipeOffscreen(&pipe, w); got != tt.want {
			t.Errorf("PipeOffscreen(x=%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}
