package systems

import (
	"testing"

	"github.com/pthm-cable/flapneat/assets"
	"github.com/pthm-cable/flapneat/components"
)

// farAway keeps a spout clear of every test bird.
const farAway = -5000

func TestPipeCollides(t *testing.T) {
	ms := NewMaskSet(assets.NewSheet())

	tests := []struct {
		name string
		bird components.Bird
		pipe components.Pipe
		want bool
	}{
		{
			// Bounding boxes share the bird's bottom-right 2x2 corner, which
			// is transparent.
			name: "transparent corner on lip corner",
			bird: components.Bird{X: 100, Y: 100},
			pipe: components.Pipe{X: 166, Top: farAway, Bottom: 146},
			want: false,
		},
		{
			name: "body into bottom lip",
			bird: components.Bird{X: 100, Y: 100},
			pipe: components.Pipe{X: 120, Top: farAway, Bottom: 110},
			want: true,
		},
		{
			name: "head into top lip",
			bird: components.Bird{X: 210, Y: 290},
			pipe: components.Pipe{X: 200, Height: 300, Top: 300 - assets.PipeHeight, Bottom: 500},
			want: true,
		},
		{
			name: "inside the gap",
			bird: components.Bird{X: 210, Y: 380},
			pipe: components.Pipe{X: 200, Height: 300, Top: 300 - assets.PipeHeight, Bottom: 500},
			want: false,
		},
		{
			name: "level bird clears the lip",
			bird: components.Bird{X: 100, Y: 100},
			pipe: components.Pipe{X: 100, Top: farAway, Bottom: 152},
			want: false,
		},
		{
			// Same position, but the nose-down sprite reaches further.
			name: "diving bird reaches the lip",
			bird: components.Bird{X: 100, Y: 100, Tilt: -90},
			pipe: components.Pipe{X: 100, Top: farAway, Bottom: 152},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PipeCollides(&tt.bird, &tt.pipe, ms); got != tt.want {
				t.Errorf("PipeCollides = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaskSetCachesBirds(t *testing.T) {
	ms := NewMaskSet(assets.NewSheet())
	a, offA := ms.Bird(1, -40)
	b, offB := ms.Bird(1, -40)
	if a != b || offA != offB {
		t.Error("expected the cached mask to be returned")
	}
	if a.Count() == 0 {
		t.Error("rotated bird mask is empty")
	}
}
