package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/flapneat/config"
	"github.com/pthm-cable/flapneat/game"
)

// Sink accepts streamers for playback.
type Sink interface {
	Play(s beep.Streamer)
}

// Speaker plays streamers through the system audio device.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeaker opens the audio device and starts an empty mixer on it.
func NewSpeaker() (*Speaker, error) {
	s := &Speaker{mixer: &beep.Mixer{}}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return s, nil
}

// Play implements Sink.
func (s *Speaker) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close silences the mixer and releases the device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	s.initialized = false
}

// maxCrashesPerTick caps how many thuds a mass elimination triggers.
const maxCrashesPerTick = 3

// Cues decorates a frontend with sounds for the events in each frame.
type Cues struct {
	Next   game.Frontend // may be nil for headless runs
	sink   Sink
	volume float64
}

// NewCues wraps next. A disabled config or a nil sink yields next itself.
func NewCues(cfg config.AudioConfig, sink Sink, next game.Frontend) game.Frontend {
	if !cfg.Enabled || sink == nil {
		return next
	}
	return &Cues{Next: next, sink: sink, volume: cfg.Volume}
}

// Present implements game.Frontend.
func (c *Cues) Present(f *game.Frame) game.Input {
	if f.Events.Passed {
		c.sink.Play(PassChime(c.volume))
	}
	for i := 0; i < min(f.Events.Crashes, maxCrashesPerTick); i++ {
		c.sink.Play(CrashThud(c.volume))
	}
	if c.Next == nil {
		return game.InputNone
	}
	return c.Next.Present(f)
}
