// Package audio plays short procedural cues for pipe passes and crashes.
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

const sampleRate = beep.SampleRate(44100)

// WaveType selects the oscillator shape.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveNoise
)

// oscillator generates a fixed-length raw wave.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *rand.Rand
}

// NewOscillator creates a wave of the given frequency and length. Noise
// ignores freq.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      rand.New(rand.NewSource(int64(freq*1000) + 1)),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// decay fades a stream exponentially to silence over its length.
type decay struct {
	streamer beep.Streamer
	position int
	total    int
	attack   int
}

// NewDecay shapes s with a linear attack followed by an exponential tail
// that reaches about -40dB at duration.
func NewDecay(s beep.Streamer, duration, attack time.Duration, rate beep.SampleRate) beep.Streamer {
	return &decay{streamer: s, total: rate.N(duration), attack: rate.N(attack)}
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if d.position >= d.total {
			return i, i > 0
		}
		vol := math.Exp(-4.6 * float64(d.position) / float64(d.total))
		if d.position < d.attack {
			vol *= float64(d.position) / float64(d.attack)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// withVolume scales s by a linear gain; zero or less is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// PassChime is a rising two-note chime played when the score goes up.
func PassChime(vol float64) beep.Streamer {
	n1 := NewDecay(NewOscillator(880, 70*time.Millisecond, WaveSquare, sampleRate), 70*time.Millisecond, 3*time.Millisecond, sampleRate)
	n2 := NewDecay(NewOscillator(1318.51, 160*time.Millisecond, WaveSquare, sampleRate), 160*time.Millisecond, 3*time.Millisecond, sampleRate)
	return withVolume(beep.Seq(n1, n2), vol*0.3)
}

// CrashThud is a short low hit mixed with a burst of noise.
func CrashThud(vol float64) beep.Streamer {
	body := NewDecay(NewOscillator(90, 180*time.Millisecond, WaveSine, sampleRate), 180*time.Millisecond, 2*time.Millisecond, sampleRate)
	hit := NewDecay(NewOscillator(0, 60*time.Millisecond, WaveNoise, sampleRate), 60*time.Millisecond, time.Millisecond, sampleRate)
	return withVolume(beep.Mix(body, withVolume(hit, 0.4)), vol*0.5)
}
