package telemetry

import (
	"log/slog"
	"time"
)

// PerfSample holds timing data for one generation.
type PerfSample struct {
	Ticks   int
	Elapsed time.Duration
}

// PerfCollector tracks simulation throughput over a rolling window of
// generations.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int
}

// NewPerfCollector creates a collector averaging over windowSize
// generations.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
	}
}

// Record adds a generation's tick count and wall time.
func (p *PerfCollector) Record(ticks int, elapsed time.Duration) {
	p.samples[p.writeIndex] = PerfSample{Ticks: ticks, Elapsed: elapsed}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated throughput.
type PerfStats struct {
	Generations     int
	AvgGeneration   time.Duration
	AvgTickDuration time.Duration
	TicksPerSecond  float64
}

// Stats computes throughput over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{}
	}

	var ticks int
	var total time.Duration
	for i := 0; i < p.sampleCount; i++ {
		ticks += p.samples[i].Ticks
		total += p.samples[i].Elapsed
	}

	s := PerfStats{
		Generations:   p.sampleCount,
		AvgGeneration: total / time.Duration(p.sampleCount),
	}
	if ticks > 0 {
		s.AvgTickDuration = total / time.Duration(ticks)
	}
	if total > 0 {
		s.TicksPerSecond = float64(ticks) / total.Seconds()
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generations", s.Generations),
		slog.Int64("avg_generation_ms", s.AvgGeneration.Milliseconds()),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	)
}
