package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flapneat/neural"
)

// GenerationRecord holds the summary of one evaluated generation.
type GenerationRecord struct {
	Generation int `csv:"generation"`

	// Fitness distribution over the whole population
	BestFitness   float64 `csv:"best_fitness"`
	MeanFitness   float64 `csv:"mean_fitness"`
	StdFitness    float64 `csv:"std_fitness"`
	MedianFitness float64 `csv:"median_fitness"`
	P90Fitness    float64 `csv:"p90_fitness"`

	// Speciation
	Species        int     `csv:"species"`
	LargestSpecies int     `csv:"largest_species"`
	Staleness      float64 `csv:"staleness"`
	Extinct        int     `csv:"extinct"`

	// Game
	Score int `csv:"score"`
	Ticks int `csv:"ticks"`

	ElapsedMs   int64   `csv:"elapsed_ms"`
	TicksPerSec float64 `csv:"ticks_per_sec"`
}

// Summarize computes the record for a generation.
func Summarize(s neural.GenerationStats) GenerationRecord {
	rec := GenerationRecord{
		Generation:     s.Generation,
		BestFitness:    s.BestFitness,
		Species:        s.Species.Count,
		LargestSpecies: s.Species.LargestSize,
		Staleness:      s.Species.AverageStaleness,
		Extinct:        s.Extinct,
		Score:          s.Evaluation.Score,
		Ticks:          s.Evaluation.Ticks,
		ElapsedMs:      s.Elapsed.Milliseconds(),
		TicksPerSec:    ticksPerSecond(s.Evaluation.Ticks, s.Elapsed),
	}
	if len(s.Fitness) == 0 {
		return rec
	}

	rec.MeanFitness, rec.StdFitness = FitnessStats(s.Fitness)
	sorted := make([]float64, len(s.Fitness))
	copy(sorted, s.Fitness)
	sort.Float64s(sorted)
	rec.MedianFitness = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	rec.P90Fitness = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	rec.BestFitness = max(rec.BestFitness, floats.Max(sorted))
	return rec
}

// FitnessStats returns the mean and sample standard deviation; a single
// value has zero spread.
func FitnessStats(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

func ticksPerSecond(ticks int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(ticks) / elapsed.Seconds()
}

// LogValue implements slog.LogValuer for structured logging.
func (r GenerationRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", r.Generation),
		slog.Float64("best_fitness", r.BestFitness),
		slog.Float64("mean_fitness", r.MeanFitness),
		slog.Float64("std_fitness", r.StdFitness),
		slog.Float64("median_fitness", r.MedianFitness),
		slog.Int("species", r.Species),
		slog.Int("extinct", r.Extinct),
		slog.Int("score", r.Score),
		slog.Int("ticks", r.Ticks),
		slog.Int64("elapsed_ms", r.ElapsedMs),
	)
}

// LogStats logs the record at info level.
func (r GenerationRecord) LogStats() {
	slog.Info("generation",
		"gen", r.Generation,
		"best", r.BestFitness,
		"mean", r.MeanFitness,
		"std", r.StdFitness,
		"species", r.Species,
		"score", r.Score,
		"ticks", r.Ticks,
		"ticks_per_sec", int(r.TicksPerSec),
	)
}
