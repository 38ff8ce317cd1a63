package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/flapneat/neural"
)

// Reporter logs and records each generation. It implements neural.Reporter.
type Reporter struct {
	out        *OutputManager // nil disables file output
	perf       *PerfCollector
	milestones *MilestoneDetector
	hof        *HallOfFame

	err error
}

// NewReporter creates a reporter writing to out, which may be nil.
func NewReporter(out *OutputManager, hofSize, stagnationWindow int) *Reporter {
	return &Reporter{
		out:        out,
		perf:       NewPerfCollector(10),
		milestones: NewMilestoneDetector(stagnationWindow),
		hof:        NewHallOfFame(hofSize),
	}
}

// EndGeneration implements neural.Reporter.
func (r *Reporter) EndGeneration(stats neural.GenerationStats) {
	rec := Summarize(stats)
	r.perf.Record(stats.Evaluation.Ticks, stats.Elapsed)
	rec.LogStats()
	slog.Debug("throughput", "perf", r.perf.Stats())

	r.keep(r.out.WriteGeneration(rec))

	for _, m := range r.milestones.Check(rec) {
		m.LogMilestone()
		r.keep(r.out.WriteMilestone(m))
	}

	added, err := r.hof.Consider(stats.Generation, stats.Best, stats.BestFitness, stats.Evaluation.Score)
	r.keep(err)
	if added {
		r.keep(r.out.WriteHallOfFame(r.hof))
	}
}

// keep logs err and remembers the first one.
func (r *Reporter) keep(err error) {
	if err == nil {
		return
	}
	slog.Warn("telemetry write failed", "error", err)
	if r.err == nil {
		r.err = err
	}
}

// HallOfFame returns the run's best genomes so far.
func (r *Reporter) HallOfFame() *HallOfFame {
	return r.hof
}

// Err returns the first output error, if any.
func (r *Reporter) Err() error {
	return r.err
}
