package main

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/flapneat/assets"
	"github.com/pthm-cable/flapneat/config"
	"github.com/pthm-cable/flapneat/game"
	"github.com/pthm-cable/flapneat/neural"
	"github.com/pthm-cable/flapneat/systems"
	"github.com/pthm-cable/flapneat/telemetry"
)

// FitnessEvaluator runs headless evolutions and scores the parameters that
// drove them.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	// Best run tracking
	mu           sync.Mutex
	bestFitness  float64
	bestChampion *telemetry.HallEntry
	lastScore    float64 // mean best score from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestChampion returns the champion of the best evaluation so far.
func (fe *FitnessEvaluator) BestChampion() *telemetry.HallEntry {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestChampion
}

// LastScore returns the mean best score of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// runResult holds the results from a single evolution run.
type runResult struct {
	bestScore   int
	bestTicks   int
	generations int // generations played before the run stopped
	champion    *telemetry.HallEntry
	err         error
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runEvolution(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total, totalScore float64
	var best *runResult
	for i := range results {
		r := &results[i]
		f := fe.computeFitness(r)
		total += f
		totalScore += float64(r.bestScore)
		if r.champion != nil && (best == nil || r.champion.Fitness > best.champion.Fitness) {
			best = r
		}
	}

	n := float64(len(fe.seeds))
	avg := total / n

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
		if best != nil {
			fe.bestChampion = best.champion
		}
	}
	fe.lastScore = totalScore / n
	fe.mu.Unlock()

	return avg
}

// runEvolution evolves a fresh population for the configured number of
// generations. Each run builds its own sprite sheet because mask caches are
// not shared between goroutines.
func (fe *FitnessEvaluator) runEvolution(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	rng := rand.New(rand.NewSource(seed))
	pop, err := neural.NewPopulation(cfg.NEAT, rng)
	if err != nil {
		return runResult{err: err}
	}

	ev := &game.Evaluator{
		Config: cfg,
		Masks:  systems.NewMaskSet(assets.NewSheet()),
		Rng:    rng,
	}

	var r runResult
	hof := telemetry.NewHallOfFame(1)
	eval := func(ctx context.Context, gen int, cands []neural.Candidate) (neural.Evaluation, error) {
		e, err := ev.Evaluate(ctx, gen, cands)
		if e.Score > r.bestScore || (e.Score == r.bestScore && e.Ticks > r.bestTicks) {
			r.bestScore, r.bestTicks = e.Score, e.Ticks
		}
		return e, err
	}
	pop.AddReporter(reporterFunc(func(s neural.GenerationStats) {
		hof.Consider(s.Generation, s.Best, s.BestFitness, s.Evaluation.Score)
	}))

	res, err := pop.Run(context.Background(), eval)
	r.err = err
	r.generations = res.Generations
	r.champion = hof.Best()
	return r
}

type reporterFunc func(neural.GenerationStats)

func (f reporterFunc) EndGeneration(s neural.GenerationStats) { f(s) }

// copyConfig returns a copy of the base config. Config holds no reference
// types, so a value copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.NEAT.Generations = fe.generations
	// Every run plays all its generations so scores stay comparable.
	cfg.NEAT.FitnessThreshold = math.Inf(1)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(bestScore + bestTicks/maxTicks)
// Pipes passed dominate; the tick share separates runs with equal score.
// A failed run scores zero.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	if r.err != nil {
		return 0
	}
	progress := 0.0
	if mt := fe.baseConfig.Run.MaxTicks; mt > 0 {
		progress = clamp01(float64(r.bestTicks) / float64(mt))
	}
	return -(float64(r.bestScore) + progress)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
