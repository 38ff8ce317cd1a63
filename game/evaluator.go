package game

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/flapneat/config"
	"github.com/pthm-cable/flapneat/neural"
	"github.com/pthm-cable/flapneat/systems"
)

// Evaluator plays each generation handed over by the population.
type Evaluator struct {
	Config   *config.Config
	Masks    *systems.MaskSet
	Rng      *rand.Rand
	Frontend Frontend // nil runs headless

	// Colors maps species IDs to bird tints. Optional.
	Colors func(speciesID int) neural.SpeciesColor
}

// Evaluate implements neural.EvalFunc. A quit from the frontend or context
// halts evolution after this generation.
func (e *Evaluator) Evaluate(ctx context.Context, generation int, cands []neural.Candidate) (neural.Evaluation, error) {
	specs, err := AgentsFromCandidates(cands, e.Colors)
	if err != nil {
		return neural.Evaluation{}, err
	}

	gen := NewGeneration(e.Config, generation, specs, e.Masks, e.Rng)
	res, err := Run(ctx, gen, e.Frontend)
	if err != nil {
		return neural.Evaluation{}, err
	}

	slog.Debug("generation finished",
		"generation", generation,
		"outcome", res.Outcome.String(),
		"score", res.Score,
		"ticks", res.Ticks,
	)

	return neural.Evaluation{
		Halt:  res.Outcome == OutcomeQuit,
		Score: res.Score,
		Ticks: res.Ticks,
	}, nil
}
