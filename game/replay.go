package game

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/flapneat/config"
	"github.com/pthm-cable/flapneat/neural"
	"github.com/pthm-cable/flapneat/systems"
)

// Replay flies a single saved genome through fresh courses. It plays rounds
// generations, or until quit when rounds is zero, and returns the result of
// each round played.
func Replay(ctx context.Context, cfg *config.Config, genome *genetics.Genome, masks *systems.MaskSet, rng *rand.Rand, fe Frontend, rounds int) ([]Result, error) {
	var results []Result
	for round := 0; rounds <= 0 || round < rounds; round++ {
		brain, err := neural.NewBrain(genome)
		if err != nil {
			return results, fmt.Errorf("replay genome %d: %w", genome.Id, err)
		}
		spec := AgentSpec{
			Brain:     brain,
			Fitness:   &neural.Fitness{},
			Candidate: neural.Candidate{Genome: genome},
			Tint:      neural.SpeciesColor{R: 255, G: 255, B: 255},
		}

		gen := NewGeneration(cfg, round, []AgentSpec{spec}, masks, rng)
		res, err := Run(ctx, gen, fe)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if res.Outcome == OutcomeQuit {
			break
		}
	}
	return results, nil
}
