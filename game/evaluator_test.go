package game

import (
	"context"
	"math/rand"
	"testing"

	neatmath "github.com/yaricom/goNEAT/v4/neat/math"

	"github.com/pthm-cable/flapneat/config"
	"github.com/pthm-cable/flapneat/neural"
)

func TestEvaluatorDrivesPopulation(t *testing.T) {
	cfg := config.Default()
	cfg.NEAT.PopulationSize = 6
	cfg.NEAT.Generations = 2
	cfg.NEAT.FitnessThreshold = 1e9
	cfg.Run.MaxTicks = 40

	rng := rand.New(rand.NewSource(11))
	pop, err := neural.NewPopulation(cfg.NEAT, rng)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}

	ev := &Evaluator{
		Config: cfg,
		Masks:  testMasks,
		Rng:    rng,
		Colors: pop.Species().GetSpeciesColor,
	}
	res, err := pop.Run(context.Background(), ev.Evaluate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Generations != 2 {
		t.Errorf("generations = %d, want 2", res.Generations)
	}
	if res.Champion == nil {
		t.Fatal("no champion")
	}
	// Every bird lives at least one tick.
	if res.ChampionFitness < cfg.Rewards.Alive {
		t.Errorf("champion fitness = %v, want at least %v", res.ChampionFitness, cfg.Rewards.Alive)
	}
	t.Logf("champion fitness %.2f", res.ChampionFitness)
}

type quitNow struct{}

func (quitNow) Present(*Frame) Input { return InputQuit }

func TestEvaluatorQuitHaltsEvolution(t *testing.T) {
	cfg := config.Default()
	cfg.NEAT.PopulationSize = 4
	cfg.NEAT.Generations = 5

	rng := rand.New(rand.NewSource(5))
	pop, err := neural.NewPopulation(cfg.NEAT, rng)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}

	ev := &Evaluator{Config: cfg, Masks: testMasks, Rng: rng, Frontend: quitNow{}}
	res, err := pop.Run(context.Background(), ev.Evaluate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Halted || res.Generations != 1 {
		t.Errorf("result = halted %v after %d generations, want halted after 1", res.Halted, res.Generations)
	}
}

func TestReplayRounds(t *testing.T) {
	cfg := config.Default()
	cfg.Run.MaxTicks = 15

	genome := neural.CreateBrainGenome(1, 1, mustActivation(t, cfg.NEAT.OutputActivation), rand.New(rand.NewSource(2)))
	results, err := Replay(context.Background(), cfg, genome, testMasks, rand.New(rand.NewSource(3)), nil, 3)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("rounds = %d, want 3", len(results))
	}
	for i, r := range results {
		if r.Outcome == OutcomeQuit || r.Ticks == 0 || r.Ticks > 15 {
			t.Errorf("round %d: %+v", i, r)
		}
	}
}

func mustActivation(t *testing.T, name string) neatmath.NodeActivationType {
	t.Helper()
	act, err := neural.ActivationByName(name)
	if err != nil {
		t.Fatal(err)
	}
	return act
}
