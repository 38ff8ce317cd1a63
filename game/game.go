// Package game runs one generation of birds against the pipe course.
//
// A Generation owns an ECS world holding one entity per agent (bird state,
// controller and fitness handle together) and one per pipe. Step advances
// the world by one tick in a fixed phase order; Run drives Step until the
// generation ends and hands every tick to a Frontend.
package game

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flapneat/assets"
	"github.com/pthm-cable/flapneat/components"
	"github.com/pthm-cable/flapneat/config"
	"github.com/pthm-cable/flapneat/neural"
	"github.com/pthm-cable/flapneat/systems"
)

// Outcome is the state of a generation after a tick.
type Outcome int

const (
	OutcomeRunning  Outcome = iota
	OutcomeExtinct          // every agent eliminated
	OutcomeScoreCap         // run.max_score reached
	OutcomeTickCap          // run.max_ticks reached
	OutcomeQuit             // frontend closed or context cancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeExtinct:
		return "extinct"
	case OutcomeScoreCap:
		return "score_cap"
	case OutcomeTickCap:
		return "tick_cap"
	case OutcomeQuit:
		return "quit"
	}
	return "unknown"
}

// Events records what happened during the last tick, for sound and display.
type Events struct {
	Passed  bool
	Crashes int // pipe collisions and out-of-bounds eliminations
}

// AgentSpec describes one agent to place in a generation.
type AgentSpec struct {
	Brain     components.Controller
	Fitness   *neural.Fitness
	Candidate neural.Candidate // zero when the controller was not built from a genome
	Tint      neural.SpeciesColor
}

// Generation is the state of one simulated generation.
type Generation struct {
	cfg   *config.Config
	phys  config.PhysicsConfig
	masks *systems.MaskSet
	rng   *rand.Rand

	world       *ecs.World
	agentMap    *ecs.Map2[components.Bird, components.Agent]
	agentFilter *ecs.Filter2[components.Bird, components.Agent]
	pipeMap     *ecs.Map1[components.Pipe]

	// Ordered handles. agents[0] is the lead bird used for the lookahead.
	agents []ecs.Entity
	pipes  []ecs.Entity
	tints  map[ecs.Entity]neural.SpeciesColor

	base   components.Base
	inputs []float64

	number int
	score  int
	ticks  int
	events Events
}

// NewGeneration builds the world for generation number with one bird per
// agent spec and the first pipe at physics.first_pipe_x.
func NewGeneration(cfg *config.Config, number int, agents []AgentSpec, masks *systems.MaskSet, rng *rand.Rand) *Generation {
	world := ecs.NewWorld()

	g := &Generation{
		cfg:         cfg,
		phys:        cfg.Physics,
		masks:       masks,
		rng:         rng,
		world:       world,
		agentMap:    ecs.NewMap2[components.Bird, components.Agent](world),
		agentFilter: ecs.NewFilter2[components.Bird, components.Agent](world),
		pipeMap:     ecs.NewMap1[components.Pipe](world),
		tints:       make(map[ecs.Entity]neural.SpeciesColor, len(agents)),
		base:        systems.NewBase(assets.BaseWidth, cfg.Physics),
		inputs:      make([]float64, neural.BrainInputs),
		number:      number,
	}

	g.spawnAgents(agents)
	g.spawnPipe(g.phys.FirstPipeX)

	return g
}

// Number returns the generation index shown on screen.
func (g *Generation) Number() int { return g.number }

// Score returns the number of pass-events so far.
func (g *Generation) Score() int { return g.score }

// Ticks returns the number of completed ticks.
func (g *Generation) Ticks() int { return g.ticks }

// Alive returns the number of surviving agents.
func (g *Generation) Alive() int { return len(g.agents) }

// PipeCount returns the number of pipes in play.
func (g *Generation) PipeCount() int { return len(g.pipes) }

// LastEvents returns the events of the most recent tick.
func (g *Generation) LastEvents() Events { return g.events }

// outcome evaluates the terminal conditions at the end of a tick.
func (g *Generation) outcome() Outcome {
	run := g.cfg.Run
	switch {
	case len(g.agents) == 0:
		return OutcomeExtinct
	case run.MaxScore > 0 && g.score >= run.MaxScore:
		return OutcomeScoreCap
	case run.MaxTicks > 0 && g.ticks >= run.MaxTicks:
		return OutcomeTickCap
	}
	return OutcomeRunning
}
