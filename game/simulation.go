package game

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flapneat/assets"
	"github.com/pthm-cable/flapneat/components"
	"github.com/pthm-cable/flapneat/systems"
)

// Step runs a single tick. Phases run in a fixed order; later phases see
// the eliminations of earlier ones. Activation errors abort the tick.
func (g *Generation) Step() (Outcome, error) {
	g.events = Events{}
	if len(g.agents) == 0 {
		return OutcomeExtinct, nil
	}

	// 1. Pick the pipe every bird looks at
	active := g.activePipe()

	// 2. Move birds, reward survival, query brains
	if err := g.updateBirds(active); err != nil {
		return OutcomeRunning, err
	}

	// 3. Collide, latch passes, scroll pipes
	passed, expired := g.updatePipes()
	g.cleanupDead()

	// 4. Score once per tick and spawn the next pipe
	if passed {
		g.score++
		g.rewardSurvivors()
		g.spawnPipe(g.phys.PipeSpawnX)
		g.events.Passed = true
	}

	// 5. Drop pipes that left the view
	g.removePipes(expired)

	// 6. Floor and ceiling
	g.checkBounds()
	g.cleanupDead()

	// 7. Ground scroll
	systems.AdvanceBase(&g.base, g.phys)

	// 8. Wing animation for the next collision test and draw
	g.animate()

	g.ticks++
	return g.outcome(), nil
}

// activePipe returns the index of the pipe the birds reason about: the
// first one, unless the lead bird is already past its right edge.
func (g *Generation) activePipe() int {
	if len(g.pipes) == 0 {
		return -1
	}
	if len(g.pipes) > 1 {
		lead, _ := g.agentMap.Get(g.agents[0])
		first := g.pipeMap.Get(g.pipes[0])
		if lead.X > first.X+assets.PipeWidth {
			return 1
		}
	}
	return 0
}

// updateBirds advances every surviving bird, adds the alive reward and
// jumps when the controller output exceeds the threshold.
func (g *Generation) updateBirds(active int) error {
	rewards := g.cfg.Rewards

	// Without a pipe the gap spans the playfield.
	gapTop, gapBottom := 0.0, g.phys.BaseY
	if active >= 0 {
		pipe := g.pipeMap.Get(g.pipes[active])
		gapTop, gapBottom = pipe.Height, pipe.Bottom
	}

	for _, e := range g.agents {
		bird, agent := g.agentMap.Get(e)
		systems.AdvanceBird(bird, g.phys)
		agent.Fitness.Add(rewards.Alive)

		g.inputs[0] = bird.Y
		g.inputs[1] = math.Abs(bird.Y - gapTop)
		g.inputs[2] = math.Abs(bird.Y - gapBottom)
		copy(agent.Inputs[:], g.inputs)

		out, err := agent.Brain.Activate(g.inputs)
		if err != nil {
			return fmt.Errorf("agent %d: %w", agent.Index, err)
		}
		agent.Output = out

		if out > rewards.JumpThreshold {
			systems.Jump(bird, g.phys)
		}
	}
	return nil
}

// updatePipes tests every pipe against every surviving bird. Colliding
// agents are penalised and flagged dead; the others may latch the pipe as
// passed. It reports whether any pass-event fired and which pipes have
// left the view.
func (g *Generation) updatePipes() (passed bool, expired []ecs.Entity) {
	for _, pe := range g.pipes {
		pipe := g.pipeMap.Get(pe)

		for _, e := range g.agents {
			bird, agent := g.agentMap.Get(e)
			if agent.Dead {
				continue
			}
			if systems.PipeCollides(bird, pipe, g.masks) {
				g.eliminate(agent, g.cfg.Rewards.Collision)
				continue
			}
			if systems.MarkPassed(pipe, bird.X) {
				passed = true
			}
		}

		if systems.PipeOffscreen(pipe, assets.PipeWidth) {
			expired = append(expired, pe)
		}
		systems.AdvancePipe(pipe, g.phys)
	}
	return passed, expired
}

// rewardSurvivors gives the pass bonus to every agent still alive, not only
// the ones that crossed the pipe.
func (g *Generation) rewardSurvivors() {
	for _, e := range g.agents {
		_, agent := g.agentMap.Get(e)
		agent.Fitness.Add(g.cfg.Rewards.Pass)
	}
}

// checkBounds flags birds that touched the ground or left the top.
func (g *Generation) checkBounds() {
	for _, e := range g.agents {
		bird, agent := g.agentMap.Get(e)
		if systems.OutOfBounds(bird, assets.BirdHeight, g.phys) {
			g.eliminate(agent, 0)
		}
	}
}

func (g *Generation) eliminate(agent *components.Agent, penalty float64) {
	if penalty != 0 {
		agent.Fitness.Add(penalty)
	}
	agent.Dead = true
	g.events.Crashes++
}

// animate steps the wing cycle of every bird in the world.
func (g *Generation) animate() {
	query := g.agentFilter.Query()
	for query.Next() {
		bird, _ := query.Get()
		systems.AdvanceAnimation(bird, g.phys)
	}
}
