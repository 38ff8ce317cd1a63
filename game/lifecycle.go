package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flapneat/assets"
	"github.com/pthm-cable/flapneat/components"
	"github.com/pthm-cable/flapneat/neural"
	"github.com/pthm-cable/flapneat/systems"
)

// AgentsFromCandidates compiles each candidate genome into a brain. colors
// maps a species ID to its tint; nil leaves birds untinted.
func AgentsFromCandidates(cands []neural.Candidate, colors func(speciesID int) neural.SpeciesColor) ([]AgentSpec, error) {
	specs := make([]AgentSpec, len(cands))
	for i, c := range cands {
		brain, err := neural.NewBrain(c.Genome)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		tint := neural.SpeciesColor{R: 255, G: 255, B: 255}
		if colors != nil {
			tint = colors(c.SpeciesID)
		}
		specs[i] = AgentSpec{
			Brain:     brain,
			Fitness:   c.Fitness,
			Candidate: c,
			Tint:      tint,
		}
	}
	return specs, nil
}

// spawnAgents creates one bird entity per spec, in order.
func (g *Generation) spawnAgents(specs []AgentSpec) {
	g.agents = make([]ecs.Entity, 0, len(specs))
	for i, spec := range specs {
		fit := spec.Fitness
		if fit == nil {
			fit = &neural.Fitness{}
		}
		bird := systems.NewBird(g.phys)
		agent := components.Agent{
			Brain:     spec.Brain,
			Fitness:   fit,
			Genome:    spec.Candidate.Genome,
			SpeciesID: spec.Candidate.SpeciesID,
			Index:     i,
		}
		entity := g.agentMap.NewEntity(&bird, &agent)
		g.agents = append(g.agents, entity)
		g.tints[entity] = spec.Tint
	}
}

// spawnPipe appends a pipe with a fresh random gap at x.
func (g *Generation) spawnPipe(x float64) {
	pipe := systems.NewPipe(x, g.rng, assets.PipeHeight, g.phys)
	g.pipes = append(g.pipes, g.pipeMap.NewEntity(&pipe))
}

// cleanupDead removes agents flagged dead. The scan completes before any
// entity is removed, and the ordered handle slice is compacted in the same
// pass so survivors keep their relative order.
func (g *Generation) cleanupDead() {
	var toRemove []ecs.Entity

	kept := g.agents[:0]
	for _, e := range g.agents {
		_, agent := g.agentMap.Get(e)
		if agent.Dead {
			toRemove = append(toRemove, e)
			continue
		}
		kept = append(kept, e)
	}
	g.agents = kept

	for _, e := range toRemove {
		delete(g.tints, e)
		g.world.RemoveEntity(e)
	}
}

// removePipes drops the expired pipes and keeps the rest in order.
func (g *Generation) removePipes(expired []ecs.Entity) {
	if len(expired) == 0 {
		return
	}
	gone := make(map[ecs.Entity]bool, len(expired))
	for _, e := range expired {
		gone[e] = true
	}

	kept := g.pipes[:0]
	for _, e := range g.pipes {
		if !gone[e] {
			kept = append(kept, e)
		}
	}
	g.pipes = kept

	for _, e := range expired {
		g.world.RemoveEntity(e)
	}
}
