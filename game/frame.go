package game

import (
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/flapneat/components"
	"github.com/pthm-cable/flapneat/neural"
)

// BirdView is the drawable state of one bird.
type BirdView struct {
	X, Y  float64
	Tilt  int
	Frame int
	Tint  neural.SpeciesColor
}

// PipeView is the drawable state of one pipe.
type PipeView struct {
	X      float64
	Top    float64 // y of the upper spout sprite
	Bottom float64 // y of the lower spout sprite
	Passed bool
}

// LeadView describes the lead bird for the network inspector.
type LeadView struct {
	Genome    *genetics.Genome // nil for controllers without a genome
	SpeciesID int
	Inputs    [3]float64
	Output    float64
	Fitness   float64
}

// Frame is everything a frontend needs to draw one tick.
type Frame struct {
	Generation int
	Score      int
	Ticks      int
	Alive      int
	Birds      []BirdView
	Pipes      []PipeView
	Base       components.Base
	Lead       *LeadView
	Events     Events

	lead LeadView
}

// Snapshot fills f with the current state, reusing its slices.
func (g *Generation) Snapshot(f *Frame) {
	f.Generation = g.number
	f.Score = g.score
	f.Ticks = g.ticks
	f.Alive = len(g.agents)
	f.Base = g.base
	f.Events = g.events

	f.Birds = f.Birds[:0]
	for _, e := range g.agents {
		bird, _ := g.agentMap.Get(e)
		f.Birds = append(f.Birds, BirdView{
			X:     bird.X,
			Y:     bird.Y,
			Tilt:  bird.Tilt,
			Frame: bird.Frame,
			Tint:  g.tints[e],
		})
	}

	f.Pipes = f.Pipes[:0]
	for _, e := range g.pipes {
		pipe := g.pipeMap.Get(e)
		f.Pipes = append(f.Pipes, PipeView{
			X:      pipe.X,
			Top:    pipe.Top,
			Bottom: pipe.Bottom,
			Passed: pipe.Passed,
		})
	}

	f.Lead = nil
	if len(g.agents) > 0 {
		_, agent := g.agentMap.Get(g.agents[0])
		f.lead = LeadView{
			Genome:    agent.Genome,
			SpeciesID: agent.SpeciesID,
			Inputs:    agent.Inputs,
			Output:    agent.Output,
			Fitness:   agent.Fitness.Value(),
		}
		f.Lead = &f.lead
	}
}
