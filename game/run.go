package game

import (
	"context"
)

// Input is the one event a frontend reports back per tick. Birds are
// controlled by their brains only, so closing is all there is.
type Input int

const (
	InputNone Input = iota
	InputQuit
)

// Frontend presents a tick and reports input. Implementations pace the
// loop themselves; a frontend that never blocks runs unthrottled.
type Frontend interface {
	Present(f *Frame) Input
}

// Result summarises a finished generation.
type Result struct {
	Outcome Outcome
	Score   int
	Ticks   int
}

// Run steps gen until it reaches a terminal outcome. The context is checked
// once per tick; cancellation and a quit input both end the run with
// OutcomeQuit. fe may be nil.
func Run(ctx context.Context, gen *Generation, fe Frontend) (Result, error) {
	var frame Frame
	for {
		if ctx.Err() != nil {
			return gen.result(OutcomeQuit), nil
		}

		outcome, err := gen.Step()
		if err != nil {
			return gen.result(outcome), err
		}

		if fe != nil {
			gen.Snapshot(&frame)
			if fe.Present(&frame) == InputQuit {
				outcome = OutcomeQuit
			}
		}

		if outcome != OutcomeRunning {
			return gen.result(outcome), nil
		}
	}
}

func (g *Generation) result(o Outcome) Result {
	return Result{Outcome: o, Score: g.score, Ticks: g.ticks}
}
