package neural

import (
	"fmt"

	"github.com/yaricom/goNEAT/v4/neat"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"

	"github.com/pthm-cable/flapneat/config"
)

// BrainInputs is the number of sensory inputs to the brain network:
// bird y, distance to the gap's top edge, distance to the gap's bottom edge.
const BrainInputs = 3

// BrainOutputs is the number of outputs from the brain network (jump).
const BrainOutputs = 1

// Node ids of a fresh genome. Inputs are 1..BrainInputs, then the bias node,
// then the outputs. Hidden nodes are numbered after firstHiddenID.
const (
	biasNodeID    = BrainInputs + 1
	firstOutputID = BrainInputs + 2
	firstHiddenID = firstOutputID + BrainOutputs
)

// biasValue is fed to the bias node on every activation.
const biasValue = 1.0

// InputLabels names the sensors, bias included, for display.
var InputLabels = [BrainInputs + 1]string{"Y", "Top", "Bottom", "Bias"}

// OutputLabels names the outputs for display.
var OutputLabels = [BrainOutputs]string{"Jump"}

// NewOptions maps the harness NEAT section onto goNEAT options. Parameters
// goNEAT has no field for (weight replace rate, link deletion, elitism) are
// read from the config directly by the population.
func NewOptions(cfg config.NEATConfig) *neat.Options {
	return &neat.Options{
		WeightMutPower:         cfg.WeightMutatePower,
		MutateLinkWeightsProb:  cfg.WeightMutateRate,
		MutateAddNodeProb:      cfg.AddNodeProb,
		MutateAddLinkProb:      cfg.AddLinkProb,
		MutateToggleEnableProb: cfg.ToggleEnableProb,
		MutateOnlyProb:         1 - cfg.CrossoverProb,
		MateMultipointProb:     1.0,

		CompatThreshold: cfg.CompatThreshold,
		DisjointCoeff:   cfg.DisjointCoeff,
		ExcessCoeff:     cfg.ExcessCoeff,
		MutdiffCoeff:    cfg.WeightCoeff,

		DropOffAge:     cfg.MaxStagnation,
		SurvivalThresh: cfg.SurvivalThreshold,
		PopSize:        cfg.PopulationSize,
	}
}

// ActivationByName resolves a configured activation function.
func ActivationByName(name string) (neatmath.NodeActivationType, error) {
	switch name {
	case "tanh":
		return neatmath.TanhActivation, nil
	case "sigmoid":
		return neatmath.SigmoidSteepenedActivation, nil
	case "gauss", "gaussian":
		return neatmath.GaussianBipolarActivation, nil
	case "sin", "sine":
		return neatmath.SineActivation, nil
	case "identity", "linear":
		return neatmath.LinearActivation, nil
	}
	return 0, fmt.Errorf("unknown activation %q", name)
}
