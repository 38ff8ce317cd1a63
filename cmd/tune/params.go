package main

import (
	"github.com/pthm-cable/flapneat/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters: the
// fitness shaping rewards and the mutation rates that interact with them.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Rewards
			{Name: "alive_reward", Path: "rewards.alive", Min: 0.02, Max: 0.5, Default: 0.1},
			{Name: "pass_reward", Path: "rewards.pass", Min: 1, Max: 20, Default: 5},
			{Name: "collision_reward", Path: "rewards.collision", Min: -5, Max: 0, Default: -1},
			{Name: "jump_threshold", Path: "rewards.jump_threshold", Min: 0.1, Max: 0.9, Default: 0.5},
			// NEAT
			{Name: "compat_threshold", Path: "neat.compatibility_threshold", Min: 1, Max: 6, Default: 3},
			{Name: "weight_mutate_power", Path: "neat.weight_mutate_power", Min: 0.1, Max: 2, Default: 0.5},
			{Name: "node_add_prob", Path: "neat.node_add_prob", Min: 0.01, Max: 0.5, Default: 0.2},
			{Name: "conn_add_prob", Path: "neat.conn_add_prob", Min: 0.05, Max: 0.8, Default: 0.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)

	cfg.Rewards.Alive = c[0]
	cfg.Rewards.Pass = c[1]
	cfg.Rewards.Collision = c[2]
	cfg.Rewards.JumpThreshold = c[3]

	cfg.NEAT.CompatThreshold = c[4]
	cfg.NEAT.WeightMutatePower = c[5]
	cfg.NEAT.AddNodeProb = c[6]
	cfg.NEAT.AddLinkProb = c[7]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Rewards.Alive,
		cfg.Rewards.Pass,
		cfg.Rewards.Collision,
		cfg.Rewards.JumpThreshold,
		cfg.NEAT.CompatThreshold,
		cfg.NEAT.WeightMutatePower,
		cfg.NEAT.AddNodeProb,
		cfg.NEAT.AddLinkProb,
	}
}
