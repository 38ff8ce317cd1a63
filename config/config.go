// Package config provides configuration loading and access for the harness.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid config")

// Config holds all harness configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Rewards   RewardsConfig   `yaml:"rewards"`
	Run       RunConfig       `yaml:"run"`
	NEAT      NEATConfig      `yaml:"neat"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Audio     AudioConfig     `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds the per-tick kinematics of birds, pipes and ground.
// Units are view pixels and ticks.
type PhysicsConfig struct {
	BirdStartX     float64 `yaml:"bird_start_x"`
	BirdStartY     float64 `yaml:"bird_start_y"`
	JumpVelocity   float64 `yaml:"jump_velocity"`   // negative is up
	Gravity        float64 `yaml:"gravity"`         // d = v*t + gravity*t^2
	MaxDrop        float64 `yaml:"max_drop"`        // displacement clamp per tick
	RiseBias       float64 `yaml:"rise_bias"`       // extra lift added while rising
	MaxTilt        int     `yaml:"max_tilt"`        // nose-up degrees
	MinTilt        int     `yaml:"min_tilt"`        // nose-down floor
	TiltStep       int     `yaml:"tilt_step"`       // degrees per tick while diving
	TiltMargin     float64 `yaml:"tilt_margin"`     // stay nose-up until this far below jump origin
	AnimationTicks int     `yaml:"animation_ticks"` // ticks per wing frame
	DiveTilt       int     `yaml:"dive_tilt"`       // wings freeze at or below this tilt

	PipeGap      float64 `yaml:"pipe_gap"`
	PipeVelocity float64 `yaml:"pipe_velocity"`
	FirstPipeX   float64 `yaml:"first_pipe_x"`
	PipeSpawnX   float64 `yaml:"pipe_spawn_x"`
	GapMin       int     `yaml:"gap_min"` // inclusive
	GapMax       int     `yaml:"gap_max"` // exclusive

	BaseY        float64 `yaml:"base_y"`
	BaseVelocity float64 `yaml:"base_velocity"`
}

// RewardsConfig holds the fitness shaping constants written into genomes.
type RewardsConfig struct {
	Alive         float64 `yaml:"alive"`
	Pass          float64 `yaml:"pass"`
	Collision     float64 `yaml:"collision"`
	JumpThreshold float64 `yaml:"jump_threshold"`
}

// RunConfig holds per-generation stop conditions. Zero disables a limit.
type RunConfig struct {
	MaxScore int `yaml:"max_score"`
	MaxTicks int `yaml:"max_ticks"`
}

// NEATConfig holds the evolutionary engine parameters.
type NEATConfig struct {
	PopulationSize      int     `yaml:"population_size"`
	Generations         int     `yaml:"generations"`
	FitnessThreshold    float64 `yaml:"fitness_threshold"`
	FitnessCriterion    string  `yaml:"fitness_criterion"` // max, mean or min
	Elitism             int     `yaml:"elitism"`
	SpeciesElitism      int     `yaml:"species_elitism"`
	SurvivalThreshold   float64 `yaml:"survival_threshold"`
	MaxStagnation       int     `yaml:"max_stagnation"`
	CompatThreshold     float64 `yaml:"compatibility_threshold"`
	DisjointCoeff       float64 `yaml:"disjoint_coefficient"`
	ExcessCoeff         float64 `yaml:"excess_coefficient"`
	WeightCoeff         float64 `yaml:"weight_coefficient"`
	WeightMutateRate    float64 `yaml:"weight_mutate_rate"`
	WeightMutatePower   float64 `yaml:"weight_mutate_power"`
	WeightReplaceRate   float64 `yaml:"weight_replace_rate"`
	AddNodeProb         float64 `yaml:"node_add_prob"`
	AddLinkProb         float64 `yaml:"conn_add_prob"`
	DeleteLinkProb      float64 `yaml:"conn_delete_prob"`
	ToggleEnableProb    float64 `yaml:"toggle_enable_prob"`
	CrossoverProb       float64 `yaml:"crossover_prob"`
	InitialConnection   float64 `yaml:"initial_connection"` // probability per input->output link
	OutputActivation    string  `yaml:"output_activation"`
	HiddenActivation    string  `yaml:"hidden_activation"`
	MaxConnectionWeight float64 `yaml:"max_connection_weight"`
}

// TelemetryConfig holds run output parameters.
type TelemetryConfig struct {
	OutputDir    string `yaml:"output_dir"`
	ChampionFile string `yaml:"champion_file"`
}

// AudioConfig holds audio cue settings.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32  float32 // Screen.Width as float32
	ScreenH32  float32 // Screen.Height as float32
	TickBudget float64 // seconds per tick at TargetFPS (0 = unthrottled)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. Panics if they fail to parse,
// which only happens when the binary was built with a broken defaults.yaml.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the ranges the simulation relies on.
func (c *Config) Validate() error {
	p := c.Physics
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalid, c.Screen.Width, c.Screen.Height)
	case p.GapMin >= p.GapMax:
		return fmt.Errorf("%w: gap range [%d,%d) is empty", ErrInvalid, p.GapMin, p.GapMax)
	case p.MinTilt > p.MaxTilt:
		return fmt.Errorf("%w: min_tilt %d above max_tilt %d", ErrInvalid, p.MinTilt, p.MaxTilt)
	case p.AnimationTicks <= 0:
		return fmt.Errorf("%w: animation_ticks must be positive", ErrInvalid)
	case c.NEAT.PopulationSize <= 0:
		return fmt.Errorf("%w: population_size must be positive", ErrInvalid)
	case c.NEAT.SurvivalThreshold <= 0 || c.NEAT.SurvivalThreshold > 1:
		return fmt.Errorf("%w: survival_threshold %v outside (0,1]", ErrInvalid, c.NEAT.SurvivalThreshold)
	}
	switch c.NEAT.FitnessCriterion {
	case "max", "mean", "min":
	default:
		return fmt.Errorf("%w: fitness_criterion %q", ErrInvalid, c.NEAT.FitnessCriterion)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	if c.Screen.TargetFPS > 0 {
		c.Derived.TickBudget = 1.0 / float64(c.Screen.TargetFPS)
	} else {
		c.Derived.TickBudget = 0
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
