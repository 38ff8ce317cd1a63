package neural

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flapneat/config"
)

// minSpeciesSize is the smallest number of offspring a surviving species gets.
const minSpeciesSize = 2

// ErrNoGenomes is returned when an evaluation is asked for an empty population.
var ErrNoGenomes = errors.New("population has no genomes")

// Candidate is one genome handed to the evaluator together with the fitness
// handle the evaluator writes to.
type Candidate struct {
	Genome    *genetics.Genome
	Fitness   *Fitness
	SpeciesID int
}

// Evaluation is what the evaluator reports back besides fitness.
type Evaluation struct {
	Halt  bool // stop evolving after this generation
	Score int  // pipes passed
	Ticks int  // ticks simulated
}

// EvalFunc runs one generation. It is called once per generation with every
// candidate's fitness reset to zero.
type EvalFunc func(ctx context.Context, generation int, candidates []Candidate) (Evaluation, error)

// GenerationStats summarises one evaluated generation for reporters.
type GenerationStats struct {
	Generation  int
	Fitness     []float64
	Best        *genetics.Genome
	BestFitness float64
	Species     SpeciesStats
	Extinct     int // species removed for stagnation
	Evaluation  Evaluation
	Elapsed     time.Duration
}

// Reporter receives a summary after each generation.
type Reporter interface {
	EndGeneration(stats GenerationStats)
}

// Result is the outcome of Population.Run.
type Result struct {
	Champion        *genetics.Genome // best genome over the run
	ChampionFitness float64
	Generations     int  // generations evaluated
	Solved          bool // fitness criterion reached the threshold
	Halted          bool // the evaluator or context stopped the run
}

// Population drives generational NEAT evolution over goNEAT genomes.
type Population struct {
	cfg     config.NEATConfig
	opts    *neat.Options
	rng     *rand.Rand
	ids     *GenomeIDGenerator
	species *SpeciesManager
	mutator *Mutator
	output  neatmath.NodeActivationType

	genomes    []*genetics.Genome
	speciesOf  []int
	fitness    []*Fitness
	generation int

	champion        *genetics.Genome
	championFitness float64

	reporters []Reporter
}

// NewPopulation creates an initial population from the NEAT config.
func NewPopulation(cfg config.NEATConfig, rng *rand.Rand) (*Population, error) {
	output, err := ActivationByName(cfg.OutputActivation)
	if err != nil {
		return nil, fmt.Errorf("output activation: %w", err)
	}
	hidden, err := ActivationByName(cfg.HiddenActivation)
	if err != nil {
		return nil, fmt.Errorf("hidden activation: %w", err)
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size %d: %w", cfg.PopulationSize, ErrNoGenomes)
	}

	opts := NewOptions(cfg)
	ids := NewGenomeIDGenerator()
	p := &Population{
		cfg:     cfg,
		opts:    opts,
		rng:     rng,
		ids:     ids,
		species: NewSpeciesManager(opts),
		mutator: &Mutator{
			Opts:           opts,
			ReplaceRate:    cfg.WeightReplaceRate,
			DeleteLinkProb: cfg.DeleteLinkProb,
			MaxWeight:      cfg.MaxConnectionWeight,
			Hidden:         hidden,
			IDs:            ids,
			Rng:            rng,
		},
		output:          output,
		championFitness: math.Inf(-1),
	}
	p.seed()
	return p, nil
}

// seed fills the population with fresh minimal genomes.
func (p *Population) seed() {
	p.genomes = make([]*genetics.Genome, p.cfg.PopulationSize)
	for i := range p.genomes {
		p.genomes[i] = CreateBrainGenome(p.ids.NextID(), p.cfg.InitialConnection, p.output, p.rng)
	}
	p.speciesOf = p.species.Speciate(p.genomes)
}

// AddReporter registers a reporter called after every generation.
func (p *Population) AddReporter(r Reporter) {
	p.reporters = append(p.reporters, r)
}

// Generation returns the index of the generation evaluated next.
func (p *Population) Generation() int {
	return p.generation
}

// Genomes returns the current genomes.
func (p *Population) Genomes() []*genetics.Genome {
	return p.genomes
}

// Species returns the species manager.
func (p *Population) Species() *SpeciesManager {
	return p.species
}

// candidates resets fitness and pairs every genome with its handle.
func (p *Population) candidates() []Candidate {
	if len(p.fitness) != len(p.genomes) {
		p.fitness = make([]*Fitness, len(p.genomes))
		for i := range p.fitness {
			p.fitness[i] = &Fitness{}
		}
	}
	cands := make([]Candidate, len(p.genomes))
	for i, g := range p.genomes {
		p.fitness[i].reset()
		cands[i] = Candidate{Genome: g, Fitness: p.fitness[i], SpeciesID: p.speciesOf[i]}
	}
	return cands
}

// Run evaluates generations until the generation budget is spent, the
// fitness criterion reaches the threshold, the evaluator halts, or ctx is
// cancelled. A zero generation budget runs until one of the others.
func (p *Population) Run(ctx context.Context, eval EvalFunc) (Result, error) {
	var res Result
	for p.cfg.Generations <= 0 || res.Generations < p.cfg.Generations {
		if ctx.Err() != nil {
			res.Halted = true
			break
		}
		if len(p.genomes) == 0 {
			return res, ErrNoGenomes
		}

		start := time.Now()
		cands := p.candidates()
		ev, err := eval(ctx, p.generation, cands)
		if err != nil {
			return res, fmt.Errorf("generation %d: %w", p.generation, err)
		}
		res.Generations++

		fit := make([]float64, len(cands))
		for i, c := range cands {
			fit[i] = c.Fitness.Value()
		}
		bestIdx := floats.MaxIdx(fit)
		if fit[bestIdx] > p.championFitness {
			p.champion = p.genomes[bestIdx]
			p.championFitness = fit[bestIdx]
		}
		res.Champion = p.champion
		res.ChampionFitness = p.championFitness

		extinct := p.species.UpdateFitness(fit, p.cfg.SpeciesElitism)

		stats := GenerationStats{
			Generation:  p.generation,
			Fitness:     fit,
			Best:        p.genomes[bestIdx],
			BestFitness: fit[bestIdx],
			Species:     p.species.GetStats(),
			Extinct:     extinct,
			Evaluation:  ev,
			Elapsed:     time.Since(start),
		}
		for _, r := range p.reporters {
			r.EndGeneration(stats)
		}

		if ev.Halt {
			res.Halted = true
			break
		}
		if p.criterion(fit) >= p.cfg.FitnessThreshold {
			res.Solved = true
			break
		}

		if err := p.reproduce(fit); err != nil {
			return res, fmt.Errorf("reproduce generation %d: %w", p.generation, err)
		}
		p.generation++
	}
	return res, nil
}

// criterion reduces the generation's fitness per the configured criterion.
func (p *Population) criterion(fit []float64) float64 {
	switch p.cfg.FitnessCriterion {
	case "mean":
		return stat.Mean(fit, nil)
	case "min":
		return floats.Min(fit)
	default:
		return floats.Max(fit)
	}
}

// reproduce replaces the population with the next generation and
// re-speciates it. A population whose species all went extinct is reseeded.
func (p *Population) reproduce(fit []float64) error {
	if len(p.species.Species) == 0 {
		p.seed()
		return nil
	}

	spawn := p.spawnAmounts()
	next := make([]*genetics.Genome, 0, p.cfg.PopulationSize)

	for i, sp := range p.species.Species {
		members := make([]int, len(sp.Members))
		copy(members, sp.Members)
		sort.SliceStable(members, func(a, b int) bool { return fit[members[a]] > fit[members[b]] })

		n := spawn[i]
		sp.OffspringCount = n

		// Elites pass through unchanged
		for e := 0; e < p.cfg.Elitism && e < len(members) && n > 0; e++ {
			next = append(next, p.genomes[members[e]])
			n--
		}
		if n == 0 {
			continue
		}

		cutoff := int(math.Ceil(p.cfg.SurvivalThreshold * float64(len(members))))
		cutoff = max(cutoff, min(minSpeciesSize, len(members)))
		parents := members[:cutoff]

		for ; n > 0; n-- {
			a := parents[p.rng.Intn(len(parents))]
			b := parents[p.rng.Intn(len(parents))]

			var child *genetics.Genome
			var err error
			if a != b && p.rng.Float64() < p.cfg.CrossoverProb {
				child, err = CrossoverGenomes(p.genomes[a], p.genomes[b], fit[a], fit[b], p.ids.NextID(), p.rng)
			} else {
				child, err = CloneGenome(p.genomes[a], p.ids.NextID())
			}
			if err != nil {
				return err
			}
			if _, err := p.mutator.Mutate(child); err != nil {
				return err
			}
			next = append(next, child)
		}
	}

	p.genomes = next
	p.speciesOf = p.species.Speciate(p.genomes)
	return nil
}

// spawnAmounts splits the population across species in proportion to their
// adjusted fitness, moving each species halfway from its current size toward
// its target. The amounts sum to the population size.
func (p *Population) spawnAmounts() []int {
	species := p.species.Species

	// Mean fitness normalised over the range across species
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, sp := range species {
		lo = min(lo, sp.AvgFitness)
		hi = max(hi, sp.AvgFitness)
	}
	span := max(1.0, hi-lo)

	adjusted := make([]float64, len(species))
	for i, sp := range species {
		adjusted[i] = (sp.AvgFitness - lo) / span
	}
	sum := floats.Sum(adjusted)

	size := float64(p.cfg.PopulationSize)
	raw := make([]float64, len(species))
	for i, sp := range species {
		target := float64(minSpeciesSize)
		if sum > 0 {
			target = max(target, adjusted[i]/sum*size)
		}
		prev := float64(len(sp.Members))
		d := (target - prev) * 0.5
		c := math.Round(d)
		s := prev
		switch {
		case c != 0:
			s += c
		case d > 0:
			s++
		case d < 0:
			s--
		}
		raw[i] = s
	}

	norm := size / floats.Sum(raw)
	spawn := make([]int, len(species))
	total := 0
	for i, s := range raw {
		spawn[i] = max(minSpeciesSize, int(math.Round(s*norm)))
		total += spawn[i]
	}

	// Absorb rounding in the largest allotments so the size stays fixed.
	for total != p.cfg.PopulationSize {
		largest := 0
		for i := range spawn {
			if spawn[i] > spawn[largest] {
				largest = i
			}
		}
		if total < p.cfg.PopulationSize {
			spawn[largest]++
			total++
			continue
		}
		if spawn[largest] <= 1 {
			break
		}
		spawn[largest]--
		total--
	}

	return spawn
}
