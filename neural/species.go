package neural

import (
	"math"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// SpeciesColor represents an RGB color for species visualization.
type SpeciesColor struct {
	R, G, B uint8
}

// Species represents a group of genetically similar genomes.
type Species struct {
	ID             int
	Representative *genetics.Genome // Used for compatibility comparisons
	Members        []int            // Indices into the population
	BestFitness    float64          // Best max fitness over the species' lifetime
	MaxFitness     float64          // This generation
	AvgFitness     float64          // This generation
	Age            int              // Generations since species was created
	Staleness      int              // Generations without improving BestFitness
	Color          SpeciesColor
	OffspringCount int // Offspring allotted for the next generation
}

// SpeciesManager manages speciation for the population.
type SpeciesManager struct {
	Species       []*Species
	opts          *neat.Options
	nextSpeciesID int
	generation    int
	speciesColors []SpeciesColor // Pre-generated distinct colors
}

// NewSpeciesManager creates a new species manager.
func NewSpeciesManager(opts *neat.Options) *SpeciesManager {
	return &SpeciesManager{
		Species:       make([]*Species, 0),
		opts:          opts,
		nextSpeciesID: 1,
		speciesColors: generateDistinctColors(64),
	}
}

// generateDistinctColors creates visually distinct colors using golden angle.
func generateDistinctColors(count int) []SpeciesColor {
	colors := make([]SpeciesColor, count)
	goldenAngle := 137.508 // Golden angle in degrees

	for i := 0; i < count; i++ {
		hue := math.Mod(float64(i)*goldenAngle, 360.0)
		r, g, b := hsvToRGB(hue, 0.7, 0.9)
		colors[i] = SpeciesColor{R: r, G: g, B: b}
	}
	return colors
}

// hsvToRGB converts HSV to RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

// AssignSpecies finds or creates a species for the given genome.
// Returns the species ID.
func (sm *SpeciesManager) AssignSpecies(genome *genetics.Genome) int {
	if genome == nil {
		return 0
	}

	for _, sp := range sm.Species {
		if sp.Representative == nil {
			continue
		}
		if GenomeCompatibility(genome, sp.Representative, sm.opts) < sm.opts.CompatThreshold {
			return sp.ID
		}
	}

	// No compatible species - create a new one
	colorIdx := sm.nextSpeciesID % len(sm.speciesColors)
	newSpecies := &Species{
		ID:             sm.nextSpeciesID,
		Representative: genome,
		Members:        make([]int, 0),
		Color:          sm.speciesColors[colorIdx],
	}
	sm.nextSpeciesID++
	sm.Species = append(sm.Species, newSpecies)

	return newSpecies.ID
}

// GetSpecies returns the species with the given ID, or nil.
func (sm *SpeciesManager) GetSpecies(speciesID int) *Species {
	for _, sp := range sm.Species {
		if sp.ID == speciesID {
			return sp
		}
	}
	return nil
}

// GetSpeciesColor returns the color for a species ID.
// Returns a default gray if species not found.
func (sm *SpeciesManager) GetSpeciesColor(speciesID int) SpeciesColor {
	if sp := sm.GetSpecies(speciesID); sp != nil {
		return sp.Color
	}
	return SpeciesColor{R: 128, G: 128, B: 128}
}

// AddMember adds a population index to a species.
func (sm *SpeciesManager) AddMember(speciesID int, member int) {
	if sp := sm.GetSpecies(speciesID); sp != nil {
		sp.Members = append(sp.Members, member)
	}
}

// Speciate partitions genomes into species. Existing species keep their
// identity; each gets the member closest to its old representative as its
// new representative. Species left without members are dropped.
// It returns the species ID of every genome.
func (sm *SpeciesManager) Speciate(genomes []*genetics.Genome) []int {
	for _, sp := range sm.Species {
		sp.Members = sp.Members[:0]
	}

	ids := make([]int, len(genomes))
	for i, genome := range genomes {
		ids[i] = sm.AssignSpecies(genome)
		sm.AddMember(ids[i], i)
	}

	active := sm.Species[:0]
	for _, sp := range sm.Species {
		if len(sp.Members) == 0 {
			continue
		}
		best, bestDist := sp.Members[0], math.MaxFloat64
		for _, m := range sp.Members {
			if d := GenomeCompatibility(genomes[m], sp.Representative, sm.opts); d < bestDist {
				best, bestDist = m, d
			}
		}
		sp.Representative = genomes[best]
		active = append(active, sp)
	}
	sm.Species = active

	return ids
}

// UpdateFitness records this generation's member fitness per species and
// advances staleness. Species stale for DropOffAge generations are removed,
// except the protect best species by lifetime fitness. It returns the number
// of species removed.
func (sm *SpeciesManager) UpdateFitness(fitness []float64, protect int) int {
	for _, sp := range sm.Species {
		sp.MaxFitness = math.Inf(-1)
		total := 0.0
		for _, m := range sp.Members {
			total += fitness[m]
			sp.MaxFitness = max(sp.MaxFitness, fitness[m])
		}
		sp.AvgFitness = total / float64(len(sp.Members))

		if sp.Age == 0 || sp.MaxFitness > sp.BestFitness {
			sp.BestFitness = sp.MaxFitness
			sp.Staleness = 0
		} else {
			sp.Staleness++
		}
		sp.Age++
	}

	// Rank by lifetime best so the strongest species survive stagnation
	ranked := make([]*Species, len(sm.Species))
	copy(ranked, sm.Species)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BestFitness > ranked[j].BestFitness
	})
	protected := make(map[int]bool, protect)
	for i := 0; i < protect && i < len(ranked); i++ {
		protected[ranked[i].ID] = true
	}

	active := make([]*Species, 0, len(sm.Species))
	for _, sp := range sm.Species {
		if sp.Staleness >= sm.opts.DropOffAge && !protected[sp.ID] {
			continue
		}
		active = append(active, sp)
	}
	removed := len(sm.Species) - len(active)
	sm.Species = active
	sm.generation++

	return removed
}

// SpeciesStats contains summary statistics about all species.
type SpeciesStats struct {
	Count            int
	TotalMembers     int
	LargestSize      int
	SmallestSize     int
	AverageStaleness float64
	Generation       int
	BestFitness      float64
}

// SpeciesInfo contains display information about a single species.
type SpeciesInfo struct {
	ID        int
	Size      int
	BestFit   float64
	AvgFit    float64
	Age       int
	Staleness int
	Color     SpeciesColor
}

// GetStats returns summary statistics about species distribution.
func (sm *SpeciesManager) GetStats() SpeciesStats {
	if len(sm.Species) == 0 {
		return SpeciesStats{Generation: sm.generation}
	}

	stats := SpeciesStats{
		Count:        len(sm.Species),
		SmallestSize: math.MaxInt,
		Generation:   sm.generation,
		BestFitness:  math.Inf(-1),
	}

	totalStaleness := 0
	for _, sp := range sm.Species {
		size := len(sp.Members)
		stats.TotalMembers += size
		stats.BestFitness = max(stats.BestFitness, sp.BestFitness)
		stats.LargestSize = max(stats.LargestSize, size)
		if size > 0 {
			stats.SmallestSize = min(stats.SmallestSize, size)
		}
		totalStaleness += sp.Staleness
	}

	stats.AverageStaleness = float64(totalStaleness) / float64(stats.Count)
	if stats.SmallestSize == math.MaxInt {
		stats.SmallestSize = 0
	}

	return stats
}

// GetTopSpecies returns info about the top N species by size.
func (sm *SpeciesManager) GetTopSpecies(n int) []SpeciesInfo {
	if len(sm.Species) == 0 {
		return nil
	}

	sorted := make([]*Species, len(sm.Species))
	copy(sorted, sm.Species)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Members) > len(sorted[j].Members)
	})

	n = min(n, len(sorted))
	result := make([]SpeciesInfo, n)
	for i := 0; i < n; i++ {
		sp := sorted[i]
		result[i] = SpeciesInfo{
			ID:        sp.ID,
			Size:      len(sp.Members),
			BestFit:   sp.BestFitness,
			AvgFit:    sp.AvgFitness,
			Age:       sp.Age,
			Staleness: sp.Staleness,
			Color:     sp.Color,
		}
	}

	return result
}
