package telemetry

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/flapneat/neural"
)

// HallEntry is one genome that led its generation.
type HallEntry struct {
	Generation int                `json:"generation"`
	Fitness    float64            `json:"fitness"`
	Score      int                `json:"score"`
	Genome     *neural.GenomeJSON `json:"genome"`
}

// HallOfFame keeps the fittest generation leaders of a run, best first.
// Genomes are stored in encoded form so later mutation of the population
// cannot change them.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall holding at most maxSize entries.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{entries: make([]HallEntry, 0, maxSize), maxSize: maxSize}
}

// Consider offers a generation's best genome. It reports whether the genome
// entered the hall.
func (hof *HallOfFame) Consider(generation int, genome *genetics.Genome, fitness float64, score int) (bool, error) {
	if genome == nil {
		return false, nil
	}

	// Find insertion point (sorted descending by fitness; ties keep the
	// earlier generation first)
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Fitness < fitness
	})
	if idx >= hof.maxSize {
		return false, nil
	}

	gj, err := neural.GenomeToJSON(genome)
	if err != nil {
		return false, fmt.Errorf("hall of fame: %w", err)
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = HallEntry{Generation: generation, Fitness: fitness, Score: score, Genome: gj}
	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true, nil
}

// Best returns the top entry, or nil while the hall is empty.
func (hof *HallOfFame) Best() *HallEntry {
	if len(hof.entries) == 0 {
		return nil
	}
	return &hof.entries[0]
}

// Entries returns the hall, best first.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.entries
}

// MarshalJSON serializes the hall.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		MaxSize int         `json:"max_size"`
		Entries []HallEntry `json:"entries"`
	}{hof.maxSize, hof.entries}, "", "  ")
}
