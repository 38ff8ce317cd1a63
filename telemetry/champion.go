package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/flapneat/neural"
)

// ChampionVersion is incremented when the format changes.
const ChampionVersion = 1

// ErrChampionVersion is returned when loading a file written by an
// incompatible version.
var ErrChampionVersion = errors.New("unsupported champion version")

// Champion is the saved best genome of a run, loadable for replay.
type Champion struct {
	Version    int                `json:"version"`
	Seed       int64              `json:"seed"`
	Generation int                `json:"generation"`
	Fitness    float64            `json:"fitness"`
	Score      int                `json:"score"`
	Genome     *neural.GenomeJSON `json:"genome"`
}

// NewChampion wraps an encoded genome for saving.
func NewChampion(entry HallEntry, seed int64) *Champion {
	return &Champion{
		Version:    ChampionVersion,
		Seed:       seed,
		Generation: entry.Generation,
		Fitness:    entry.Fitness,
		Score:      entry.Score,
		Genome:     entry.Genome,
	}
}

// SaveChampion writes c to path, creating parent directories.
func SaveChampion(c *Champion, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create champion dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal champion: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write champion: %w", err)
	}
	return nil
}

// LoadChampion reads a champion file and rebuilds its genome.
func LoadChampion(path string) (*Champion, *genetics.Genome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read champion: %w", err)
	}

	var c Champion
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, nil, fmt.Errorf("unmarshal champion: %w", err)
	}
	if c.Version != ChampionVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrChampionVersion, c.Version)
	}
	if c.Genome == nil {
		return nil, nil, fmt.Errorf("champion %s: %w", path, neural.ErrNilGenome)
	}

	genome, err := c.Genome.FromJSON()
	if err != nil {
		return nil, nil, fmt.Errorf("champion %s: %w", path, err)
	}
	return &c, genome, nil
}
