package telemetry

import (
	"fmt"
	"log/slog"
)

// MilestoneType identifies the kind of milestone.
type MilestoneType string

const (
	MilestoneBestScore       MilestoneType = "best_score"
	MilestoneBestFitness     MilestoneType = "best_fitness"
	MilestoneStagnation      MilestoneType = "stagnation"
	MilestoneSpeciesCollapse MilestoneType = "species_collapse"
)

// Milestone marks a notable generation in a run.
type Milestone struct {
	Type        MilestoneType `csv:"type"`
	Generation  int           `csv:"generation"`
	Description string        `csv:"description"`
}

// LogMilestone logs the milestone using slog.
func (m Milestone) LogMilestone() {
	slog.Info("milestone",
		"type", string(m.Type),
		"gen", m.Generation,
		"description", m.Description,
	)
}

// MilestoneDetector watches generation records for records broken and for
// runs going flat.
type MilestoneDetector struct {
	stagnationWindow int

	bestScore    int
	bestFitness  float64
	sinceImprove int
	prevSpecies  int
	seen         bool
}

// NewMilestoneDetector creates a detector that reports stagnation after
// window generations without a fitness record.
func NewMilestoneDetector(window int) *MilestoneDetector {
	if window < 2 {
		window = 2
	}
	return &MilestoneDetector{stagnationWindow: window}
}

// Check analyzes the latest record and returns any triggered milestones.
func (md *MilestoneDetector) Check(rec GenerationRecord) []Milestone {
	var out []Milestone
	first := !md.seen
	md.seen = true

	// Scores only count once a pipe has been passed.
	if rec.Score > md.bestScore {
		out = append(out, Milestone{
			Type:        MilestoneBestScore,
			Generation:  rec.Generation,
			Description: fmt.Sprintf("score %d (was %d)", rec.Score, md.bestScore),
		})
		md.bestScore = rec.Score
	}

	if first || rec.BestFitness > md.bestFitness {
		if !first {
			out = append(out, Milestone{
				Type:        MilestoneBestFitness,
				Generation:  rec.Generation,
				Description: fmt.Sprintf("fitness %.2f (was %.2f)", rec.BestFitness, md.bestFitness),
			})
		}
		md.bestFitness = rec.BestFitness
		md.sinceImprove = 0
	} else {
		md.sinceImprove++
		if md.sinceImprove == md.stagnationWindow {
			out = append(out, Milestone{
				Type:        MilestoneStagnation,
				Generation:  rec.Generation,
				Description: fmt.Sprintf("no fitness record for %d generations", md.sinceImprove),
			})
		}
	}

	if md.prevSpecies > 1 && rec.Species == 1 {
		out = append(out, Milestone{
			Type:        MilestoneSpeciesCollapse,
			Generation:  rec.Generation,
			Description: fmt.Sprintf("%d species collapsed into one", md.prevSpecies),
		})
	}
	md.prevSpecies = rec.Species

	return out
}
