package telemetry

import (
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"

	"github.com/pthm-cable/flapneat/neural"
)

func testGenome(id int) *genetics.Genome {
	return neural.CreateBrainGenome(id, 1, neatmath.TanhActivation, rand.New(rand.NewSource(int64(id))))
}

func TestHallOfFameOrder(t *testing.T) {
	hof := NewHallOfFame(3)

	offers := []struct {
		gen     int
		fitness float64
		want    bool
	}{
		{1, 5, true},
		{2, 9, true},
		{3, 1, true},
		{4, 0.5, false}, // full, lowest
		{5, 7, true},    // evicts 1
		{6, 9, true},    // tie goes after the earlier 9
	}
	for _, o := range offers {
		added, err := hof.Consider(o.gen, testGenome(o.gen), o.fitness, 0)
		if err != nil {
			t.Fatalf("Consider gen %d: %v", o.gen, err)
		}
		if added != o.want {
			t.Errorf("gen %d added = %v, want %v", o.gen, added, o.want)
		}
	}

	var gens []int
	for _, e := range hof.Entries() {
		gens = append(gens, e.Generation)
	}
	want := []int{2, 6, 5}
	if len(gens) != len(want) {
		t.Fatalf("entries = %v, want %v", gens, want)
	}
	for i := range want {
		if gens[i] != want[i] {
			t.Fatalf("entries = %v, want %v", gens, want)
		}
	}
	if best := hof.Best(); best.Generation != 2 || best.Genome.ID != 2 {
		t.Errorf("best = gen %d genome %d, want 2/2", best.Generation, best.Genome.ID)
	}
}

func TestHallOfFameIgnoresNil(t *testing.T) {
	hof := NewHallOfFame(2)
	if added, err := hof.Consider(1, nil, 10, 0); added || err != nil {
		t.Errorf("Consider(nil) = %v, %v", added, err)
	}
	if hof.Best() != nil {
		t.Error("hall should be empty")
	}
}

func TestMilestones(t *testing.T) {
	md := NewMilestoneDetector(2)

	steps := []struct {
		rec  GenerationRecord
		want []MilestoneType
	}{
		{GenerationRecord{Generation: 1, BestFitness: 3, Species: 3}, nil},
		{GenerationRecord{Generation: 2, BestFitness: 8, Species: 3, Score: 1}, []MilestoneType{MilestoneBestScore, MilestoneBestFitness}},
		{GenerationRecord{Generation: 3, BestFitness: 8, Species: 2}, nil},
		{GenerationRecord{Generation: 4, BestFitness: 6, Species: 1}, []MilestoneType{MilestoneStagnation, MilestoneSpeciesCollapse}},
		{GenerationRecord{Generation: 5, BestFitness: 6, Species: 1}, nil},
	}

	for _, s := range steps {
		got := md.Check(s.rec)
		if len(got) != len(s.want) {
			t.Fatalf("gen %d milestones = %v, want %v", s.rec.Generation, got, s.want)
		}
		for i := range got {
			if got[i].Type != s.want[i] || got[i].Generation != s.rec.Generation {
				t.Errorf("gen %d milestone %d = %+v, want %s", s.rec.Generation, i, got[i], s.want[i])
			}
		}
	}
}

func TestPerfCollectorWindow(t *testing.T) {
	p := NewPerfCollector(2)
	if s := p.Stats(); s.Generations != 0 || s.TicksPerSecond != 0 {
		t.Errorf("empty stats = %+v", s)
	}

	p.Record(100, time.Second)
	p.Record(300, time.Second)
	p.Record(500, time.Second) // drops the first sample

	s := p.Stats()
	if s.Generations != 2 {
		t.Errorf("generations = %d, want 2", s.Generations)
	}
	if s.TicksPerSecond != 400 {
		t.Errorf("ticks/sec = %v, want 400", s.TicksPerSecond)
	}
	if s.AvgGeneration != time.Second {
		t.Errorf("avg generation = %v, want 1s", s.AvgGeneration)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for gen := 1; gen <= 3; gen++ {
		if err := om.WriteGeneration(GenerationRecord{Generation: gen, BestFitness: float64(gen)}); err != nil {
			t.Fatalf("WriteGeneration: %v", err)
		}
	}
	if err := om.WriteMilestone(Milestone{Type: MilestoneBestScore, Generation: 2, Description: "score 1 (was 0)"}); err != nil {
		t.Fatalf("WriteMilestone: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var recs []GenerationRecord
	if err := gocsv.UnmarshalFile(f, &recs); err != nil {
		t.Fatalf("reading generations.csv: %v", err)
	}
	if len(recs) != 3 || recs[2].Generation != 3 || recs[2].BestFitness != 3 {
		t.Errorf("generations.csv = %+v", recs)
	}

	mf, err := os.Open(filepath.Join(dir, "milestones.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer mf.Close()
	var ms []Milestone
	if err := gocsv.UnmarshalFile(mf, &ms); err != nil {
		t.Fatalf("reading milestones.csv: %v", err)
	}
	if len(ms) != 1 || ms[0].Type != MilestoneBestScore {
		t.Errorf("milestones.csv = %+v", ms)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	// Every method is a no-op on nil.
	if err := om.WriteGeneration(GenerationRecord{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteHallOfFame(NewHallOfFame(1)); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestChampionSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "champion.json")
	genome := testGenome(42)

	gj, err := neural.GenomeToJSON(genome)
	if err != nil {
		t.Fatal(err)
	}
	entry := HallEntry{Generation: 17, Fitness: 123.4, Score: 12, Genome: gj}
	if err := SaveChampion(NewChampion(entry, 99), path); err != nil {
		t.Fatalf("SaveChampion: %v", err)
	}

	c, loaded, err := LoadChampion(path)
	if err != nil {
		t.Fatalf("LoadChampion: %v", err)
	}
	if c.Seed != 99 || c.Generation != 17 || c.Fitness != 123.4 || c.Score != 12 {
		t.Errorf("champion = %+v", c)
	}
	if loaded.Id != 42 || len(loaded.Nodes) != len(genome.Nodes) || len(loaded.Genes) != len(genome.Genes) {
		t.Errorf("genome = id %d, %d nodes, %d genes; want 42, %d, %d",
			loaded.Id, len(loaded.Nodes), len(loaded.Genes), len(genome.Nodes), len(genome.Genes))
	}
	for i, g := range loaded.Genes {
		if g.Link.ConnectionWeight != genome.Genes[i].Link.ConnectionWeight {
			t.Errorf("gene %d weight = %v, want %v", i, g.Link.ConnectionWeight, genome.Genes[i].Link.ConnectionWeight)
		}
	}
}

func TestLoadChampionRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "champion.json")
	data, _ := json.Marshal(Champion{Version: ChampionVersion + 1})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadChampion(path); !errors.Is(err, ErrChampionVersion) {
		t.Errorf("LoadChampion error = %v, want ErrChampionVersion", err)
	}
}

func TestReporterRecordsRun(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	r := NewReporter(om, 2, 5)

	var rep neural.Reporter = r
	for gen := 1; gen <= 3; gen++ {
		rep.EndGeneration(neural.GenerationStats{
			Generation:  gen,
			Fitness:     []float64{float64(gen), 1},
			Best:        testGenome(gen),
			BestFitness: float64(gen),
			Evaluation:  neural.Evaluation{Score: gen - 1, Ticks: 100},
			Elapsed:     10 * time.Millisecond,
		})
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}
	if r.Err() != nil {
		t.Fatalf("reporter error: %v", r.Err())
	}

	if best := r.HallOfFame().Best(); best == nil || best.Generation != 3 {
		t.Fatalf("best = %+v, want generation 3", best)
	}
	if _, err := os.Stat(filepath.Join(dir, "hall_of_fame.json")); err != nil {
		t.Errorf("hall_of_fame.json: %v", err)
	}
}
