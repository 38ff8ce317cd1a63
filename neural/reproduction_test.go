package neural

import (
	"testing"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"

	"github.com/pthm-cable/flapneat/config"
)

func testMutator(ids *GenomeIDGenerator) *Mutator {
	cfg := config.Default().NEAT
	return &Mutator{
		Opts:           NewOptions(cfg),
		ReplaceRate:    cfg.WeightReplaceRate,
		DeleteLinkProb: cfg.DeleteLinkProb,
		MaxWeight:      cfg.MaxConnectionWeight,
		Hidden:         neatmath.TanhActivation,
		IDs:            ids,
		Rng:            testRng(),
	}
}

func fullGenome(id int) *genetics.Genome {
	return CreateBrainGenome(id, 1.0, neatmath.TanhActivation, testRng())
}

func TestGenomeIDGenerator(t *testing.T) {
	gen := NewGenomeIDGenerator()

	id1 := gen.NextID()
	id2 := gen.NextID()
	if id1 >= id2 {
		t.Errorf("IDs should be strictly increasing: %d, %d", id1, id2)
	}

	a := gen.linkInnovation(1, 9)
	b := gen.linkInnovation(2, 9)
	if a == b {
		t.Error("different links must get different innovations")
	}
	if again := gen.linkInnovation(1, 9); again != a {
		t.Errorf("same link got innovation %d, then %d", a, again)
	}

	s1 := gen.split(3, 1, firstOutputID)
	s2 := gen.split(3, 1, firstOutputID)
	if s1 != s2 {
		t.Errorf("same split produced %+v and %+v", s1, s2)
	}
	if s1.node < firstHiddenID {
		t.Errorf("hidden node id %d collides with fixed nodes", s1.node)
	}
}

func TestAddNodeSharesInnovations(t *testing.T) {
	ids := NewGenomeIDGenerator()
	m := testMutator(ids)

	g1 := fullGenome(1)
	g2 := fullGenome(2)

	// Force both genomes to split the same gene
	for _, g := range []*genetics.Genome{g1, g2} {
		for _, gene := range g.Genes[1:] {
			gene.IsEnabled = false
		}
		if !m.addNode(g) {
			t.Fatal("addNode failed")
		}
	}

	if len(g1.Nodes) != BrainInputs+1+BrainOutputs+1 {
		t.Errorf("expected one new node, have %d nodes", len(g1.Nodes))
	}
	if g1.Genes[0].IsEnabled {
		t.Error("split gene should be disabled")
	}
	n1 := g1.Nodes[len(g1.Nodes)-1]
	n2 := g2.Nodes[len(g2.Nodes)-1]
	if n1.Id != n2.Id {
		t.Errorf("same split produced nodes %d and %d", n1.Id, n2.Id)
	}
	last1 := g1.Genes[len(g1.Genes)-1].InnovationNum
	last2 := g2.Genes[len(g2.Genes)-1].InnovationNum
	if last1 != last2 {
		t.Errorf("same split produced innovations %d and %d", last1, last2)
	}
}

func TestMutationsKeepNetworkUsable(t *testing.T) {
	ids := NewGenomeIDGenerator()
	m := testMutator(ids)
	m.Opts.MutateAddNodeProb = 0.5
	m.Opts.MutateAddLinkProb = 0.8
	m.DeleteLinkProb = 0.3
	m.Opts.MutateToggleEnableProb = 0.3

	genome := fullGenome(1)
	for i := 0; i < 200; i++ {
		if _, err := m.Mutate(genome); err != nil {
			t.Fatalf("Mutate: %v", err)
		}
		if !outputsReachable(genome) {
			t.Fatalf("mutation %d disconnected the output", i)
		}
	}

	for _, gene := range genome.Genes {
		w := gene.Link.ConnectionWeight
		if w > m.MaxWeight || w < -m.MaxWeight {
			t.Errorf("weight %v outside ±%v", w, m.MaxWeight)
		}
	}

	brain, err := NewBrain(genome)
	if err != nil {
		t.Fatalf("NewBrain: %v", err)
	}
	if _, err := brain.Activate([]float64{350, 40, 160}); err != nil {
		t.Fatalf("Activate after mutation: %v", err)
	}
	t.Logf("Mutated genome has %d nodes and %d genes", len(genome.Nodes), len(genome.Genes))
}

func TestAddLinkStaysAcyclic(t *testing.T) {
	ids := NewGenomeIDGenerator()
	m := testMutator(ids)

	genome := fullGenome(1)
	for i := 0; i < 10; i++ {
		m.addNode(genome)
	}
	for i := 0; i < 100; i++ {
		m.addLink(genome)
	}

	for _, gene := range genome.Genes {
		if gene.Link.OutNode.NeuronType == network.InputNeuron || gene.Link.OutNode.NeuronType == network.BiasNeuron {
			t.Fatalf("link into sensor %d", gene.Link.OutNode.Id)
		}
		// With the link present, a path from out back to in is a loop.
		if createsCycle(genome, gene.Link.InNode.Id, gene.Link.OutNode.Id) {
			t.Fatalf("cycle through %d -> %d", gene.Link.InNode.Id, gene.Link.OutNode.Id)
		}
	}
}

func TestCrossoverGenomes(t *testing.T) {
	ids := NewGenomeIDGenerator()
	m := testMutator(ids)

	parent1 := fullGenome(1)
	parent2 := fullGenome(2)
	m.addNode(parent1)

	child, err := CrossoverGenomes(parent1, parent2, 2.0, 1.0, 3, testRng())
	if err != nil {
		t.Fatalf("CrossoverGenomes failed: %v", err)
	}
	if child.Id != 3 {
		t.Errorf("expected child ID 3, got %d", child.Id)
	}

	// The fitter parent's structure is inherited
	if len(child.Genes) != len(parent1.Genes) || len(child.Nodes) != len(parent1.Nodes) {
		t.Errorf("child has %d genes/%d nodes, want %d/%d",
			len(child.Genes), len(child.Nodes), len(parent1.Genes), len(parent1.Nodes))
	}
	if !outputsReachable(child) {
		t.Error("child output unreachable")
	}

	// Less fit primary: the second parent's shape wins
	child, err = CrossoverGenomes(parent1, parent2, 1.0, 2.0, 4, testRng())
	if err != nil {
		t.Fatalf("CrossoverGenomes failed: %v", err)
	}
	if len(child.Genes) != len(parent2.Genes) {
		t.Errorf("child has %d genes, want %d", len(child.Genes), len(parent2.Genes))
	}

	if _, err := CrossoverGenomes(nil, parent2, 0, 0, 5, testRng()); err == nil {
		t.Error("expected error for nil parent")
	}
}

func TestCloneGenome(t *testing.T) {
	original := fullGenome(1)
	clone, err := CloneGenome(original, 2)
	if err != nil {
		t.Fatalf("CloneGenome: %v", err)
	}
	if clone.Id != 2 {
		t.Errorf("clone id = %d, want 2", clone.Id)
	}
	clone.Genes[0].Link.ConnectionWeight = 99
	if original.Genes[0].Link.ConnectionWeight == 99 {
		t.Error("clone shares genes with the original")
	}
}

func TestGenomeCompatibility(t *testing.T) {
	opts := NewOptions(config.Default().NEAT)
	g := fullGenome(1)

	if d := GenomeCompatibility(g, g, opts); d != 0 {
		t.Errorf("self distance = %v, want 0", d)
	}

	other, _ := CloneGenome(g, 2)
	other.Genes[0].Link.ConnectionWeight += 4
	want := opts.MutdiffCoeff * 4 / float64(len(g.Genes))
	if d := GenomeCompatibility(g, other, opts); d < want-1e-9 || d > want+1e-9 {
		t.Errorf("distance = %v, want %v", d, want)
	}
}
