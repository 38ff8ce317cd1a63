package neural

import (
	"encoding/json"
	"testing"

	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
)

func TestGenomeJSONPreservesBehaviour(t *testing.T) {
	ids := NewGenomeIDGenerator()
	m := testMutator(ids)
	genome := fullGenome(9)
	for i := 0; i < 30; i++ {
		if _, err := m.Mutate(genome); err != nil {
			t.Fatal(err)
		}
	}

	gj, err := GenomeToJSON(genome)
	if err != nil {
		t.Fatalf("GenomeToJSON: %v", err)
	}
	data, err := json.Marshal(gj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded GenomeJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	restored, err := decoded.FromJSON()
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	a, err := NewBrain(genome)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBrain(restored)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range [][]float64{{350, 10, 190}, {120, 300, 100}, {0, 0, 0}} {
		oa, _ := a.Activate(in)
		ob, _ := b.Activate(in)
		if oa != ob {
			t.Errorf("inputs %v: restored output %v, want %v", in, ob, oa)
		}
	}
}

func TestGenomeFromJSONRejectsDanglingGene(t *testing.T) {
	gj := GenomeJSON{
		ID:    1,
		Nodes: []NodeJSON{{ID: 1, Type: "input", Activation: "identity"}},
		Genes: []GeneJSON{{In: 1, Out: 5, Weight: 1, Enabled: true, Innovation: 1}},
	}
	if _, err := gj.FromJSON(); err == nil {
		t.Error("expected error for gene referencing a missing node")
	}
}

func TestGenomeJSONGaussNode(t *testing.T) {
	gj := GenomeJSON{
		ID: 3,
		Nodes: []NodeJSON{
			{ID: 1, Type: "input", Activation: "identity"},
			{ID: 2, Type: "bias", Activation: "identity"},
			{ID: 3, Type: "output", Activation: "gauss"},
		},
		Genes: []GeneJSON{
			{In: 1, Out: 3, Weight: 0.5, Enabled: true, Innovation: 1},
			{In: 2, Out: 3, Weight: -0.25, Enabled: true, Innovation: 2},
		},
	}

	genome, err := gj.FromJSON()
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got := genome.Nodes[2].ActivationType; got != neatmath.GaussianBipolarActivation {
		t.Fatalf("output activation = %v, want gaussian bipolar", got)
	}

	back, err := GenomeToJSON(genome)
	if err != nil {
		t.Fatalf("GenomeToJSON: %v", err)
	}
	if got := back.Nodes[2].Activation; got != "gauss" {
		t.Errorf("encoded activation = %q, want gauss", got)
	}
}
