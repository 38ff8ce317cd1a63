package neural

import (
	"math/rand"
	"testing"

	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func TestCreateBrainGenome(t *testing.T) {
	genome := CreateBrainGenome(1, 1.0, neatmath.TanhActivation, testRng())

	if genome.Id != 1 {
		t.Errorf("expected genome ID 1, got %d", genome.Id)
	}

	// Inputs, bias and outputs
	expectedNodes := BrainInputs + 1 + BrainOutputs
	if len(genome.Nodes) != expectedNodes {
		t.Errorf("expected %d nodes, got %d", expectedNodes, len(genome.Nodes))
	}

	// Fully connected at probability 1
	expectedGenes := (BrainInputs + 1) * BrainOutputs
	if len(genome.Genes) != expectedGenes {
		t.Errorf("expected %d genes, got %d", expectedGenes, len(genome.Genes))
	}

	for i, gene := range genome.Genes {
		if gene.InnovationNum != int64(i+1) {
			t.Errorf("gene %d: innovation %d, want %d", i, gene.InnovationNum, i+1)
		}
		if gene.Link.OutNode.NeuronType != network.OutputNeuron {
			t.Errorf("gene %d does not end at an output", i)
		}
	}

	t.Logf("Created genome with %d nodes and %d genes", len(genome.Nodes), len(genome.Genes))
}

func TestCreateBrainGenomeKeepsOutputConnected(t *testing.T) {
	rng := testRng()
	for i := 0; i < 20; i++ {
		genome := CreateBrainGenome(i+1, 0, neatmath.TanhActivation, rng)
		if len(genome.Genes) != BrainOutputs {
			t.Fatalf("expected %d fallback genes, got %d", BrainOutputs, len(genome.Genes))
		}
		if !outputsReachable(genome) {
			t.Fatal("output not reachable from any sensor")
		}
	}
}

// setWeights assigns the weight of the link from each sensor, bias last.
func setWeights(t *testing.T, brain *Brain, weights [BrainInputs + 1]float64) *Brain {
	t.Helper()
	for _, gene := range brain.Genome.Genes {
		gene.Link.ConnectionWeight = weights[gene.Link.InNode.Id-1]
	}
	rebuilt, err := NewBrain(brain.Genome)
	if err != nil {
		t.Fatalf("NewBrain: %v", err)
	}
	return rebuilt
}

func TestBrainActivate(t *testing.T) {
	genome := CreateBrainGenome(1, 1.0, neatmath.TanhActivation, testRng())
	brain, err := NewBrain(genome)
	if err != nil {
		t.Fatalf("NewBrain failed: %v", err)
	}

	tests := []struct {
		name    string
		weights [BrainInputs + 1]float64
		inputs  []float64
		check   func(float64) bool
	}{
		{"all zero weights", [4]float64{0, 0, 0, 0}, []float64{350, 100, 100}, func(o float64) bool { return o == 0 }},
		{"bias drives output up", [4]float64{0, 0, 0, 2}, []float64{0, 0, 0}, func(o float64) bool { return o > 0.5 }},
		{"bias drives output down", [4]float64{0, 0, 0, -2}, []float64{0, 0, 0}, func(o float64) bool { return o < -0.5 }},
		{"bottom distance positive", [4]float64{0, 0, 0.01, 0}, []float64{300, 50, 150}, func(o float64) bool { return o > 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setWeights(t, brain, tt.weights)
			out, err := b.Activate(tt.inputs)
			if err != nil {
				t.Fatalf("Activate: %v", err)
			}
			if !tt.check(out) {
				t.Errorf("unexpected output %v", out)
			}
			// No state carries over between activations
			again, err := b.Activate(tt.inputs)
			if err != nil {
				t.Fatalf("Activate: %v", err)
			}
			if again != out {
				t.Errorf("second activation %v differs from first %v", again, out)
			}
		})
	}
}

func TestBrainActivateRejectsWrongInputCount(t *testing.T) {
	brain, err := NewBrain(CreateBrainGenome(1, 1.0, neatmath.TanhActivation, testRng()))
	if err != nil {
		t.Fatalf("NewBrain failed: %v", err)
	}
	if _, err := brain.Activate([]float64{1, 2}); err == nil {
		t.Error("expected error for short input")
	}
}

func TestActivationByName(t *testing.T) {
	tests := []struct {
		name string
		want neatmath.NodeActivationType
	}{
		{"tanh", neatmath.TanhActivation},
		{"sigmoid", neatmath.SigmoidSteepenedActivation},
		{"gauss", neatmath.GaussianBipolarActivation},
		{"gaussian", neatmath.GaussianBipolarActivation},
		{"sin", neatmath.SineActivation},
		{"identity", neatmath.LinearActivation},
	}
	for _, tt := range tests {
		got, err := ActivationByName(tt.name)
		if err != nil {
			t.Errorf("ActivationByName(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ActivationByName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if _, err := ActivationByName("softmax"); err == nil {
		t.Error("expected error for unknown activation")
	}

	// Every encodable activation must decode to itself.
	for act, name := range activationNames {
		if got, err := ActivationByName(name); err != nil || got != act {
			t.Errorf("%q decodes to %v (%v), want %v", name, got, err, act)
		}
	}
}
