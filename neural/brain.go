package neural

import (
	"fmt"
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// Brain wraps a goNEAT network for runtime evaluation.
type Brain struct {
	Genome  *genetics.Genome
	network *network.Network
	sensors []float64
}

// NewBrain builds the phenotype network of a genome.
func NewBrain(genome *genetics.Genome) (*Brain, error) {
	phenotype, err := genome.Genesis(genome.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to build network from genome %d: %w", genome.Id, err)
	}

	return &Brain{
		Genome:  genome,
		network: phenotype,
		sensors: make([]float64, BrainInputs+1),
	}, nil
}

// Activate runs the network on the sensor readings and returns the jump output.
func (b *Brain) Activate(inputs []float64) (float64, error) {
	if len(inputs) != BrainInputs {
		return 0, fmt.Errorf("expected %d inputs, got %d", BrainInputs, len(inputs))
	}
	copy(b.sensors, inputs)
	b.sensors[BrainInputs] = biasValue

	if err := b.network.LoadSensors(b.sensors); err != nil {
		return 0, fmt.Errorf("failed to load sensors: %w", err)
	}

	// Activate with depth-based steps for proper signal propagation
	depth, err := b.network.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = 5 // Fallback for simple networks
	}

	for i := 0; i < depth; i++ {
		if _, err := b.network.Activate(); err != nil {
			return 0, fmt.Errorf("activation failed: %w", err)
		}
	}

	out := b.network.ReadOutputs()[0]

	// Feed-forward evaluation: nothing carries over between ticks.
	if _, err := b.network.Flush(); err != nil {
		return 0, fmt.Errorf("flush failed: %w", err)
	}

	return out, nil
}

// NodeCount returns the number of nodes in the network.
func (b *Brain) NodeCount() int {
	return b.network.NodeCount()
}

// LinkCount returns the number of links (connections) in the network.
func (b *Brain) LinkCount() int {
	return b.network.LinkCount()
}

// CreateBrainGenome creates a genome with no hidden nodes. Each input (bias
// included) links to each output with probability connectionProb; every
// output keeps at least one link. Innovation numbers of the initial links
// depend only on the node pair, so they line up across the population.
func CreateBrainGenome(id int, connectionProb float64, outputAct neatmath.NodeActivationType, rng *rand.Rand) *genetics.Genome {
	nodes := make([]*network.NNode, 0, BrainInputs+1+BrainOutputs)

	// Input nodes (IDs 1 to BrainInputs)
	for i := 1; i <= BrainInputs; i++ {
		node := network.NewNNode(i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}
	bias := network.NewNNode(biasNodeID, network.BiasNeuron)
	bias.ActivationType = neatmath.LinearActivation
	nodes = append(nodes, bias)

	for i := 0; i < BrainOutputs; i++ {
		node := network.NewNNode(firstOutputID+i, network.OutputNeuron)
		node.ActivationType = outputAct
		nodes = append(nodes, node)
	}

	sensors := nodes[:BrainInputs+1]
	outputs := nodes[BrainInputs+1:]

	genes := make([]*genetics.Gene, 0, len(sensors)*len(outputs))
	for j, out := range outputs {
		connected := false
		for i, in := range sensors {
			if rng.Float64() >= connectionProb {
				continue
			}
			genes = append(genes, genetics.NewGeneWithTrait(
				nil,                     // trait
				rng.Float64()*4-2,       // weight
				in,                      // input node
				out,                     // output node
				false,                   // recurrent
				initialInnovation(i, j), // innovation number
				0,                       // mutation number
			))
			connected = true
		}
		if !connected {
			i := rng.Intn(len(sensors))
			genes = append(genes, genetics.NewGeneWithTrait(
				nil, rng.Float64()*2-1, sensors[i], out, false, initialInnovation(i, j), 0,
			))
		}
	}

	return genetics.NewGenome(id, nil, nodes, genes)
}

// initialInnovation numbers the link from sensor i to output j.
func initialInnovation(i, j int) int64 {
	return int64(j*(BrainInputs+1) + i + 1)
}
