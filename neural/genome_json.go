package neural

import (
	"fmt"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// GenomeJSON is the JSON-serializable form of a brain genome.
type GenomeJSON struct {
	ID    int        `json:"id"`
	Nodes []NodeJSON `json:"nodes"`
	Genes []GeneJSON `json:"genes"`
}

// NodeJSON is one node of a GenomeJSON.
type NodeJSON struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Activation string `json:"activation"`
}

// GeneJSON is one link gene of a GenomeJSON.
type GeneJSON struct {
	In         int     `json:"in"`
	Out        int     `json:"out"`
	Weight     float64 `json:"weight"`
	Enabled    bool    `json:"enabled"`
	Innovation int64   `json:"innovation"`
}

var neuronTypeNames = map[network.NodeNeuronType]string{
	network.InputNeuron:  "input",
	network.BiasNeuron:   "bias",
	network.OutputNeuron: "output",
	network.HiddenNeuron: "hidden",
}

// activationNames lists the activations ActivationByName accepts, by
// canonical name.
var activationNames = map[neatmath.NodeActivationType]string{
	neatmath.TanhActivation:             "tanh",
	neatmath.SigmoidSteepenedActivation: "sigmoid",
	neatmath.GaussianBipolarActivation:  "gauss",
	neatmath.SineActivation:             "sin",
	neatmath.LinearActivation:           "identity",
}

// GenomeToJSON converts a genome to its JSON form.
func GenomeToJSON(g *genetics.Genome) (*GenomeJSON, error) {
	if g == nil {
		return nil, fmt.Errorf("encode: %w", ErrNilGenome)
	}
	out := &GenomeJSON{ID: g.Id}
	for _, n := range g.Nodes {
		act, ok := activationNames[n.ActivationType]
		if !ok {
			return nil, fmt.Errorf("node %d: unsupported activation %v", n.Id, n.ActivationType)
		}
		out.Nodes = append(out.Nodes, NodeJSON{
			ID:         n.Id,
			Type:       neuronTypeNames[n.NeuronType],
			Activation: act,
		})
	}
	for _, gene := range g.Genes {
		out.Genes = append(out.Genes, GeneJSON{
			In:         gene.Link.InNode.Id,
			Out:        gene.Link.OutNode.Id,
			Weight:     gene.Link.ConnectionWeight,
			Enabled:    gene.IsEnabled,
			Innovation: gene.InnovationNum,
		})
	}
	return out, nil
}

// FromJSON rebuilds the genome.
func (gj *GenomeJSON) FromJSON() (*genetics.Genome, error) {
	nodes := make([]*network.NNode, 0, len(gj.Nodes))
	byID := make(map[int]*network.NNode, len(gj.Nodes))
	for _, nj := range gj.Nodes {
		var typ network.NodeNeuronType
		found := false
		for t, name := range neuronTypeNames {
			if name == nj.Type {
				typ, found = t, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("node %d: unknown type %q", nj.ID, nj.Type)
		}
		act, err := ActivationByName(nj.Activation)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", nj.ID, err)
		}
		if _, dup := byID[nj.ID]; dup {
			return nil, fmt.Errorf("duplicate node %d", nj.ID)
		}
		node := network.NewNNode(nj.ID, typ)
		node.ActivationType = act
		byID[nj.ID] = node
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Id < nodes[j].Id })

	genes := make([]*genetics.Gene, 0, len(gj.Genes))
	for _, gn := range gj.Genes {
		in, out := byID[gn.In], byID[gn.Out]
		if in == nil || out == nil {
			return nil, fmt.Errorf("gene %d references missing node %d -> %d", gn.Innovation, gn.In, gn.Out)
		}
		gene := genetics.NewGeneWithTrait(nil, gn.Weight, in, out, false, gn.Innovation, 0)
		gene.IsEnabled = gn.Enabled
		genes = append(genes, gene)
	}

	return genetics.NewGenome(gj.ID, nil, nodes, genes), nil
}
