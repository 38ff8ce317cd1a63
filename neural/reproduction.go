package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// Mutation constants
const (
	maxLinkAttempts  = 20   // Maximum attempts to find a new connection
	initialInnovNum  = 1000 // Starting innovation number to avoid conflicts
	disableInherited = 0.75 // Chance a gene disabled in either parent stays disabled
)

// ErrNilGenome is returned when a reproduction operator gets a nil genome.
var ErrNilGenome = errors.New("nil genome")

type splitRecord struct {
	node     int
	inInnov  int64
	outInnov int64
}

// GenomeIDGenerator generates unique genome IDs and keeps structural
// innovations consistent: the same new link, or the same split of a link,
// gets the same numbers in every genome that makes it.
type GenomeIDGenerator struct {
	nextID       int
	nextInnovNum int64
	nextNodeID   int
	links        map[int64]int64
	splits       map[int64]splitRecord
}

// NewGenomeIDGenerator creates a new ID generator.
func NewGenomeIDGenerator() *GenomeIDGenerator {
	return &GenomeIDGenerator{
		nextID:       1,
		nextInnovNum: initialInnovNum,
		nextNodeID:   firstHiddenID,
		links:        make(map[int64]int64),
		splits:       make(map[int64]splitRecord),
	}
}

// NextID returns the next unique genome ID.
func (g *GenomeIDGenerator) NextID() int {
	id := g.nextID
	g.nextID++
	return id
}

// NextInnovation returns the next innovation number.
func (g *GenomeIDGenerator) NextInnovation() int64 {
	num := g.nextInnovNum
	g.nextInnovNum++
	return num
}

// linkInnovation returns the innovation number of the link in -> out.
func (g *GenomeIDGenerator) linkInnovation(inID, outID int) int64 {
	key := connectionKey(inID, outID)
	if innov, ok := g.links[key]; ok {
		return innov
	}
	innov := g.NextInnovation()
	g.links[key] = innov
	return innov
}

// split returns the hidden node id and link innovations for splitting the
// gene with the given innovation number.
func (g *GenomeIDGenerator) split(innov int64, inID, outID int) splitRecord {
	if rec, ok := g.splits[innov]; ok {
		return rec
	}
	rec := splitRecord{node: g.nextNodeID}
	g.nextNodeID++
	rec.inInnov = g.linkInnovation(inID, rec.node)
	rec.outInnov = g.linkInnovation(rec.node, outID)
	g.splits[innov] = rec
	return rec
}

// CrossoverGenomes performs NEAT-style crossover between two parent genomes.
// Genes are aligned by innovation number.
// The more fit parent contributes disjoint/excess genes.
func CrossoverGenomes(parent1, parent2 *genetics.Genome, fitness1, fitness2 float64, childID int, rng *rand.Rand) (*genetics.Genome, error) {
	if parent1 == nil || parent2 == nil {
		return nil, fmt.Errorf("crossover: %w", ErrNilGenome)
	}

	// Determine which parent is more fit (or equal)
	var primary, secondary *genetics.Genome
	if fitness1 >= fitness2 {
		primary, secondary = parent1, parent2
	} else {
		primary, secondary = parent2, parent1
	}

	secondaryGenes := make(map[int64]*genetics.Gene, len(secondary.Genes))
	for _, gene := range secondary.Genes {
		secondaryGenes[gene.InnovationNum] = gene
	}

	// Child nodes come from the primary parent; only its genes are inherited,
	// so no other node can be referenced.
	childNodeMap := make(map[int]*network.NNode, len(primary.Nodes))
	childNodes := make([]*network.NNode, 0, len(primary.Nodes))
	for _, node := range primary.Nodes {
		childNode := copyNode(node)
		childNodeMap[childNode.Id] = childNode
		childNodes = append(childNodes, childNode)
	}
	sort.Slice(childNodes, func(i, j int) bool { return childNodes[i].Id < childNodes[j].Id })

	childGenes := make([]*genetics.Gene, 0, len(primary.Genes))
	for _, pGene := range primary.Genes {
		selected := pGene
		enabled := pGene.IsEnabled

		if sGene, ok := secondaryGenes[pGene.InnovationNum]; ok {
			// Matching gene - randomly select from either parent
			if rng.Float64() < 0.5 {
				selected = sGene
			}
			enabled = true
			if !pGene.IsEnabled || !sGene.IsEnabled {
				enabled = rng.Float64() >= disableInherited
			}
		}

		inNode := childNodeMap[selected.Link.InNode.Id]
		outNode := childNodeMap[selected.Link.OutNode.Id]
		if inNode == nil || outNode == nil {
			continue
		}
		childGene := genetics.NewGeneWithTrait(
			nil,
			selected.Link.ConnectionWeight,
			inNode,
			outNode,
			selected.Link.IsRecurrent,
			selected.InnovationNum,
			selected.MutationNum,
		)
		childGene.IsEnabled = enabled
		childGenes = append(childGenes, childGene)
	}

	child := genetics.NewGenome(childID, nil, childNodes, childGenes)
	repairOutputs(child)
	return child, nil
}

func copyNode(node *network.NNode) *network.NNode {
	newNode := network.NewNNode(node.Id, node.NeuronType)
	newNode.ActivationType = node.ActivationType
	return newNode
}

// Mutator applies structural and weight mutations to genomes.
type Mutator struct {
	Opts           *neat.Options
	ReplaceRate    float64 // chance a weight is redrawn instead of perturbed
	DeleteLinkProb float64
	MaxWeight      float64
	Hidden         neatmath.NodeActivationType
	IDs            *GenomeIDGenerator
	Rng            *rand.Rand
}

// Mutate applies each mutation with its configured probability and reports
// whether the genome changed.
func (m *Mutator) Mutate(genome *genetics.Genome) (bool, error) {
	if genome == nil {
		return false, fmt.Errorf("mutate: %w", ErrNilGenome)
	}

	mutated := false

	if m.Rng.Float64() < m.Opts.MutateAddNodeProb {
		if m.addNode(genome) {
			mutated = true
		}
	}

	if m.Rng.Float64() < m.Opts.MutateAddLinkProb {
		if m.addLink(genome) {
			mutated = true
		}
	}

	if m.Rng.Float64() < m.DeleteLinkProb {
		if m.deleteLink(genome) {
			mutated = true
		}
	}

	if m.Rng.Float64() < m.Opts.MutateToggleEnableProb {
		if m.toggleEnable(genome) {
			mutated = true
		}
	}

	if m.mutateWeights(genome) {
		mutated = true
	}

	return mutated, nil
}

// mutateWeights perturbs each weight with probability MutateLinkWeightsProb
// or redraws it with probability ReplaceRate.
func (m *Mutator) mutateWeights(genome *genetics.Genome) bool {
	changed := false
	for _, gene := range genome.Genes {
		r := m.Rng.Float64()
		switch {
		case r < m.Opts.MutateLinkWeightsProb:
			gene.Link.ConnectionWeight += m.Rng.NormFloat64() * m.Opts.WeightMutPower
		case r < m.Opts.MutateLinkWeightsProb+m.ReplaceRate:
			gene.Link.ConnectionWeight = m.Rng.Float64()*4 - 2
		default:
			continue
		}
		gene.Link.ConnectionWeight = clampWeight(gene.Link.ConnectionWeight, m.MaxWeight)
		changed = true
	}
	return changed
}

// clampWeight clamps a connection weight to [-limit, limit].
func clampWeight(w, limit float64) float64 {
	if w > limit {
		return limit
	}
	if w < -limit {
		return -limit
	}
	return w
}

func (m *Mutator) addNode(genome *genetics.Genome) bool {
	// Find enabled genes to split
	enabledGenes := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		if gene.IsEnabled {
			enabledGenes = append(enabledGenes, gene)
		}
	}

	if len(enabledGenes) == 0 {
		return false
	}

	geneToSplit := enabledGenes[m.Rng.Intn(len(enabledGenes))]
	rec := m.IDs.split(geneToSplit.InnovationNum, geneToSplit.Link.InNode.Id, geneToSplit.Link.OutNode.Id)

	// The same split was already made in this genome.
	for _, node := range genome.Nodes {
		if node.Id == rec.node {
			return false
		}
	}

	geneToSplit.IsEnabled = false

	newNode := network.NewNNode(rec.node, network.HiddenNeuron)
	newNode.ActivationType = m.Hidden

	// old_in -> new_node carries weight 1.0, new_node -> old_out the old weight
	gene1 := genetics.NewGeneWithTrait(
		nil,
		1.0,
		geneToSplit.Link.InNode,
		newNode,
		false,
		rec.inInnov,
		0,
	)
	gene2 := genetics.NewGeneWithTrait(
		nil,
		geneToSplit.Link.ConnectionWeight,
		newNode,
		geneToSplit.Link.OutNode,
		false,
		rec.outInnov,
		0,
	)

	genome.Nodes = append(genome.Nodes, newNode)
	genome.Genes = append(genome.Genes, gene1, gene2)

	return true
}

func (m *Mutator) addLink(genome *genetics.Genome) bool {
	var sources, targets []*network.NNode
	for _, node := range genome.Nodes {
		switch node.NeuronType {
		case network.InputNeuron, network.BiasNeuron:
			sources = append(sources, node)
		case network.OutputNeuron:
			targets = append(targets, node)
		case network.HiddenNeuron:
			sources = append(sources, node)
			targets = append(targets, node)
		}
	}

	if len(sources) == 0 || len(targets) == 0 {
		return false
	}

	existing := make(map[int64]bool, len(genome.Genes))
	for _, gene := range genome.Genes {
		existing[connectionKey(gene.Link.InNode.Id, gene.Link.OutNode.Id)] = true
	}

	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		source := sources[m.Rng.Intn(len(sources))]
		target := targets[m.Rng.Intn(len(targets))]

		if source.Id == target.Id || existing[connectionKey(source.Id, target.Id)] {
			continue
		}
		// Networks stay feed-forward.
		if createsCycle(genome, source.Id, target.Id) {
			continue
		}

		newGene := genetics.NewGeneWithTrait(
			nil,
			m.Rng.Float64()*4-2,
			source,
			target,
			false,
			m.IDs.linkInnovation(source.Id, target.Id),
			0,
		)
		genome.Genes = append(genome.Genes, newGene)
		return true
	}

	return false
}

// deleteLink removes a random gene unless that disconnects an output.
func (m *Mutator) deleteLink(genome *genetics.Genome) bool {
	if len(genome.Genes) <= 1 {
		return false
	}
	idx := m.Rng.Intn(len(genome.Genes))
	removed := genome.Genes[idx]
	genome.Genes = append(genome.Genes[:idx:idx], genome.Genes[idx+1:]...)

	if !outputsReachable(genome) {
		genome.Genes = append(genome.Genes[:idx:idx], append([]*genetics.Gene{removed}, genome.Genes[idx:]...)...)
		return false
	}
	return true
}

func (m *Mutator) toggleEnable(genome *genetics.Genome) bool {
	if len(genome.Genes) == 0 {
		return false
	}

	gene := genome.Genes[m.Rng.Intn(len(genome.Genes))]
	gene.IsEnabled = !gene.IsEnabled

	// Re-enable if disabling cut every path to an output
	if !gene.IsEnabled && !outputsReachable(genome) {
		gene.IsEnabled = true
		return false
	}
	return true
}

// connectionKey creates a unique key for a connection between two nodes.
func connectionKey(inID, outID int) int64 {
	return int64(inID)<<32 | int64(outID)
}

// createsCycle reports whether adding in -> out would close a loop, that is
// whether out already reaches in.
func createsCycle(genome *genetics.Genome, inID, outID int) bool {
	adj := make(map[int][]int, len(genome.Nodes))
	for _, gene := range genome.Genes {
		adj[gene.Link.InNode.Id] = append(adj[gene.Link.InNode.Id], gene.Link.OutNode.Id)
	}
	seen := map[int]bool{outID: true}
	stack := []int{outID}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == inID {
			return true
		}
		for _, next := range adj[n] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// outputsReachable reports whether every output can be reached from a sensor
// over enabled genes. goNEAT refuses to activate a network otherwise.
func outputsReachable(genome *genetics.Genome) bool {
	adj := make(map[int][]int, len(genome.Nodes))
	for _, gene := range genome.Genes {
		if gene.IsEnabled {
			adj[gene.Link.InNode.Id] = append(adj[gene.Link.InNode.Id], gene.Link.OutNode.Id)
		}
	}

	seen := make(map[int]bool, len(genome.Nodes))
	var stack []int
	for _, node := range genome.Nodes {
		if node.NeuronType == network.InputNeuron || node.NeuronType == network.BiasNeuron {
			seen[node.Id] = true
			stack = append(stack, node.Id)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[n] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}

	for _, node := range genome.Nodes {
		if node.NeuronType == network.OutputNeuron && !seen[node.Id] {
			return false
		}
	}
	return true
}

// repairOutputs enables genes until every output is reachable again.
// Crossover can disable the only path into an output.
func repairOutputs(genome *genetics.Genome) {
	for _, gene := range genome.Genes {
		if outputsReachable(genome) {
			return
		}
		if !gene.IsEnabled {
			gene.IsEnabled = true
		}
	}
}

// CloneGenome creates a deep copy of a genome with a new ID.
func CloneGenome(genome *genetics.Genome, newID int) (*genetics.Genome, error) {
	if genome == nil {
		return nil, fmt.Errorf("clone: %w", ErrNilGenome)
	}

	nodeMap := make(map[int]*network.NNode)
	newNodes := make([]*network.NNode, 0, len(genome.Nodes))
	for _, node := range genome.Nodes {
		newNode := copyNode(node)
		nodeMap[node.Id] = newNode
		newNodes = append(newNodes, newNode)
	}

	newGenes := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		inNode := nodeMap[gene.Link.InNode.Id]
		outNode := nodeMap[gene.Link.OutNode.Id]
		if inNode != nil && outNode != nil {
			newGene := genetics.NewGeneWithTrait(
				nil,
				gene.Link.ConnectionWeight,
				inNode,
				outNode,
				gene.Link.IsRecurrent,
				gene.InnovationNum,
				gene.MutationNum,
			)
			newGene.IsEnabled = gene.IsEnabled
			newGenes = append(newGenes, newGene)
		}
	}

	return genetics.NewGenome(newID, nil, newNodes, newGenes), nil
}

// GenomeCompatibility calculates the compatibility distance between two genomes.
func GenomeCompatibility(g1, g2 *genetics.Genome, opts *neat.Options) float64 {
	if g1 == nil || g2 == nil {
		return math.MaxFloat64
	}

	genes1 := make(map[int64]*genetics.Gene)
	maxInnov1 := int64(0)
	for _, gene := range g1.Genes {
		genes1[gene.InnovationNum] = gene
		maxInnov1 = max(maxInnov1, gene.InnovationNum)
	}

	genes2 := make(map[int64]*genetics.Gene)
	maxInnov2 := int64(0)
	for _, gene := range g2.Genes {
		genes2[gene.InnovationNum] = gene
		maxInnov2 = max(maxInnov2, gene.InnovationNum)
	}

	matching := 0
	disjoint := 0
	excess := 0
	weightDiff := 0.0

	for innov, gene1 := range genes1 {
		if gene2, exists := genes2[innov]; exists {
			matching++
			weightDiff += math.Abs(gene1.Link.ConnectionWeight - gene2.Link.ConnectionWeight)
		} else if innov > maxInnov2 {
			excess++
		} else {
			disjoint++
		}
	}

	for innov := range genes2 {
		if _, exists := genes1[innov]; !exists {
			if innov > maxInnov1 {
				excess++
			} else {
				disjoint++
			}
		}
	}

	// Normalize by genome size
	n := float64(max(len(g1.Genes), len(g2.Genes)))
	if n < 20 {
		n = 1 // Don't normalize small genomes
	}

	avgWeightDiff := 0.0
	if matching > 0 {
		avgWeightDiff = weightDiff / float64(matching)
	}

	return (opts.ExcessCoeff*float64(excess)+opts.DisjointCoeff*float64(disjoint))/n +
		opts.MutdiffCoeff*avgWeightDiff
}
