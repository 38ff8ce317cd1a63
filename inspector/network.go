package inspector

import (
	"math"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"

	"github.com/pthm-cable/flapneat/neural"
)

// NetworkColors for activation visualization.
var (
	ColorNodeHidden   = rl.Color{R: 90, G: 90, B: 110, A: 255}
	ColorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	ColorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	ColorEdgeDisabled = rl.Color{R: 90, G: 90, B: 90, A: 60}
	ColorLabelDim     = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// NodeLayout places one genome node in the diagram grid.
type NodeLayout struct {
	ID    int
	Type  network.NodeNeuronType
	Layer int // 0 for sensors, Layers-1 for outputs
	Row   int // position within the layer
}

// Layout arranges a genome's nodes in columns. Sensors take the first
// column, outputs the last; a hidden node sits one column after the deepest
// node feeding it over enabled genes. It returns the nodes and the number
// of columns.
func Layout(genome *genetics.Genome) ([]NodeLayout, int) {
	if genome == nil {
		return nil, 0
	}

	depth := make(map[int]int, len(genome.Nodes))
	isHidden := make(map[int]bool)
	for _, n := range genome.Nodes {
		if n.NeuronType == network.HiddenNeuron {
			isHidden[n.Id] = true
		}
	}

	// Relax longest-path depths. Genomes are acyclic, so this settles in at
	// most len(Nodes) rounds; the bound guards against anything else.
	for round := 0; round < len(genome.Nodes); round++ {
		changed := false
		for _, g := range genome.Genes {
			if !g.IsEnabled {
				continue
			}
			in, out := g.Link.InNode.Id, g.Link.OutNode.Id
			if !isHidden[out] {
				continue
			}
			if d := depth[in] + 1; d > depth[out] {
				depth[out] = d
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	maxHidden := 0
	for id := range isHidden {
		if depth[id] == 0 {
			depth[id] = 1 // disconnected hidden node
		}
		if depth[id] > maxHidden {
			maxHidden = depth[id]
		}
	}
	outputLayer := maxHidden + 1

	nodes := make([]NodeLayout, 0, len(genome.Nodes))
	for _, n := range genome.Nodes {
		layer := 0
		switch n.NeuronType {
		case network.OutputNeuron:
			layer = outputLayer
		case network.HiddenNeuron:
			layer = depth[n.Id]
		}
		nodes = append(nodes, NodeLayout{ID: n.Id, Type: n.NeuronType, Layer: layer})
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Layer != nodes[j].Layer {
			return nodes[i].Layer < nodes[j].Layer
		}
		return nodes[i].ID < nodes[j].ID
	})
	row := 0
	for i := range nodes {
		if i > 0 && nodes[i].Layer != nodes[i-1].Layer {
			row = 0
		}
		nodes[i].Row = row
		row++
	}

	return nodes, outputLayer + 1
}

// DrawNetworkDiagram renders a genome's network. inputs and output are the
// lead bird's latest sensor readings and decision; sensors are drawn with
// their readings scaled by inputScale.
func DrawNetworkDiagram(x, y, width, height int32, genome *genetics.Genome, inputs [neural.BrainInputs]float64, output float64, inputScale float64) {
	nodes, layers := Layout(genome)
	if len(nodes) == 0 {
		rl.DrawText("No network data", x+10, y+10, 14, ColorLabelDim)
		return
	}

	perLayer := make([]int, layers)
	for _, n := range nodes {
		perLayer[n.Layer]++
	}

	// Leave room for labels on both sides
	left := float32(x) + 60
	right := float32(x+width) - 50
	colWidth := (right - left) / float32(max(layers-1, 1))
	nodeRadius := float32(6)

	pos := make(map[int]rl.Vector2, len(nodes))
	for _, n := range nodes {
		spacing := float32(height-20) / float32(perLayer[n.Layer])
		pos[n.ID] = rl.Vector2{
			X: left + float32(n.Layer)*colWidth,
			Y: float32(y) + 10 + spacing*(float32(n.Row)+0.5),
		}
	}

	for _, g := range genome.Genes {
		from, ok1 := pos[g.Link.InNode.Id]
		to, ok2 := pos[g.Link.OutNode.Id]
		if !ok1 || !ok2 {
			continue
		}
		drawEdge(from, to, float32(g.Link.ConnectionWeight), g.IsEnabled)
	}

	sensor := 0
	for _, n := range nodes {
		p := pos[n.ID]
		switch n.Type {
		case network.InputNeuron, network.BiasNeuron:
			activation := float32(1)
			if n.Type == network.InputNeuron && sensor < len(inputs) {
				activation = float32(inputs[sensor] / inputScale)
			}
			drawNode(p, nodeRadius, activationColor(activation))
			if sensor < len(neural.InputLabels) {
				label := neural.InputLabels[sensor]
				labelWidth := rl.MeasureText(label, 10)
				rl.DrawText(label, int32(p.X-nodeRadius)-labelWidth-4, int32(p.Y)-5, 10, ColorLabelDim)
			}
			sensor++
		case network.OutputNeuron:
			drawNode(p, nodeRadius+2, activationColor(float32(output)))
			rl.DrawText(neural.OutputLabels[0], int32(p.X+nodeRadius+6), int32(p.Y)-5, 10, ColorLabelDim)
		default:
			drawNode(p, nodeRadius, ColorNodeHidden)
		}
	}
}

// drawNode renders a single neuron node.
func drawNode(pos rl.Vector2, radius float32, color rl.Color) {
	rl.DrawCircleV(pos, radius, color)
	rl.DrawCircleLinesV(pos, radius, rl.Color{R: 100, G: 100, B: 100, A: 255})
}

// drawEdge renders a connection between nodes.
func drawEdge(from, to rl.Vector2, weight float32, enabled bool) {
	if !enabled {
		rl.DrawLineEx(from, to, 0.5, ColorEdgeDisabled)
		return
	}

	thickness := float32(math.Min(3, math.Max(0.5, float64(absFloat(weight)*1.5))))

	color := ColorEdgePositive
	if weight < 0 {
		color = ColorEdgeNegative
	}
	color.A = uint8(math.Min(150, float64(40+absFloat(weight)*40)))

	rl.DrawLineEx(from, to, thickness, color)
}

// activationColor returns a color based on activation value.
// Negative = blue, Zero = gray, Positive = red.
func activationColor(activation float32) rl.Color {
	t := absFloat(activation)
	if t > 1 {
		t = 1
	}
	if activation >= 0 {
		return rl.Color{R: uint8(60 + t*195), G: uint8(60 - t*30), B: uint8(60 - t*30), A: 255}
	}
	return rl.Color{R: uint8(60 - t*30), G: uint8(60 - t*30), B: uint8(60 + t*195), A: 255}
}

func absFloat(x float32) float32 {
	return float32(math.Abs(float64(x)))
}
