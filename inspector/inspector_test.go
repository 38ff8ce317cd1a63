package inspector

import (
	"math/rand"
	"testing"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"

	"github.com/pthm-cable/flapneat/game"
	"github.com/pthm-cable/flapneat/neural"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag     string
		widget  Widget
		options map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"bar,max:730", WidgetBar, map[string]string{"max": "730"}},
		{"label, fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"angle", WidgetAngle, map[string]string{}},
		{"skip", WidgetSkip, map[string]string{}},
		{"mystery,name:X", WidgetAuto, map[string]string{"name": "X"}},
	}

	for _, tt := range tests {
		widget, options := ParseTag(tt.tag)
		if widget != tt.widget {
			t.Errorf("ParseTag(%q) widget = %v, want %v", tt.tag, widget, tt.widget)
		}
		if len(options) != len(tt.options) {
			t.Errorf("ParseTag(%q) options = %v, want %v", tt.tag, options, tt.options)
			continue
		}
		for k, v := range tt.options {
			if options[k] != v {
				t.Errorf("ParseTag(%q) option %s = %q, want %q", tt.tag, k, options[k], v)
			}
		}
	}
}

func TestExtractFieldsFromReadout(t *testing.T) {
	r := Readout{Species: 2, Y: 350, Top: 20, Bottom: 180, Jump: 0.7, Tilt: 25, Flapped: true}
	fields := ExtractFields(&r)

	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	if f, ok := byName["To top"]; !ok || f.Widget != WidgetBar || f.Value.(float64) != 20 {
		t.Errorf("To top field = %+v", f)
	}
	if f := byName["Tilt"]; f.Widget != WidgetAngle {
		t.Errorf("Tilt widget = %v, want angle", f.Widget)
	}
	if f := byName["Jumping"]; f.Widget != WidgetBool || f.Value != true {
		t.Errorf("Jumping field = %+v", f)
	}
	if fields[0].Name != "Genome" {
		t.Errorf("first field = %s, want declaration order", fields[0].Name)
	}
	if ExtractFields(42) != nil {
		t.Error("non-struct should yield no fields")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value any
		fmt   string
		want  string
	}{
		{3.14159, "", "3.14"},
		{float32(2), "", "2.00"},
		{7, "", "7"},
		{350.4, "%.0f", "350"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.value, tt.fmt); got != tt.want {
			t.Errorf("FormatValue(%v, %q) = %q, want %q", tt.value, tt.fmt, got, tt.want)
		}
	}
}

func TestRangeOption(t *testing.T) {
	opts := map[string]string{"max": "730", "min": "oops"}
	if got := rangeOption(opts, "max", 1); got != 730 {
		t.Errorf("max = %v, want 730", got)
	}
	if got := rangeOption(opts, "min", -1); got != -1 {
		t.Errorf("malformed min = %v, want default", got)
	}
}

func TestLayoutMinimalGenome(t *testing.T) {
	g := neural.CreateBrainGenome(1, 1, neatmath.SigmoidSteepenedActivation, rand.New(rand.NewSource(1)))
	nodes, layers := Layout(g)

	if layers != 2 {
		t.Errorf("layers = %d, want 2", layers)
	}
	sensors := 0
	for _, n := range nodes {
		switch n.Type {
		case network.InputNeuron, network.BiasNeuron:
			sensors++
			if n.Layer != 0 {
				t.Errorf("sensor %d in layer %d", n.ID, n.Layer)
			}
		case network.OutputNeuron:
			if n.Layer != 1 || n.Row != 0 {
				t.Errorf("output at layer %d row %d, want 1/0", n.Layer, n.Row)
			}
		}
	}
	if sensors != neural.BrainInputs+1 {
		t.Errorf("sensors = %d, want %d", sensors, neural.BrainInputs+1)
	}
}

func TestLayoutHiddenChain(t *testing.T) {
	in := network.NewNNode(1, network.InputNeuron)
	bias := network.NewNNode(2, network.BiasNeuron)
	out := network.NewNNode(3, network.OutputNeuron)
	h1 := network.NewNNode(4, network.HiddenNeuron)
	h2 := network.NewNNode(5, network.HiddenNeuron)

	genes := []*genetics.Gene{
		genetics.NewGeneWithTrait(nil, 1, in, h1, false, 1, 0),
		genetics.NewGeneWithTrait(nil, 1, h1, h2, false, 2, 0),
		genetics.NewGeneWithTrait(nil, 1, h2, out, false, 3, 0),
		genetics.NewGeneWithTrait(nil, 1, bias, h2, false, 4, 0),
	}
	g := genetics.NewGenome(1, nil, []*network.NNode{in, bias, out, h1, h2}, genes)

	nodes, layers := Layout(g)
	if layers != 4 {
		t.Fatalf("layers = %d, want 4", layers)
	}
	want := map[int]int{1: 0, 2: 0, 4: 1, 5: 2, 3: 3}
	for _, n := range nodes {
		if n.Layer != want[n.ID] {
			t.Errorf("node %d layer = %d, want %d", n.ID, n.Layer, want[n.ID])
		}
	}
	if nodes[1].ID != 2 || nodes[1].Row != 1 {
		t.Errorf("bias should be second in the sensor column, got %+v", nodes[1])
	}
}

func TestNewReadout(t *testing.T) {
	if _, ok := NewReadout(&game.Frame{}, 0.5); ok {
		t.Error("empty frame should have no readout")
	}

	g := neural.CreateBrainGenome(9, 1, neatmath.SigmoidSteepenedActivation, rand.New(rand.NewSource(1)))
	f := &game.Frame{
		Birds: []game.BirdView{{Y: 300, Tilt: -40}},
		Lead: &game.LeadView{
			Genome:    g,
			SpeciesID: 4,
			Inputs:    [3]float64{300, 80, 120},
			Output:    0.8,
			Fitness:   12.5,
		},
	}
	r, ok := NewReadout(f, 0.5)
	if !ok {
		t.Fatal("expected a readout")
	}
	if r.Genome != 9 || r.Species != 4 || r.Tilt != -40 || !r.Flapped {
		t.Errorf("readout = %+v", r)
	}
	if r.Links != len(g.Genes) || r.Nodes != len(g.Nodes) {
		t.Errorf("size = %d nodes %d links", r.Nodes, r.Links)
	}
}
