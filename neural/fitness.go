package neural

// Fitness is a genome's score for the current generation. The simulation may
// only add to it; the population owns resetting and reading it for selection.
type Fitness struct {
	value float64
}

// Add adjusts the score by delta, which may be negative.
func (f *Fitness) Add(delta float64) {
	f.value += delta
}

// Value returns the accumulated score.
func (f *Fitness) Value() float64 {
	return f.value
}

func (f *Fitness) reset() {
	f.value = 0
}
