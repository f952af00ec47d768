package ann

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/strata-ml/strata/internal/matrix"
)

// Gradient holds the per-layer gradient matrices produced by one
// backpropagation call, plus an optional gradient with respect to the
// network input.
//
// A strategy may intentionally leave a layer without a gradient (the
// tied-autoencoder walk stops after two layers); such slots are skipped
// rather than nil-dereferenced downstream: Layer reports them via its
// second return value, and Merge and Model.Update treat them explicitly.
//
// A Gradient is owned by the call that created it until it is merged into
// another container or applied to a model.
type Gradient struct {
	layers []*mat.Dense // nil marks a skipped slot
	input  []float64    // gradient w.r.t. the network input, or nil
}

// NewGradient wraps an ordered per-layer gradient sequence. A nil entry
// marks a layer whose gradient was intentionally not computed.
func NewGradient(layers []*mat.Dense) *Gradient {
	return &Gradient{layers: layers}
}

// LayerCount returns the number of layer slots, computed or skipped.
func (g *Gradient) LayerCount() int {
	return len(g.layers)
}

// Layer returns layer i's gradient matrix. The second return value is false
// when the slot was skipped by the producing strategy.
func (g *Gradient) Layer(i int) (*mat.Dense, bool) {
	m := g.layers[i]
	return m, m != nil
}

// Input returns the gradient with respect to the network input, or nil when
// the producing strategy did not compute one. The trailing entry corresponds
// to the bias slot of the augmented input.
func (g *Gradient) Input() []float64 {
	return g.input
}

// Merge adds other into g entrywise, layer by layer.
//
// Both containers must have the same layer count, skipped slots in the same
// positions, and matching matrix dimensions; any mismatch is a contract
// violation and panics. Input gradients are summed when both sides carry one.
func (g *Gradient) Merge(other *Gradient) {
	if len(g.layers) != len(other.layers) {
		panic(fmt.Sprintf("ann: cannot merge gradients with %d and %d layers", len(g.layers), len(other.layers)))
	}
	for i := range g.layers {
		switch {
		case g.layers[i] == nil && other.layers[i] == nil:
			// Both sides skipped this layer.
		case g.layers[i] == nil || other.layers[i] == nil:
			panic(fmt.Sprintf("ann: gradient layer %d is skipped on only one side of a merge", i))
		default:
			matrix.AddInPlace(g.layers[i], other.layers[i])
		}
	}

	if g.input != nil && other.input != nil {
		if len(g.input) != len(other.input) {
			panic(fmt.Sprintf("ann: cannot merge input gradients of length %d and %d", len(g.input), len(other.input)))
		}
		for i, v := range other.input {
			g.input[i] += v
		}
	}
}

// Scale multiplies every computed entry, including the input gradient, by s.
func (g *Gradient) Scale(s float64) {
	for _, layer := range g.layers {
		if layer != nil {
			layer.Scale(s, layer)
		}
	}
	for i := range g.input {
		g.input[i] *= s
	}
}
