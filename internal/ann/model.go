package ann

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Model is the parameter store the training core runs against.
//
// Layers are indexed input side first. Every layer's weight matrix has one
// row per input dimension plus one trailing bias row, and one column per
// output dimension. The core reads weights freely during a forward/backward
// pass and mutates them only through Update.
type Model interface {
	// LayerCount returns the number of layers.
	LayerCount() int

	// Layer returns layer i's weight matrix.
	Layer(i int) *mat.Dense

	// ActivationOf returns the activation attached to layer i.
	ActivationOf(i int) Activation

	// Update applies a gradient to the weights: w += lr * g for every layer
	// slot the gradient computed. Skipped slots leave their layer untouched.
	Update(g *Gradient, lr float64)

	// PostProcessGradient is invoked on every finished softmax
	// log-likelihood gradient before it is returned, as a customization
	// point for clipping or extra constraint enforcement. May be a no-op.
	PostProcessGradient(g *Gradient)
}

// LayerSpec describes one layer of a Network: its input and output
// dimensions and its activation function.
type LayerSpec struct {
	In         int
	Out        int
	Activation Activation
}

var _ Model = (*Network)(nil)

// Network is the default in-memory Model implementation.
//
// Weights are initialized with Xavier/Glorot uniform distribution over the
// non-bias rows; bias rows start at zero.
type Network struct {
	layers      []*mat.Dense
	activations []Activation
	postProcess func(*Gradient)
}

// NewNetwork builds a network from an ordered list of layer specs.
//
// Adjacent layers must agree on their shared dimension, and every dimension
// must be positive.
func NewNetwork(specs ...LayerSpec) (*Network, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("ann: network needs at least one layer")
	}

	n := &Network{
		layers:      make([]*mat.Dense, 0, len(specs)),
		activations: make([]Activation, 0, len(specs)),
	}
	for i, spec := range specs {
		if spec.In <= 0 || spec.Out <= 0 {
			return nil, fmt.Errorf("ann: layer %d has non-positive dimensions %dx%d", i, spec.In, spec.Out)
		}
		if i > 0 && spec.In != specs[i-1].Out {
			return nil, fmt.Errorf("ann: layer %d input size %d does not match layer %d output size %d",
				i, spec.In, i-1, specs[i-1].Out)
		}
		n.layers = append(n.layers, xavier(spec.In, spec.Out))
		n.activations = append(n.activations, spec.Activation)
	}
	return n, nil
}

// LayerCount returns the number of layers.
func (n *Network) LayerCount() int {
	return len(n.layers)
}

// Layer returns layer i's weight matrix. The matrix is the live parameter
// storage; tests and callers may set entries directly.
func (n *Network) Layer(i int) *mat.Dense {
	return n.layers[i]
}

// ActivationOf returns the activation attached to layer i.
func (n *Network) ActivationOf(i int) Activation {
	return n.activations[i]
}

// Update adds lr * g into the weights, layer by layer. Gradient matrices
// must match their layer's dimensions; skipped slots are left alone.
func (n *Network) Update(g *Gradient, lr float64) {
	if g.LayerCount() != len(n.layers) {
		panic(fmt.Sprintf("ann: gradient has %d layers, model has %d", g.LayerCount(), len(n.layers)))
	}
	for i, w := range n.layers {
		layerGrad, ok := g.Layer(i)
		if !ok {
			continue
		}
		r, c := w.Dims()
		gr, gc := layerGrad.Dims()
		if gr != r || gc != c {
			panic(fmt.Sprintf("ann: gradient for layer %d is %dx%d, weight matrix is %dx%d", i, gr, gc, r, c))
		}
		var scaled mat.Dense
		scaled.Scale(lr, layerGrad)
		w.Add(w, &scaled)
	}
}

// PostProcessGradient invokes the hook registered with
// SetGradientPostProcess, if any.
func (n *Network) PostProcessGradient(g *Gradient) {
	if n.postProcess != nil {
		n.postProcess(g)
	}
}

// SetGradientPostProcess registers a hook that runs on every finished
// softmax log-likelihood gradient. Passing nil removes the hook.
func (n *Network) SetGradientPostProcess(fn func(*Gradient)) {
	n.postProcess = fn
}

// xavier builds an (in+1) x out weight matrix with Xavier/Glorot uniform
// initialization: U(-sqrt(6/(in+out)), sqrt(6/(in+out))) over the non-bias
// rows, zeros on the bias row.
func xavier(in, out int) *mat.Dense {
	bound := math.Sqrt(6.0 / float64(in+out))

	w := mat.NewDense(in+1, out, nil)
	for y := 0; y < in; y++ {
		for x := 0; x < out; x++ {
			//nolint:gosec // math/rand is fine for weight initialization
			w.Set(y, x, (rand.Float64()*2-1)*bound)
		}
	}
	return w
}
