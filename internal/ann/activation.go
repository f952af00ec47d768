package ann

import (
	"fmt"
	"math"
)

// Activation identifies the activation function attached to a layer.
//
// Single-input activations apply elementwise to a layer's pre-activation
// vector. Multi-input activations (Softmax) compute each output entry from
// the whole pre-activation vector.
type Activation int

// Supported activation identifiers.
const (
	Identity Activation = iota
	Sigmoid
	Tanh
	ReLU
	Softmax
)

// String returns the identifier's name.
func (a Activation) String() string {
	switch a {
	case Identity:
		return "identity"
	case Sigmoid:
		return "sigmoid"
	case Tanh:
		return "tanh"
	case ReLU:
		return "relu"
	case Softmax:
		return "softmax"
	}
	return fmt.Sprintf("activation(%d)", int(a))
}

// MultiInput reports whether the activation's per-output value depends on
// the whole pre-activation vector rather than a single entry.
func (a Activation) MultiInput() bool {
	return a == Softmax
}

// ScalarFunc is a single-input activation: an elementwise function together
// with its derivative.
type ScalarFunc struct {
	Compute    func(x float64) float64
	Derivative func(x float64) float64
}

// Func returns the scalar function for a single-input activation.
//
// Panics for multi-input and unknown identifiers: asking for the elementwise
// form of Softmax is a contract violation, not a recoverable condition.
func (a Activation) Func() ScalarFunc {
	switch a {
	case Identity:
		return ScalarFunc{
			Compute:    func(x float64) float64 { return x },
			Derivative: func(x float64) float64 { return 1 },
		}
	case Sigmoid:
		return ScalarFunc{
			Compute: sigmoid,
			Derivative: func(x float64) float64 {
				s := sigmoid(x)
				return s * (1 - s)
			},
		}
	case Tanh:
		return ScalarFunc{
			Compute: math.Tanh,
			Derivative: func(x float64) float64 {
				t := math.Tanh(x)
				return 1 - t*t
			},
		}
	case ReLU:
		return ScalarFunc{
			Compute: func(x float64) float64 { return math.Max(x, 0) },
			Derivative: func(x float64) float64 {
				if x > 0 {
					return 1
				}
				return 0
			},
		}
	}
	panic(fmt.Sprintf("ann: no single-input function for activation %v", a))
}

// MultiFunc returns the multi-input form of the activation: a function of
// the layer's full pre-activation vector and the index of the output entry
// being computed.
//
// Panics for single-input and unknown identifiers.
func (a Activation) MultiFunc() func(sum []float64, i int) float64 {
	if a == Softmax {
		return func(sum []float64, i int) float64 {
			var total float64
			for _, v := range sum {
				total += math.Exp(v)
			}
			return math.Exp(sum[i]) / total
		}
	}
	panic(fmt.Sprintf("ann: no multi-input function for activation %v", a))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
