package ann

import (
	"fmt"

	"github.com/strata-ml/strata/internal/matrix"
)

// Example is one training pair: an input vector and its target vector.
//
// For the softmax log-likelihood strategy the target conventionally one-hot
// encodes the expected class over the softmax output dimension.
type Example struct {
	Input  []float64
	Target []float64
}

// PostProcessor lets a caller observe one layer's activations during a
// forward pass. Process receives a copy of the bound layer's output right
// after the activation function is applied, so mutating it cannot alter the
// state used by later layers.
type PostProcessor struct {
	Layer   int
	Process func(output []float64)
}

// ForwardPass holds the per-layer state of one forward run. Sums[i] is
// layer i's pre-activation vector, Outputs[i] its activated output. Both are
// fully populated for every layer and live only for the forward+backward
// call they were computed for.
type ForwardPass struct {
	Sums    [][]float64
	Outputs [][]float64
}

// Output returns the activated output of the final layer.
func (fw *ForwardPass) Output() []float64 {
	return fw.Outputs[len(fw.Outputs)-1]
}

// Run computes the forward pass for one input vector.
//
// For each layer, in order: the layer input (the original input for layer 0,
// the previous layer's output otherwise) is augmented with a trailing
// constant 1 for the bias row, multiplied through the weight matrix, and
// passed through the layer's activation. Multi-input activations receive the
// full pre-activation vector together with the index of the entry being
// computed.
//
// post may be nil; when set, its Process callback fires on the bound layer's
// activations.
//
// The input length must match layer 0's declared input dimension.
func Run(m Model, input []float64, post *PostProcessor) *ForwardPass {
	count := m.LayerCount()
	fw := &ForwardPass{
		Sums:    make([][]float64, count),
		Outputs: make([][]float64, count),
	}

	for i := 0; i < count; i++ {
		layerInput := input
		if i > 0 {
			layerInput = fw.Outputs[i-1]
		}

		rows, _ := m.Layer(i).Dims()
		if len(layerInput)+1 != rows {
			panic(fmt.Sprintf("ann: layer %d expects input of length %d, got %d", i, rows-1, len(layerInput)))
		}

		// Bias augmentation: append a constant 1.
		augmented := make([]float64, len(layerInput)+1)
		copy(augmented, layerInput)
		augmented[len(layerInput)] = 1

		sum := matrix.TransposeMulVec(m.Layer(i), augmented)
		fw.Sums[i] = sum

		act := m.ActivationOf(i)
		out := make([]float64, len(sum))
		if act.MultiInput() {
			multi := act.MultiFunc()
			for j := range sum {
				out[j] = multi(sum, j)
			}
		} else {
			fn := act.Func()
			for j, v := range sum {
				out[j] = fn.Compute(v)
			}
		}
		fw.Outputs[i] = out

		if post != nil && post.Layer == i && post.Process != nil {
			snapshot := make([]float64, len(out))
			copy(snapshot, out)
			post.Process(snapshot)
		}
	}

	return fw
}
