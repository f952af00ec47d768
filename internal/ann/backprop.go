package ann

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/strata-ml/strata/internal/matrix"
)

// LeastSquares derives per-layer gradients for the squared-error loss from
// one forward pass.
//
// The output-layer error signal is target - output. Walking layers from the
// output down, each layer's gradient entry is
//
//	gradient[y][x] = delta[x] * f'(sum[x]) * edgeOutput[y]
//
// where edgeOutput is the layer's input (1 on the bias row), and the error
// is pushed to the layer below by weight @ delta with the trailing bias
// entry stripped.
//
// Because the error signal is the residual rather than its negation, the
// returned gradient is a descent step as-is: Model.Update adds lr * g.
func LeastSquares(m Model, ex Example, fw *ForwardPass) *Gradient {
	count := m.LayerCount()
	layers := make([]*mat.Dense, count)

	delta := outputError(ex.Target, fw.Output())
	for i := count - 1; i >= 0; i-- {
		layers[i] = layerGradient(m, ex, fw, i, delta)
		delta = propagate(m.Layer(i), delta)
	}

	return &Gradient{layers: layers}
}

// TiedAutoencoder derives gradients for an autoencoder whose final two
// layers share one transposed weight matrix.
//
// The error and gradient computation match LeastSquares, but the reverse
// walk stops after the two layers closest to the output; every earlier slot
// is skipped. The two computed matrices are then symmetrized across the
// transpose relationship,
//
//	last[i][j] = secondLast[j][i] = last[i][j] + secondLast[j][i]
//
// over the non-bias region, so both views of a shared parameter receive the
// same update.
//
// The model must have at least two layers and the trailing pair must be
// transpose-compatible over their non-bias regions; anything else panics.
func TiedAutoencoder(m Model, ex Example, fw *ForwardPass) *Gradient {
	count := m.LayerCount()
	if count < 2 {
		panic(fmt.Sprintf("ann: tied-autoencoder backprop needs at least 2 layers, model has %d", count))
	}

	lastRows, lastCols := m.Layer(count - 1).Dims()
	prevRows, prevCols := m.Layer(count - 2).Dims()
	if lastRows-1 != prevCols || prevRows-1 != lastCols {
		panic(fmt.Sprintf("ann: tied layers are not transpose-compatible: layer %d is %dx%d, layer %d is %dx%d",
			count-2, prevRows, prevCols, count-1, lastRows, lastCols))
	}

	layers := make([]*mat.Dense, count)
	delta := outputError(ex.Target, fw.Output())
	for i := count - 1; i >= count-2; i-- {
		layers[i] = layerGradient(m, ex, fw, i, delta)
		delta = propagate(m.Layer(i), delta)
	}

	// Tie the last two layers: symmetrize the non-bias region so the shared
	// parameter moves identically on both sides.
	last, prev := layers[count-1], layers[count-2]
	for i := 0; i < lastRows-1; i++ {
		for j := 0; j < lastCols; j++ {
			v := last.At(i, j) + prev.At(j, i)
			last.Set(i, j, v)
			prev.Set(j, i, v)
		}
	}

	return &Gradient{layers: layers}
}

// SoftmaxOptions configures SoftmaxLogLikelihood.
type SoftmaxOptions struct {
	// L2 holds one weight-decay coefficient per layer, indexed like the
	// model's layers; it must be at least as long as the layer count when
	// supplied. An extra trailing entry penalizes the input gradient. Nil
	// disables regularization.
	L2 []float64

	// Reuse writes gradients into a previously allocated container instead
	// of allocating fresh matrices, so a training loop can avoid
	// reallocation. The container must have a computed slot of the right
	// shape for every layer.
	Reuse *Gradient

	// InputGradient additionally computes the gradient with respect to the
	// network input, for chaining into an upstream component (for example
	// another network feeding this one). The result includes a trailing
	// entry for the bias slot of the augmented input.
	InputGradient bool
}

// SoftmaxLogLikelihood derives per-layer gradients for a log-likelihood loss
// over a softmax output layer.
//
// The softmax + log-likelihood combination collapses the loss derivative
// with respect to the final pre-activation to target - output, the same
// residual form LeastSquares seeds with. Walking layers from the output
// down, with h the layer's input:
//
//	gradient[j][i] = lOverA[i]*h[j] - l2*w[j][i]    (non-bias rows)
//	gradient[last][i] = lOverA[i] - l2*w[last][i]   (bias row)
//
// and for lower layers lOverA becomes weight @ lOverA with the bias entry
// stripped, multiplied elementwise by the derivative of the layer below's
// activation at its pre-activation sums.
//
// The bias row carries no input term, only its own weight's decay; this
// assumes every layer is biased, and a layer whose input length does not
// match its weight matrix's non-bias row count panics rather than silently
// producing wrong bias-row gradients.
//
// The model's final layer must be Softmax. After assembly the model's
// PostProcessGradient hook runs on the finished container.
func SoftmaxLogLikelihood(m Model, ex Example, fw *ForwardPass, opts SoftmaxOptions) *Gradient {
	count := m.LayerCount()
	if opts.L2 != nil && len(opts.L2) < count {
		panic(fmt.Sprintf("ann: %d L2 lambdas supplied for %d layers", len(opts.L2), count))
	}
	if m.ActivationOf(count-1) != Softmax {
		panic(fmt.Sprintf("ann: softmax log-likelihood backprop requires a softmax output layer, got %v", m.ActivationOf(count-1)))
	}

	grad := opts.Reuse
	if grad == nil {
		layers := make([]*mat.Dense, count)
		for i := range layers {
			r, c := m.Layer(i).Dims()
			layers[i] = mat.NewDense(r, c, nil)
		}
		grad = &Gradient{layers: layers}
	} else if grad.LayerCount() != count {
		panic(fmt.Sprintf("ann: reused gradient has %d layers, model has %d", grad.LayerCount(), count))
	}

	lOverA := outputError(ex.Target, fw.Output())

	for k := count - 1; k >= 0; k-- {
		w := m.Layer(k)
		rows, cols := w.Dims()

		target, ok := grad.Layer(k)
		if !ok {
			panic(fmt.Sprintf("ann: reused gradient skips layer %d", k))
		}
		if tr, tc := target.Dims(); tr != rows || tc != cols {
			panic(fmt.Sprintf("ann: reused gradient for layer %d is %dx%d, weight matrix is %dx%d", k, tr, tc, rows, cols))
		}

		var l2 float64
		if opts.L2 != nil {
			l2 = opts.L2[k]
		}

		h := ex.Input
		if k > 0 {
			h = fw.Outputs[k-1]
		}
		if len(h) != rows-1 {
			panic(fmt.Sprintf("ann: layer %d must be biased: weight matrix is %dx%d but its input has length %d", k, rows, cols, len(h)))
		}

		for j := 0; j < rows-1; j++ {
			for i := 0; i < cols; i++ {
				target.Set(j, i, lOverA[i]*h[j]-l2*w.At(j, i))
			}
		}
		// Bias row: no input term, only the weight's own decay.
		for i := 0; i < cols; i++ {
			target.Set(rows-1, i, lOverA[i]-l2*w.At(rows-1, i))
		}

		if k > 0 {
			lOverA = propagate(w, lOverA)
			fn := m.ActivationOf(k - 1).Func()
			for j := range lOverA {
				lOverA[j] *= fn.Derivative(fw.Sums[k-1][j])
			}
		}
	}

	if opts.InputGradient {
		lOverX := matrix.MulVec(m.Layer(0), lOverA)
		if opts.L2 != nil && len(opts.L2) > count {
			l2 := opts.L2[count]
			for i := 0; i < len(lOverX)-1; i++ {
				lOverX[i] -= l2 * ex.Input[i]
			}
		}
		grad.input = lOverX
	} else {
		grad.input = nil
	}

	m.PostProcessGradient(grad)
	return grad
}

// outputError computes the output-layer error signal target - output.
func outputError(target, output []float64) []float64 {
	if len(target) != len(output) {
		panic(fmt.Sprintf("ann: target length %d does not match output length %d", len(target), len(output)))
	}
	delta := make([]float64, len(output))
	for i := range delta {
		delta[i] = target[i] - output[i]
	}
	return delta
}

// layerGradient computes one layer's gradient matrix from the incoming error
// signal: gradient[y][x] = delta[x] * f'(sum[x]) * edgeOutput[y], with
// edgeOutput fixed to 1 on the bias row.
func layerGradient(m Model, ex Example, fw *ForwardPass, i int, delta []float64) *mat.Dense {
	fn := m.ActivationOf(i).Func()
	rows, cols := m.Layer(i).Dims()

	grad := mat.NewDense(rows, cols, nil)
	for x := 0; x < cols; x++ {
		derivative := fn.Derivative(fw.Sums[i][x])
		for y := 0; y < rows; y++ {
			edge := 1.0
			if y < rows-1 {
				if i > 0 {
					edge = fw.Outputs[i-1][y]
				} else {
					edge = ex.Input[y]
				}
			}
			grad.Set(y, x, delta[x]*derivative*edge)
		}
	}
	return grad
}

// propagate pushes the error signal one layer down: weight @ delta with the
// trailing bias entry stripped, since bias terms receive no incoming error.
func propagate(w *mat.Dense, delta []float64) []float64 {
	next := matrix.MulVec(w, delta)
	return next[:len(next)-1]
}
