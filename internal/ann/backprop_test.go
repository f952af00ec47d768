package ann

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// assertMatrix checks a gradient matrix entrywise against expected rows.
func assertMatrix(t *testing.T, expected [][]float64, actual *mat.Dense, delta float64) {
	t.Helper()

	r, c := actual.Dims()
	require.Len(t, expected, r)
	for y := 0; y < r; y++ {
		require.Len(t, expected[y], c)
		for x := 0; x < c; x++ {
			assert.InDelta(t, expected[y][x], actual.At(y, x), delta, "entry (%d,%d)", y, x)
		}
	}
}

func TestLeastSquares_PinnedTwoLayer(t *testing.T) {
	model := fixedTwoLayerModel(t)
	ex := Example{Input: []float64{1, 0}, Target: []float64{1}}

	fw := Run(model, ex.Input, nil)
	grad := LeastSquares(model, ex, fw)

	require.Equal(t, 2, grad.LayerCount())

	// Output layer: delta = 1 - 0.22784091 = 0.77215909, identity derivative,
	// edges are the hidden activations and 1 on the bias row.
	g1, ok := grad.Layer(1)
	require.True(t, ok)
	assertMatrix(t, [][]float64{
		{0.49854938},
		{0.53277007},
		{0.77215909},
	}, g1, 1e-6)

	// Hidden layer: delta propagates as [0.5, -0.5] * 0.77215909, scaled by
	// the sigmoid derivative at sums [0.6, 0.8]; the second input is 0 so
	// its row vanishes.
	g0, ok := grad.Layer(0)
	require.True(t, ok)
	assertMatrix(t, [][]float64{
		{0.08832891, -0.08258616},
		{0, 0},
		{0.08832891, -0.08258616},
	}, g0, 1e-6)
}

func TestLeastSquares_ZeroResidualZeroGradient(t *testing.T) {
	model, err := NewNetwork(
		LayerSpec{In: 3, Out: 2, Activation: Identity},
	)
	require.NoError(t, err)
	setWeights(model.Layer(0), [][]float64{
		{1, 2},
		{-1, 0.5},
		{3, -2},
		{0.25, 0.75}, // bias row
	})

	ex := Example{Input: []float64{0.5, 1, -0.5}}
	fw := Run(model, ex.Input, nil)
	ex.Target = append([]float64(nil), fw.Output()...)

	grad := LeastSquares(model, ex, fw)

	g0, ok := grad.Layer(0)
	require.True(t, ok)
	r, c := g0.Dims()
	for y := 0; y < r; y++ {
		for x := 0; x < c; x++ {
			assert.Zero(t, g0.At(y, x), "entry (%d,%d)", y, x)
		}
	}
}

func TestTiedAutoencoder_SymmetryInvariant(t *testing.T) {
	model, err := NewNetwork(
		LayerSpec{In: 4, Out: 2, Activation: Sigmoid},
		LayerSpec{In: 2, Out: 4, Activation: Sigmoid},
	)
	require.NoError(t, err)

	input := []float64{0.9, 0.1, 0.4, 0.6}
	ex := Example{Input: input, Target: input}
	fw := Run(model, ex.Input, nil)

	grad := TiedAutoencoder(model, ex, fw)

	last, ok := grad.Layer(1)
	require.True(t, ok)
	prev, ok := grad.Layer(0)
	require.True(t, ok)

	lastRows, lastCols := last.Dims()
	for i := 0; i < lastRows-1; i++ {
		for j := 0; j < lastCols; j++ {
			assert.Equal(t, last.At(i, j), prev.At(j, i), "tied entry (%d,%d)", i, j)
		}
	}
}

func TestTiedAutoencoder_SkipsEarlierLayers(t *testing.T) {
	model, err := NewNetwork(
		LayerSpec{In: 4, Out: 2, Activation: ReLU},
		LayerSpec{In: 2, Out: 3, Activation: Sigmoid},
		LayerSpec{In: 3, Out: 2, Activation: Sigmoid},
	)
	require.NoError(t, err)

	ex := Example{Input: []float64{1, 0, 1, 0}, Target: []float64{0.5, 0.5}}
	fw := Run(model, ex.Input, nil)

	grad := TiedAutoencoder(model, ex, fw)

	require.Equal(t, 3, grad.LayerCount())
	_, ok := grad.Layer(0)
	assert.False(t, ok, "layer 0 must be a skipped slot")
	_, ok = grad.Layer(1)
	assert.True(t, ok)
	_, ok = grad.Layer(2)
	assert.True(t, ok)
}

func TestTiedAutoencoder_Preconditions(t *testing.T) {
	t.Run("single layer", func(t *testing.T) {
		model, err := NewNetwork(
			LayerSpec{In: 2, Out: 2, Activation: Sigmoid},
		)
		require.NoError(t, err)

		ex := Example{Input: []float64{1, 0}, Target: []float64{1, 0}}
		fw := Run(model, ex.Input, nil)

		assert.Panics(t, func() {
			TiedAutoencoder(model, ex, fw)
		})
	})

	t.Run("not transpose compatible", func(t *testing.T) {
		model, err := NewNetwork(
			LayerSpec{In: 4, Out: 2, Activation: Sigmoid},
			LayerSpec{In: 2, Out: 3, Activation: Sigmoid},
		)
		require.NoError(t, err)

		ex := Example{Input: []float64{1, 0, 1, 0}, Target: []float64{1, 0, 1}}
		fw := Run(model, ex.Input, nil)

		assert.Panics(t, func() {
			TiedAutoencoder(model, ex, fw)
		})
	})
}

// softmaxClassifier builds a 2-3-2 network with a softmax output and pinned
// weights.
func softmaxClassifier(t *testing.T) *Network {
	t.Helper()

	model, err := NewNetwork(
		LayerSpec{In: 2, Out: 3, Activation: Sigmoid},
		LayerSpec{In: 3, Out: 2, Activation: Softmax},
	)
	require.NoError(t, err)

	setWeights(model.Layer(0), [][]float64{
		{0.2, -0.1, 0.4},
		{-0.3, 0.5, 0.1},
		{0.05, -0.05, 0.2}, // bias row
	})
	setWeights(model.Layer(1), [][]float64{
		{0.6, -0.6},
		{-0.2, 0.2},
		{0.3, -0.3},
		{0.1, -0.1}, // bias row
	})
	return model
}

func TestSoftmaxLogLikelihood_MatchesLeastSquaresSeed(t *testing.T) {
	model := softmaxClassifier(t)
	ex := Example{Input: []float64{1, -1}, Target: []float64{1, 0}}

	fw := Run(model, ex.Input, nil)
	grad := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{})

	// With no regularization the output-layer gradient is exactly the
	// least-squares form with derivative 1: (target-output)[i] * h[j], and
	// the bare residual on the bias row.
	out := fw.Output()
	h := fw.Outputs[0]

	g1, ok := grad.Layer(1)
	require.True(t, ok)
	rows, cols := g1.Dims()
	for j := 0; j < rows-1; j++ {
		for i := 0; i < cols; i++ {
			expected := (ex.Target[i] - out[i]) * h[j]
			assert.InDelta(t, expected, g1.At(j, i), 1e-12, "entry (%d,%d)", j, i)
		}
	}
	for i := 0; i < cols; i++ {
		assert.InDelta(t, ex.Target[i]-out[i], g1.At(rows-1, i), 1e-12, "bias entry %d", i)
	}
}

func TestSoftmaxLogLikelihood_L2ShiftsGradientByWeightDecay(t *testing.T) {
	model := softmaxClassifier(t)
	ex := Example{Input: []float64{0.5, 0.25}, Target: []float64{0, 1}}
	fw := Run(model, ex.Input, nil)

	base := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{})

	for _, lambda := range []float64{0.01, 0.1, 1} {
		l2 := []float64{lambda, lambda}
		reg := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{L2: l2})

		for k := 0; k < model.LayerCount(); k++ {
			w := model.Layer(k)
			b, ok := base.Layer(k)
			require.True(t, ok)
			g, ok := reg.Layer(k)
			require.True(t, ok)

			rows, cols := w.Dims()
			for j := 0; j < rows; j++ {
				for i := 0; i < cols; i++ {
					expected := b.At(j, i) - lambda*w.At(j, i)
					assert.InDelta(t, expected, g.At(j, i), 1e-12,
						"lambda=%v layer=%d entry (%d,%d)", lambda, k, j, i)
				}
			}
		}
	}
}

func TestSoftmaxLogLikelihood_GradientReuse(t *testing.T) {
	model := softmaxClassifier(t)
	ex := Example{Input: []float64{1, 1}, Target: []float64{0, 1}}
	fw := Run(model, ex.Input, nil)

	first := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{})
	reused := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{Reuse: first})

	assert.Same(t, first, reused, "reuse must return the supplied container")

	fresh := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{})
	for k := 0; k < model.LayerCount(); k++ {
		r, ok := reused.Layer(k)
		require.True(t, ok)
		f, ok := fresh.Layer(k)
		require.True(t, ok)
		assert.True(t, mat.EqualApprox(r, f, 1e-12), "layer %d", k)
	}
}

func TestSoftmaxLogLikelihood_InputGradient(t *testing.T) {
	model := softmaxClassifier(t)
	ex := Example{Input: []float64{0.75, -0.25}, Target: []float64{1, 0}}
	fw := Run(model, ex.Input, nil)

	grad := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{InputGradient: true})

	// Length covers the input dimension plus the bias slot.
	require.Len(t, grad.Input(), 3)

	// With an extra trailing lambda the non-bias entries shift by
	// -lambda * input.
	l2 := []float64{0, 0, 0.5}
	reg := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{L2: l2, InputGradient: true})
	require.Len(t, reg.Input(), 3)
	for i := 0; i < 2; i++ {
		assert.InDelta(t, grad.Input()[i]-0.5*ex.Input[i], reg.Input()[i], 1e-12, "entry %d", i)
	}
	assert.InDelta(t, grad.Input()[2], reg.Input()[2], 1e-12, "bias slot is not penalized")

	plain := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{})
	assert.Nil(t, plain.Input())
}

func TestSoftmaxLogLikelihood_PostProcessHook(t *testing.T) {
	model := softmaxClassifier(t)
	ex := Example{Input: []float64{1, 0}, Target: []float64{0, 1}}
	fw := Run(model, ex.Input, nil)

	var processed *Gradient
	model.SetGradientPostProcess(func(g *Gradient) { processed = g })

	grad := SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{})

	assert.Same(t, grad, processed, "hook must see the finished gradient")
}

func TestSoftmaxLogLikelihood_Preconditions(t *testing.T) {
	t.Run("short L2 vector", func(t *testing.T) {
		model := softmaxClassifier(t)
		ex := Example{Input: []float64{1, 0}, Target: []float64{1, 0}}
		fw := Run(model, ex.Input, nil)

		assert.Panics(t, func() {
			SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{L2: []float64{0.1}})
		})
	})

	t.Run("non-softmax output layer", func(t *testing.T) {
		model := fixedTwoLayerModel(t)
		ex := Example{Input: []float64{1, 0}, Target: []float64{1}}
		fw := Run(model, ex.Input, nil)

		assert.Panics(t, func() {
			SoftmaxLogLikelihood(model, ex, fw, SoftmaxOptions{})
		})
	})

	t.Run("unbiased layer", func(t *testing.T) {
		model := softmaxClassifier(t)
		unbiased := &unbiasedModel{Network: model}
		ex := Example{Input: []float64{1, 0}, Target: []float64{1, 0}}
		fw := Run(model, ex.Input, nil)

		assert.Panics(t, func() {
			SoftmaxLogLikelihood(unbiased, ex, fw, SoftmaxOptions{})
		})
	})
}

// unbiasedModel serves layer 0 without its bias row, modeling a parameter
// store this strategy does not support.
type unbiasedModel struct {
	*Network
}

func (m *unbiasedModel) Layer(i int) *mat.Dense {
	w := m.Network.Layer(i)
	if i != 0 {
		return w
	}
	r, c := w.Dims()
	return mat.DenseCopyOf(w.Slice(0, r-1, 0, c))
}
