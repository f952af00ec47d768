package ann

import "fmt"

// Strategy selects the backpropagation variant a Trainer runs.
type Strategy int

// Supported training strategies.
const (
	StrategyLeastSquares Strategy = iota
	StrategyTiedAutoencoder
	StrategySoftmaxLogLikelihood
)

// String returns the strategy's name.
func (s Strategy) String() string {
	switch s {
	case StrategyLeastSquares:
		return "least-squares"
	case StrategyTiedAutoencoder:
		return "tied-autoencoder"
	case StrategySoftmaxLogLikelihood:
		return "softmax-log-likelihood"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// TrainerConfig configures a Trainer.
type TrainerConfig struct {
	// LearningRate scales the aggregate mini-batch gradient when it is
	// applied to the model (default: 0.1).
	LearningRate float64

	// Strategy selects the backpropagation variant
	// (default: StrategyLeastSquares).
	Strategy Strategy

	// L2 holds per-layer weight-decay coefficients, forwarded to the
	// softmax log-likelihood strategy. Ignored by the other strategies.
	L2 []float64
}

// Trainer drives forward and backward passes over mini-batches and applies
// the summed gradient to the model.
//
// Example:
//
//	trainer := ann.NewTrainer(ann.TrainerConfig{
//	    LearningRate: 0.1,
//	    Strategy:     ann.StrategyLeastSquares,
//	})
//	grad := trainer.TrainMiniBatch(model, batch)
type Trainer struct {
	config TrainerConfig
}

// NewTrainer creates a Trainer, applying defaults for zero-valued fields.
func NewTrainer(config TrainerConfig) *Trainer {
	if config.LearningRate == 0 {
		config.LearningRate = 0.1
	}
	return &Trainer{config: config}
}

// TrainMiniBatch runs one forward and backward pass per example, in input
// order, folds the per-example gradients into a single aggregate by
// addition, and applies the aggregate to the model exactly once at the
// configured learning rate.
//
// The aggregate gradient is returned for diagnostics. An empty batch is a
// contract violation and panics.
func (t *Trainer) TrainMiniBatch(m Model, batch []Example) *Gradient {
	if len(batch) == 0 {
		panic("ann: cannot train on an empty mini-batch")
	}

	var total *Gradient
	for _, ex := range batch {
		fw := Run(m, ex.Input, nil)
		g := t.backpropagate(m, ex, fw)
		if total == nil {
			total = g
		} else {
			total.Merge(g)
		}
	}

	m.Update(total, t.config.LearningRate)
	return total
}

func (t *Trainer) backpropagate(m Model, ex Example, fw *ForwardPass) *Gradient {
	switch t.config.Strategy {
	case StrategyLeastSquares:
		return LeastSquares(m, ex, fw)
	case StrategyTiedAutoencoder:
		return TiedAutoencoder(m, ex, fw)
	case StrategySoftmaxLogLikelihood:
		return SoftmaxLogLikelihood(m, ex, fw, SoftmaxOptions{L2: t.config.L2})
	}
	panic(fmt.Sprintf("ann: unknown training strategy %d", int(t.config.Strategy)))
}
