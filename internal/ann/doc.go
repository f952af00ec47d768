// Package ann implements the training core of a feed-forward neural-network
// library: forward activation through a layered weight model and reverse-mode
// gradient computation under three loss variants.
//
// This package provides:
//   - Model: the parameter-store contract the core runs against, with
//     Network as the default in-memory implementation
//   - Run: the forward pass, producing per-layer pre-activation sums and
//     activated outputs
//   - LeastSquares, TiedAutoencoder, SoftmaxLogLikelihood: interchangeable
//     backpropagation strategies producing per-layer Gradient containers
//   - Trainer: mini-batch orchestration with a single weight update per batch
//
// Every layer is implicitly biased: a constant 1 is appended to its input
// before multiplication, and the last row of its weight matrix holds the
// bias terms. The error signal threaded backward through the layers is the
// residual target - output, so Model.Update adds lr * gradient.
//
// Example usage:
//
//	model, err := ann.NewNetwork(
//	    ann.LayerSpec{In: 2, Out: 2, Activation: ann.Sigmoid},
//	    ann.LayerSpec{In: 2, Out: 1, Activation: ann.Identity},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	trainer := ann.NewTrainer(ann.TrainerConfig{LearningRate: 0.1})
//	for epoch := 0; epoch < epochs; epoch++ {
//	    trainer.TrainMiniBatch(model, batch)
//	}
//
// All shape and precondition violations are programming-contract violations
// and panic; there are no transient or recoverable errors in this core.
package ann
