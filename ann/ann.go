// Copyright 2026 Strata ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ann provides the public API for the feed-forward neural-network
// training core.
//
// The package exposes:
//   - Model and Network: the parameter store contract and its default
//     in-memory implementation
//   - Run: the forward pass over a layered weight model
//   - LeastSquares, TiedAutoencoder, SoftmaxLogLikelihood: backpropagation
//     strategies producing Gradient containers
//   - Trainer: mini-batch training with a single weight update per batch
//
// Example:
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
//	grad := trainer.TrainMiniBatch(model, batch)
package ann

import (
	"github.com/strata-ml/strata/internal/ann"
)

// Activation identifies the activation function attached to a layer.
type Activation = ann.Activation

// Supported activation identifiers.
const (
	Identity = ann.Identity
	Sigmoid  = ann.Sigmoid
	Tanh     = ann.Tanh
	ReLU     = ann.ReLU
	Softmax  = ann.Softmax
)

// ScalarFunc is a single-input activation function and its derivative.
type ScalarFunc = ann.ScalarFunc

// Model is the parameter store the training core runs against.
type Model = ann.Model

// LayerSpec describes one layer of a Network.
type LayerSpec = ann.LayerSpec

// Network is the default in-memory Model implementation.
type Network = ann.Network

// NewNetwork builds a network from an ordered list of layer specs.
func NewNetwork(specs ...LayerSpec) (*Network, error) {
	return ann.NewNetwork(specs...)
}

// Example is one training pair: an input vector and its target vector.
type Example = ann.Example

// PostProcessor observes one layer's activations during a forward pass.
type PostProcessor = ann.PostProcessor

// ForwardPass holds the per-layer state of one forward run.
type ForwardPass = ann.ForwardPass

// Run computes the forward pass for one input vector. post may be nil.
func Run(m Model, input []float64, post *PostProcessor) *ForwardPass {
	return ann.Run(m, input, post)
}

// Gradient holds per-layer gradient matrices plus an optional gradient with
// respect to the network input.
type Gradient = ann.Gradient

// LeastSquares derives per-layer gradients for the squared-error loss.
func LeastSquares(m Model, ex Example, fw *ForwardPass) *Gradient {
	return ann.LeastSquares(m, ex, fw)
}

// TiedAutoencoder derives gradients for an autoencoder whose final two
// layers share one transposed weight matrix.
func TiedAutoencoder(m Model, ex Example, fw *ForwardPass) *Gradient {
	return ann.TiedAutoencoder(m, ex, fw)
}

// SoftmaxOptions configures SoftmaxLogLikelihood.
type SoftmaxOptions = ann.SoftmaxOptions

// SoftmaxLogLikelihood derives per-layer gradients for a log-likelihood
// loss over a softmax output layer, with optional L2 regularization.
func SoftmaxLogLikelihood(m Model, ex Example, fw *ForwardPass, opts SoftmaxOptions) *Gradient {
	return ann.SoftmaxLogLikelihood(m, ex, fw, opts)
}

// Strategy selects the backpropagation variant a Trainer runs.
type Strategy = ann.Strategy

// Supported training strategies.
const (
	StrategyLeastSquares         = ann.StrategyLeastSquares
	StrategyTiedAutoencoder      = ann.StrategyTiedAutoencoder
	StrategySoftmaxLogLikelihood = ann.StrategySoftmaxLogLikelihood
)

// TrainerConfig configures a Trainer.
type TrainerConfig = ann.TrainerConfig

// Trainer drives mini-batch training.
type Trainer = ann.Trainer

// NewTrainer creates a Trainer, applying defaults for zero-valued fields.
//
// Example:
//
//	trainer := ann.NewTrainer(ann.TrainerConfig{
//	    LearningRate: 0.05,
//	    Strategy:     ann.StrategySoftmaxLogLikelihood,
//	    L2:           []float64{0.001, 0.001},
//	})
func NewTrainer(config TrainerConfig) *Trainer {
	return ann.NewTrainer(config)
}

// SquaredError returns 0.5 * sum((target-output)^2).
func SquaredError(output, target []float64) float64 {
	return ann.SquaredError(output, target)
}

// LogLoss returns the negative log-likelihood of the target distribution
// under a softmax output.
func LogLoss(output, target []float64) float64 {
	return ann.LogLoss(output, target)
}
