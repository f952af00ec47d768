package ann

import (
	"fmt"
	"math"
)

// SquaredError returns the squared-error loss 0.5 * sum((target-output)^2),
// the quantity LeastSquares descends on. Useful for progress reporting.
func SquaredError(output, target []float64) float64 {
	if len(target) != len(output) {
		panic(fmt.Sprintf("ann: target length %d does not match output length %d", len(target), len(output)))
	}
	var loss float64
	for i := range output {
		d := target[i] - output[i]
		loss += d * d
	}
	return 0.5 * loss
}

// LogLoss returns the negative log-likelihood of the target distribution
// under a softmax output, the quantity SoftmaxLogLikelihood descends on.
// Probabilities are clamped away from zero so a confident miss stays finite.
func LogLoss(output, target []float64) float64 {
	if len(target) != len(output) {
		panic(fmt.Sprintf("ann: target length %d does not match output length %d", len(target), len(output)))
	}
	var loss float64
	for i := range output {
		if target[i] == 0 {
			continue
		}
		p := output[i]
		if p < 1e-15 {
			p = 1e-15
		}
		loss -= target[i] * math.Log(p)
	}
	return loss
}
