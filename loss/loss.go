// Package loss implements the gradient kernels used by backpropagation.
// These are not scalar loss values — see package metric for that — but the
// derivative of the loss with respect to the output layer's activation,
// ready to seed the backward pass.
package loss

import (
	"fmt"
	"math"
)

// GradientFunc writes d(loss)/d(yPred) into grad, given predictions and
// targets of length n.
type GradientFunc func(yPred, yTrue, grad []float32)

// Loss is a named loss function.
type Loss struct {
	Name     string
	Gradient GradientFunc
}

var registry = map[string]Loss{
	"mean_squared_error":             {Name: "mean_squared_error", Gradient: meanSquaredError},
	"mse":                            {Name: "mean_squared_error", Gradient: meanSquaredError},
	"mean_absolute_error":            {Name: "mean_absolute_error", Gradient: meanAbsoluteError},
	"mae":                            {Name: "mean_absolute_error", Gradient: meanAbsoluteError},
	"mean_absolute_percentage_error": {Name: "mean_absolute_percentage_error", Gradient: meanAbsolutePercentageError},
	"mape":                           {Name: "mean_absolute_percentage_error", Gradient: meanAbsolutePercentageError},
	"binary_crossentropy":            {Name: "binary_crossentropy", Gradient: binaryCrossentropy},
	"categorical_crossentropy":       {Name: "categorical_crossentropy", Gradient: categoricalCrossentropy},
}

// ByName looks up a registered loss by name or alias.
func ByName(name string) (Loss, error) {
	l, ok := registry[name]
	if !ok {
		return Loss{}, fmt.Errorf("loss: unknown loss function %q", name)
	}
	return l, nil
}

func meanSquaredError(yPred, yTrue, grad []float32) {
	n := float32(len(yPred))
	for i := range yPred {
		grad[i] = 2 * (yPred[i] - yTrue[i]) / n
	}
}

func meanAbsoluteError(yPred, yTrue, grad []float32) {
	n := float32(len(yPred))
	for i := range yPred {
		if yPred[i] >= yTrue[i] {
			grad[i] = 1 / n
		} else {
			grad[i] = -1 / n
		}
	}
}

func meanAbsolutePercentageError(yPred, yTrue, grad []float32) {
	n := float32(len(yPred))
	for i := range yPred {
		denom := float32(math.Abs(float64(yTrue[i])))
		if denom < 1e-7 {
			denom = 1e-7
		}
		if yPred[i] >= yTrue[i] {
			grad[i] = 100 / (denom * n)
		} else {
			grad[i] = -100 / (denom * n)
		}
	}
}

// binaryCrossentropy includes the 1/n factor because, unlike
// categoricalCrossentropy, it is not always paired with a softmax whose
// own derivative absorbs the normalization.
func binaryCrossentropy(yPred, yTrue, grad []float32) {
	n := float32(len(yPred))
	for i := range yPred {
		grad[i] = (yPred[i] - yTrue[i]) / n
	}
}

// categoricalCrossentropy deliberately omits the 1/n factor: fused with a
// softmax output layer (the only supported pairing), the exact gradient of
// the mean categorical cross-entropy w.r.t. the pre-softmax logits is
// ŷ-y, with no additional scaling.
func categoricalCrossentropy(yPred, yTrue, grad []float32) {
	for i := range yPred {
		grad[i] = yPred[i] - yTrue[i]
	}
}
