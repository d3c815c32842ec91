// Package metric implements the scalar reporting metrics used by the
// callback and logging framework. Unlike package loss, these return a
// single float32 and are never used inside backpropagation.
package metric

import (
	"fmt"
	stdmath "math"
)

// Func reduces predictions and targets of length n to a scalar score.
type Func func(yPred, yTrue []float32) float32

// Metric is a named metric function.
type Metric struct {
	Name string
	Eval Func
}

const epsilon = 1.0e-7

var registry = map[string]Metric{
	"mean_squared_error":             {Name: "mean_squared_error", Eval: meanSquaredError},
	"mse":                            {Name: "mean_squared_error", Eval: meanSquaredError},
	"mean_absolute_error":            {Name: "mean_absolute_error", Eval: meanAbsoluteError},
	"mae":                            {Name: "mean_absolute_error", Eval: meanAbsoluteError},
	"mean_absolute_percentage_error": {Name: "mean_absolute_percentage_error", Eval: meanAbsolutePercentageError},
	"mape":                           {Name: "mean_absolute_percentage_error", Eval: meanAbsolutePercentageError},
	"binary_crossentropy":            {Name: "binary_crossentropy", Eval: binaryCrossentropy},
	"categorical_crossentropy":       {Name: "categorical_crossentropy", Eval: categoricalCrossentropy},
}

// ByName looks up a registered metric by name or alias.
func ByName(name string) (Metric, error) {
	m, ok := registry[name]
	if !ok {
		return Metric{}, fmt.Errorf("metric: unknown metric %q", name)
	}
	return m, nil
}

// ForLoss returns the metric matching a loss function's name, used by the
// optimizer's default-metrics sanity check when none are configured.
func ForLoss(lossName string) (Metric, error) {
	return ByName(lossName)
}

func meanSquaredError(yPred, yTrue []float32) float32 {
	var sum float32
	for i := range yPred {
		d := yPred[i] - yTrue[i]
		sum += d * d
	}
	return sum / float32(len(yPred))
}

func meanAbsoluteError(yPred, yTrue []float32) float32 {
	var sum float32
	for i := range yPred {
		sum += float32(stdmath.Abs(float64(yTrue[i] - yPred[i])))
	}
	return sum / float32(len(yPred))
}

func meanAbsolutePercentageError(yPred, yTrue []float32) float32 {
	var sum float32
	for i := range yPred {
		denom := yTrue[i]
		if denom < epsilon {
			denom = epsilon
		}
		sum += float32(stdmath.Abs(float64((yTrue[i] - yPred[i]) / denom)))
	}
	return 100 * sum / float32(len(yPred))
}

func clip(v float32) float32 {
	if v < epsilon {
		return epsilon
	}
	if v > 1-epsilon {
		return 1 - epsilon
	}
	return v
}

func binaryCrossentropy(yPred, yTrue []float32) float32 {
	var sum float32
	for i := range yPred {
		p := clip(yPred[i])
		sum += yTrue[i]*float32(stdmath.Log(float64(p))) + (1-yTrue[i])*float32(stdmath.Log(float64(1-p)))
	}
	return -sum / float32(len(yPred))
}

func categoricalCrossentropy(yPred, yTrue []float32) float32 {
	var sum float32
	for i := range yPred {
		p := clip(yPred[i])
		sum += yTrue[i] * float32(stdmath.Log(float64(p)))
	}
	return -sum / float32(len(yPred))
}
