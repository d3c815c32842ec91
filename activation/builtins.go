package activation

import (
	stdmath "math"

	hwyactivation "github.com/ajroetker/go-highway/hwy/contrib/activation"
	hwymath "github.com/ajroetker/go-highway/hwy/contrib/math"
)

func linear([]float32) {}

func linearDerivative(_, _ []float32) {}

func relu(y []float32) {
	hwyactivation.BaseReLU(y, y)
}

func reluDerivative(a, grad []float32) {
	for i := range grad {
		if a[i] <= 0 {
			grad[i] = 0
		}
	}
}

func sigmoid(y []float32) {
	hwymath.BaseSigmoidPoly(y, y)
}

func sigmoidDerivative(a, grad []float32) {
	for i, v := range a {
		grad[i] *= v * (1 - v)
	}
}

func tanhAct(y []float32) {
	hwyactivation.BaseTanh(y, y)
}

func tanhDerivative(a, grad []float32) {
	for i, v := range a {
		grad[i] *= 1 - v*v
	}
}

// softmax applies the numerically-stable two-pass form: subtract the max
// before exponentiating, then normalize by the sum.
func softmax(y []float32) {
	if len(y) == 0 {
		return
	}
	maxVal := y[0]
	for _, v := range y[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	var sum float32
	for i, v := range y {
		e := float32(stdmath.Exp(float64(v - maxVal)))
		y[i] = e
		sum += e
	}
	for i := range y {
		y[i] /= sum
	}
}

// softmaxDerivative is intentionally empty: softmax is only ever used
// paired with categorical cross-entropy, and SetLoss rewrites this
// derivative to a no-op at that point anyway because the fused
// loss gradient already equals ŷ-y. Kept non-nil (rather than omitted)
// so an unfused softmax output layer still behaves (incorrectly, but not
// by crashing) instead of requiring a loss to be set first.
func softmaxDerivative(_, _ []float32) {}

func softplus(y []float32) {
	for i, v := range y {
		y[i] = float32(stdmath.Log(stdmath.Exp(float64(v)) + 1))
	}
}

func softplusDerivative(a, grad []float32) {
	for i, v := range a {
		x := float32(stdmath.Exp(float64(v)))
		grad[i] *= (x - 1) / x
	}
}

func softsign(y []float32) {
	for i, v := range y {
		y[i] = v / (float32(stdmath.Abs(float64(v))) + 1)
	}
}

func softsignDerivative(a, grad []float32) {
	for i, v := range a {
		x := v / (1 - float32(stdmath.Abs(float64(v))))
		denom := 1 + float32(stdmath.Abs(float64(x)))
		grad[i] *= 1 / (denom * denom)
	}
}

func hardSigmoid(y []float32) {
	for i, v := range y {
		switch {
		case v < -2.5:
			y[i] = 0
		case v > 2.5:
			y[i] = 1
		default:
			y[i] = 0.2*v + 0.5
		}
	}
}

func hardSigmoidDerivative(a, grad []float32) {
	for i, v := range a {
		if v <= 0 || v >= 1 {
			grad[i] = 0
		} else {
			grad[i] *= 0.2
		}
	}
}

func exponential(y []float32) {
	for i, v := range y {
		y[i] = float32(stdmath.Exp(float64(v)))
	}
}

func exponentialDerivative(a, grad []float32) {
	for i, v := range a {
		grad[i] *= v
	}
}

// elu extends the set beyond the distilled engine's final build list:
// activation.c's own doc comment names the full Keras activation surface
// it was aiming for and explicitly includes it, hwy ships a vectorized
// kernel, and (unlike gelu) its derivative is expressible purely in terms
// of the activation's own output, matching this package's derivative
// convention: elu(x) = exp(x)-1 for x<=0, so elu'(x) = elu(x)+1 there.
func elu(y []float32) {
	hwyactivation.BaseELU(y, y, float32(1.0))
}

func eluDerivative(a, grad []float32) {
	for i, v := range a {
		if v > 0 {
			continue
		}
		grad[i] *= v + 1
	}
}
