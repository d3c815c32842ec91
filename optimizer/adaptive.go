package optimizer

import "math"

// adaptiveEpsilon sits outside the square root in computeUpdate, not
// inside it as in the textbook AdaGrad/RMSProp formulation. This matches
// adagrad.c/RMSprop.c's shared compute_update helper exactly; it is a
// deliberate departure that downstream numeric tests depend on, not a bug
// to "fix" toward the textbook form.
const adaptiveEpsilon = 1e-7

// computeUpdate returns delta = -lr/(epsilon+sqrt(r)) * gradient
// elementwise, the update rule shared by AdaGrad and RMSProp once each has
// built its own accumulator r.
func computeUpdate(lr float32, r, gradient []float32) []float32 {
	delta := make([]float32, len(gradient))
	for i := range gradient {
		delta[i] = -lr / (adaptiveEpsilon + float32(math.Sqrt(float64(r[i])))) * gradient[i]
	}
	return delta
}
