package optimizer

import "testing"

func TestComputeUpdateEpsilonOutsideSqrt(t *testing.T) {
	r := []float32{4}
	gradient := []float32{2}
	got := computeUpdate(1.0, r, gradient)
	// -lr/(epsilon+sqrt(r)) * g = -1/(1e-7+2)*2
	want := float32(-1.0 / (adaptiveEpsilon + 2) * 2)
	if !approxEqual(got[0], want) {
		t.Errorf("got %v want %v", got[0], want)
	}
}

func TestAdaGradAccumulatesSquaredGradientWithoutDecay(t *testing.T) {
	net := newLinearTestNetwork(t)
	a := &AdaGrad{LR: 0.1}
	gradient := make([]float32, net.TotalParameters())
	for i := range gradient {
		gradient[i] = 2
	}

	a.Step(net, gradient)
	if len(a.r) == 0 {
		t.Fatal("expected r to be allocated after first step")
	}
	for _, v := range a.r {
		if !approxEqual(v, 4) {
			t.Errorf("got r=%v, want 4 after one step with g=2", v)
		}
	}

	a.Step(net, gradient)
	for _, v := range a.r {
		if !approxEqual(v, 8) {
			t.Errorf("got r=%v, want 8 after two steps with g=2 (plain accumulation)", v)
		}
	}
}
