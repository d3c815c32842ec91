package network

import (
	"math/rand"
	"testing"
)

func TestPredictRejectsWrongInputWidth(t *testing.T) {
	n, err := Create([]int{2, 2}, []string{"linear"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := n.Predict([]float32{1, 2, 3}); err == nil {
		t.Error("expected error for wrong input width")
	}
}

func TestPredictLinearIdentityWeights(t *testing.T) {
	n, err := Create([]int{2, 2}, []string{"linear"})
	if err != nil {
		t.Fatal(err)
	}
	l := n.Layers[0]
	// identity weight matrix, zero bias: output should equal input.
	l.Weight[0], l.Weight[1] = 1, 0
	l.Weight[2], l.Weight[3] = 0, 1

	out, err := n.Predict([]float32{3, -2})
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(out[0], 3) || !approxEqual(out[1], -2) {
		t.Fatalf("got %v, want [3 -2]", out)
	}
}

func TestPredictBatchMatchesPerSamplePredict(t *testing.T) {
	n, err := Create([]int{4, 5, 3}, []string{"relu", "sigmoid"})
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Initialize(rand.New(rand.NewSource(7)), "auto"); err != nil {
		t.Fatal(err)
	}

	const batchSize = 16
	x := make([]float32, batchSize*4)
	rng := rand.New(rand.NewSource(99))
	for i := range x {
		x[i] = float32(rng.NormFloat64())
	}

	batched, err := n.PredictBatch(x, batchSize)
	if err != nil {
		t.Fatal(err)
	}

	for b := 0; b < batchSize; b++ {
		single, err := n.Predict(x[b*4 : (b+1)*4])
		if err != nil {
			t.Fatal(err)
		}
		for j := 0; j < 3; j++ {
			if !approxEqual(batched[b*3+j], single[j]) {
				t.Fatalf("sample %d, output %d: batched=%v single=%v", b, j, batched[b*3+j], single[j])
			}
		}
	}
}

func TestPredictBatchRejectsWrongLength(t *testing.T) {
	n, err := Create([]int{2, 2}, []string{"linear"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := n.PredictBatch([]float32{1, 2, 3}, 2); err == nil {
		t.Error("expected error for malformed batch input")
	}
}

func TestBackpropagationRejectsWithoutLoss(t *testing.T) {
	n, err := Create([]int{2, 2}, []string{"linear"})
	if err != nil {
		t.Fatal(err)
	}
	grad := make([]float32, n.TotalParameters())
	if err := n.Backpropagation([]float32{1, 2}, []float32{1, 1}, grad); err == nil {
		t.Error("expected error when Backpropagation is called before SetLoss")
	}
}

func TestBackpropagationNumericalGradientCheck(t *testing.T) {
	n, err := Create([]int{3, 4, 1}, []string{"tanh", "linear"})
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Initialize(rand.New(rand.NewSource(3)), "auto"); err != nil {
		t.Fatal(err)
	}
	if err := n.SetLoss("mean_squared_error"); err != nil {
		t.Fatal(err)
	}

	input := []float32{0.3, -0.7, 0.1}
	target := []float32{0.2}

	grad := make([]float32, n.TotalParameters())
	if err := n.Backpropagation(input, target, grad); err != nil {
		t.Fatal(err)
	}

	lossAt := func() float32 {
		out, err := n.Predict(input)
		if err != nil {
			t.Fatal(err)
		}
		d := out[0] - target[0]
		return d * d
	}

	params := n.GetParameters()
	const eps = 1e-2
	// Spot-check a handful of parameter indices rather than the full
	// vector, since finite differences on float32 are noisy.
	indices := []int{0, 3, len(params) - 1}
	for _, idx := range indices {
		orig := params[idx]

		params[idx] = orig + eps
		if err := n.SetParameters(params); err != nil {
			t.Fatal(err)
		}
		plus := lossAt()

		params[idx] = orig - eps
		if err := n.SetParameters(params); err != nil {
			t.Fatal(err)
		}
		minus := lossAt()

		params[idx] = orig
		if err := n.SetParameters(params); err != nil {
			t.Fatal(err)
		}

		numerical := (plus - minus) / (2 * eps)
		analytical := grad[idx]
		diff := numerical - analytical
		if diff < 0 {
			diff = -diff
		}
		if diff > 0.2 {
			t.Errorf("param %d: numerical gradient %v, analytical %v (diff %v)", idx, numerical, analytical, diff)
		}
	}
}
