package optimizer

import (
	"math/rand"
	"testing"

	"github.com/oysteijo/gosimdnn/network"
)

// newLinearTestNetwork builds a tiny 2-in/2-out linear network with
// mean_squared_error loss, parameters zero-initialized, for exact-value
// optimizer step assertions.
func newLinearTestNetwork(t *testing.T) *network.Network {
	t.Helper()
	n, err := network.Create([]int{2, 2}, []string{"linear"})
	if err != nil {
		t.Fatal(err)
	}
	if err := n.SetLoss("mean_squared_error"); err != nil {
		t.Fatal(err)
	}
	return n
}

// newTrainableNetwork builds a slightly larger network suitable for
// running several epochs and observing the loss decrease.
func newTrainableNetwork(t *testing.T, seed int64) *network.Network {
	t.Helper()
	n, err := network.Create([]int{4, 6, 1}, []string{"tanh", "linear"})
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Initialize(rand.New(rand.NewSource(seed)), "auto"); err != nil {
		t.Fatal(err)
	}
	if err := n.SetLoss("mean_squared_error"); err != nil {
		t.Fatal(err)
	}
	return n
}

// newNoLossNetwork builds a network with no loss assigned, for exercising
// RunEpoch's sanity-check error path.
func newNoLossNetwork(t *testing.T) (*network.Network, error) {
	t.Helper()
	return network.Create([]int{4, 1}, []string{"linear"})
}

// syntheticDataset builds a small regression dataset y = sum(x) for
// nSamples rows of nIn features, deterministic given seed.
func syntheticDataset(nSamples, nIn int, seed int64) (x, y []float32) {
	rng := rand.New(rand.NewSource(seed))
	x = make([]float32, nSamples*nIn)
	y = make([]float32, nSamples)
	for i := 0; i < nSamples; i++ {
		var sum float32
		for j := 0; j < nIn; j++ {
			v := float32(rng.NormFloat64())
			x[i*nIn+j] = v
			sum += v
		}
		y[i] = sum
	}
	return x, y
}
