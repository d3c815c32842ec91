package network

import (
	"fmt"

	"github.com/oysteijo/gosimdnn/internal/simdops"
	"github.com/oysteijo/gosimdnn/internal/workerpool"
)

// Predict runs the forward pass for a single sample and returns a freshly
// allocated output slice. Ported from neuralnet_predict, minus the
// original's stack-VLA workspace (replaced by one heap allocation per
// layer on every call; Backpropagation runs the same forward pass and
// allocates the same way).
func (n *Network) Predict(input []float32) ([]float32, error) {
	if len(n.Layers) == 0 {
		return nil, fmt.Errorf("network: Predict on empty network")
	}
	if len(input) != n.Layers[0].NIn {
		return nil, fmt.Errorf("network: Predict input has %d features, want %d", len(input), n.Layers[0].NIn)
	}
	activations := n.forward(input)
	return activations[len(activations)-1], nil
}

// forward runs the layer stack and returns every layer's output
// (activations[0] is the input itself, activations[i+1] is layer i's
// post-activation output), needed by both Predict and Backpropagation.
func (n *Network) forward(input []float32) [][]float32 {
	activations := make([][]float32, len(n.Layers)+1)
	activations[0] = input
	for i, l := range n.Layers {
		out := simdops.AlignedFloat32(l.NOut)
		simdops.VectorMatrixMultiply(l.Weight, l.Bias, activations[i], out, l.NIn, l.NOut)
		l.Act.Apply(out)
		activations[i+1] = out
	}
	return activations
}

// PredictBatch runs Predict over batchSize stacked rows of x (row-major,
// batchSize x nIn) and returns batchSize x nOutLast stacked outputs.
// Samples are independent, so batches large enough to be worth the
// dispatch overhead are spread across a worker pool.
func (n *Network) PredictBatch(x []float32, batchSize int) ([]float32, error) {
	if len(n.Layers) == 0 {
		return nil, fmt.Errorf("network: PredictBatch on empty network")
	}
	nIn := n.Layers[0].NIn
	nOut := n.Layers[len(n.Layers)-1].NOut
	if len(x) != batchSize*nIn {
		return nil, fmt.Errorf("network: PredictBatch got %d values for batchSize=%d, nIn=%d", len(x), batchSize, nIn)
	}

	out := make([]float32, batchSize*nOut)

	const sequentialThreshold = 8
	if batchSize < sequentialThreshold {
		for b := 0; b < batchSize; b++ {
			row, err := n.Predict(x[b*nIn : (b+1)*nIn])
			if err != nil {
				return nil, err
			}
			copy(out[b*nOut:(b+1)*nOut], row)
		}
		return out, nil
	}

	pool := workerpool.New(0)
	defer pool.Close()

	var firstErr error
	pool.ParallelForAtomic(batchSize, func(b int) {
		row, err := n.Predict(x[b*nIn : (b+1)*nIn])
		if err != nil {
			firstErr = err
			return
		}
		copy(out[b*nOut:(b+1)*nOut], row)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Backpropagation computes the gradient of the network's loss with
// respect to every parameter for one (input, target) sample, writing it
// into grad using the bias-then-weight-per-layer layout described on
// TotalParameters. grad must have length TotalParameters().
//
// Ported from neuralnet_backpropagation: the forward pass is re-run to
// capture every layer's output (needed by the activation derivatives),
// then the loss gradient seeds a backward sweep that propagates through
// matrix_vector_multiply and accumulates each layer's weight gradient via
// the outer product of its input and its (already activation-derivative
// applied) output gradient.
func (n *Network) Backpropagation(input, target, grad []float32) error {
	if !n.hasLoss {
		return fmt.Errorf("network: Backpropagation called before SetLoss")
	}
	want := n.TotalParameters()
	if len(grad) != want {
		return fmt.Errorf("network: Backpropagation grad has length %d, want %d", len(grad), want)
	}
	for i := range grad {
		grad[i] = 0
	}

	activations := n.forward(input)

	nLayers := len(n.Layers)
	gradBias := make([][]float32, nLayers)
	gradWeight := make([][]float32, nLayers)
	ptr := 0
	for i, l := range n.Layers {
		gradBias[i] = grad[ptr : ptr+l.NOut]
		ptr += l.NOut
		gradWeight[i] = grad[ptr : ptr+l.NIn*l.NOut]
		ptr += l.NIn * l.NOut
	}

	output := activations[nLayers]
	n.Loss.Gradient(output, target, gradBias[nLayers-1])

	for layer := nLayers - 1; layer >= 0; layer-- {
		l := n.Layers[layer]
		if layer != nLayers-1 {
			next := n.Layers[layer+1]
			simdops.MatrixVectorMultiply(next.Weight, gradBias[layer+1], gradBias[layer], next.NIn, next.NOut)
		}
		l.derivative()(activations[layer+1], gradBias[layer])
		simdops.VectorVectorOuter(activations[layer], gradBias[layer], gradWeight[layer], l.NIn, l.NOut)
	}
	return nil
}
