// Package network implements the fully-connected feed-forward network:
// its parameter layout, forward pass, backpropagation, and the on-disk
// model format. Ported from the original C engine's neuralnet.c, with the
// stack-allocated scratch buffers of that implementation replaced by
// heap-allocated, SIMD-aligned slices (see internal/simdops) and its
// process-wide state replaced by fields on *Network and *Layer.
package network

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/oysteijo/gosimdnn/activation"
	"github.com/oysteijo/gosimdnn/internal/simdops"
	"github.com/oysteijo/gosimdnn/loss"
)

// Layer holds one fully-connected layer's parameters and activation.
// Weight is stored row-major with shape [NIn, NOut]: row i holds the NOut
// weights fed by input unit i, matching vector_matrix_multiply's layout in
// the upstream engine (no transpose at forward time).
type Layer struct {
	NIn, NOut int
	Weight    []float32
	Bias      []float32
	Act       activation.Activation

	// derivativeOverride replaces Act.Derivative for this layer's backward
	// pass once SetLoss detects a fused loss/activation pair (sigmoid +
	// binary_crossentropy, softmax + categorical_crossentropy). nil means
	// "use Act.Derivative unmodified".
	derivativeOverride activation.DerivativeFunc
}

func (l *Layer) derivative() activation.DerivativeFunc {
	if l.derivativeOverride != nil {
		return l.derivativeOverride
	}
	return l.Act.Derivative
}

// Network is an ordered stack of layers sharing one loss function.
type Network struct {
	Layers  []*Layer
	Loss    loss.Loss
	hasLoss bool
}

// Create builds a Network with len(sizes)-1 layers. sizes[i] is the input
// width of layer i (and the output width of layer i-1); activationNames
// must have one entry per layer. Parameters are allocated but
// zero-valued — call Initialize before training or predicting.
func Create(sizes []int, activationNames []string) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("network: need at least 2 sizes (got %d)", len(sizes))
	}
	nLayers := len(sizes) - 1
	if len(activationNames) != nLayers {
		return nil, fmt.Errorf("network: %d layers need %d activation names, got %d",
			nLayers, nLayers, len(activationNames))
	}

	layers := make([]*Layer, nLayers)
	for i := 0; i < nLayers; i++ {
		nIn, nOut := sizes[i], sizes[i+1]
		if nIn <= 0 || nOut <= 0 {
			return nil, fmt.Errorf("network: layer %d has non-positive size (%d -> %d)", i, nIn, nOut)
		}
		act, err := activation.ByName(activationNames[i])
		if err != nil {
			return nil, fmt.Errorf("network: layer %d: %w", i, err)
		}
		layers[i] = &Layer{
			NIn:    nIn,
			NOut:   nOut,
			Weight: simdops.AlignedFloat32(nIn * nOut),
			Bias:   simdops.AlignedFloat32(nOut),
			Act:    act,
		}
	}
	return &Network{Layers: layers}, nil
}

// TotalParameters returns the flat parameter count: Σ (bias + weight) per
// layer, in the same bias-then-weight-per-layer order used by
// GetParameters, SetParameters, and Backpropagation's gradient layout.
func (n *Network) TotalParameters() int {
	total := 0
	for _, l := range n.Layers {
		total += l.NOut + l.NIn*l.NOut
	}
	return total
}

// GetParameters flattens every layer's bias then weight, in forward
// layer order, into a single slice.
func (n *Network) GetParameters() []float32 {
	out := simdops.AlignedFloat32(n.TotalParameters())
	ptr := 0
	for _, l := range n.Layers {
		ptr += copy(out[ptr:], l.Bias)
		ptr += copy(out[ptr:], l.Weight)
	}
	return out
}

// SetParameters writes params (in the same layout as GetParameters) back
// into the network's layers.
func (n *Network) SetParameters(params []float32) error {
	if len(params) != n.TotalParameters() {
		return fmt.Errorf("network: SetParameters got %d values, want %d", len(params), n.TotalParameters())
	}
	ptr := 0
	for _, l := range n.Layers {
		ptr += copy(l.Bias, params[ptr:])
		ptr += copy(l.Weight, params[ptr:])
	}
	return nil
}

// Update applies params += deltaW in place, in the bias-then-weight
// layout, exactly as the original engine's neuralnet_update.
func (n *Network) Update(deltaW []float32) {
	ptr := 0
	for _, l := range n.Layers {
		simdops.AccumulateUnaligned(l.Bias, deltaW[ptr:ptr+l.NOut])
		ptr += l.NOut
		simdops.AccumulateUnaligned(l.Weight, deltaW[ptr:ptr+l.NIn*l.NOut])
		ptr += l.NIn * l.NOut
	}
}

// Initialize fills every layer's weight and zeroes every bias. scheme
// selects the distribution: "xavier" draws uniform in
// ±√(6/(n_in+n_out)), suiting sigmoid/tanh/softmax/hard_sigmoid/softsign
// outputs; "kaiming" draws normal with σ=√(2/n_in), suiting relu/softplus;
// "auto" picks per layer from its activation name, falling back to a
// standard-normal draw (with a warning) for activations neither covers.
func (n *Network) Initialize(rng *rand.Rand, scheme string) error {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	for _, l := range n.Layers {
		s := scheme
		if s == "auto" {
			s = schemeForActivation(l.Act.Name)
		}
		if err := fillWeight(rng, s, l); err != nil {
			return err
		}
		for i := range l.Bias {
			l.Bias[i] = 0
		}
	}
	return nil
}

// schemeForActivation implements the "auto" mapping: kaiming for
// ReLU-like activations that grow without bound for positive input, xavier
// for the saturating S-shaped family, standard-normal for everything
// else (linear, exponential, unrecognized or plugin activations).
func schemeForActivation(name string) string {
	switch name {
	case "relu", "elu", "softplus":
		return "kaiming"
	case "sigmoid", "tanh", "softmax", "hard_sigmoid", "softsign":
		return "xavier"
	default:
		return "standard_normal"
	}
}

func fillWeight(rng *rand.Rand, scheme string, l *Layer) error {
	switch scheme {
	case "xavier":
		bound := float32(math.Sqrt(6.0 / float64(l.NIn+l.NOut)))
		for i := range l.Weight {
			l.Weight[i] = randomUniform(rng) * bound
		}
	case "kaiming":
		scale := float32(math.Sqrt(2.0 / float64(l.NIn)))
		fillNormal(rng, l.Weight, scale)
	case "standard_normal":
		fmt.Fprintf(os.Stderr, "network: warning: no xavier/kaiming mapping for activation %q, using standard normal\n", l.Act.Name)
		fillNormal(rng, l.Weight, 1.0)
	default:
		return fmt.Errorf("network: unknown initialization scheme %q", scheme)
	}
	return nil
}

// randomUniform draws from [-1, 1), matching the original engine's
// random_uniform (2*rand/RAND_MAX - 1).
func randomUniform(rng *rand.Rand) float32 {
	return float32(rng.Float64()*2 - 1)
}

// fillNormal draws len(dst) samples from a zero-mean normal distribution
// scaled by scale, using the Marsaglia polar method bootstrapped from
// randomUniform: two uniform draws in the unit disk are rejection-sampled
// and combined into a pair of independent standard-normal variates, one
// written immediately and the other cached for the next element of dst.
// The cache is local to one fillNormal call and does not carry over to
// the next call. This follows the original engine's random_normal rather than calling
// math/rand's NormFloat64, which uses the ziggurat algorithm instead.
func fillNormal(rng *rand.Rand, dst []float32, scale float32) {
	var cached float32
	haveCached := false
	for i := range dst {
		if haveCached {
			dst[i] = cached * scale
			haveCached = false
			continue
		}
		var u, v, s float32
		for {
			u = randomUniform(rng)
			v = randomUniform(rng)
			s = u*u + v*v
			if s < 1.0 && s > 0 {
				break
			}
		}
		fac := float32(math.Sqrt(-2.0 * math.Log(float64(s)) / float64(s)))
		dst[i] = u * fac * scale
		cached = v * fac
		haveCached = true
	}
}

// SetLoss assigns the network's loss function and rewrites the output
// layer's derivative when it detects one of the two numerically-fused
// pairs (sigmoid+binary_crossentropy, softmax+categorical_crossentropy):
// in both cases the loss gradient is already taken with respect to the
// pre-activation logits (ŷ-y for categorical_crossentropy, (ŷ-y)/n for
// binary_crossentropy), so the activation's own derivative must not be
// applied again.
func (n *Network) SetLoss(name string) error {
	l, err := loss.ByName(name)
	if err != nil {
		return err
	}
	n.Loss = l
	n.hasLoss = true

	if len(n.Layers) == 0 {
		return nil
	}
	output := n.Layers[len(n.Layers)-1]
	output.derivativeOverride = nil

	switch l.Name {
	case "binary_crossentropy":
		if output.Act.Name != "sigmoid" {
			return fmt.Errorf("network: binary_crossentropy expects a sigmoid output layer, got %q", output.Act.Name)
		}
		output.derivativeOverride = noopDerivative
	case "categorical_crossentropy":
		if output.Act.Name != "softmax" {
			return fmt.Errorf("network: categorical_crossentropy expects a softmax output layer, got %q", output.Act.Name)
		}
		output.derivativeOverride = noopDerivative
	default:
		if output.Act.Name == "softmax" {
			return fmt.Errorf("network: softmax output layer expects categorical_crossentropy loss, got %q", l.Name)
		}
	}
	return nil
}

// HasLoss reports whether SetLoss has been called. Predict works without
// it; Backpropagation does not.
func (n *Network) HasLoss() bool {
	return n.hasLoss
}

func noopDerivative(_, _ []float32) {}
