package optimizer

import (
	"github.com/oysteijo/gosimdnn/internal/simdops"
	"github.com/oysteijo/gosimdnn/network"
)

// RMSProp decays the squared-gradient accumulator by Rho instead of
// summing it forever like AdaGrad, with the same optional momentum and
// Nesterov lookahead as SGD layered on top of the adaptive update. Ported
// from RMSprop.c.
type RMSProp struct {
	LR       float32
	Rho      float32 // second-moment decay, typically 0.9
	Momentum float32
	Nesterov bool

	r        []float32
	velocity []float32
}

func (o *RMSProp) PreBatch(net *network.Network) {
	if o.Momentum <= 0 {
		return
	}
	if o.velocity == nil {
		o.velocity = make([]float32, net.TotalParameters())
	}
	simdops.Scale(o.velocity, o.Momentum)
	if o.Nesterov {
		net.Update(o.velocity)
	}
}

func (o *RMSProp) Step(net *network.Network, gradient []float32) {
	if o.r == nil {
		o.r = make([]float32, len(gradient))
	}
	g2 := make([]float32, len(gradient))
	simdops.SquareElements(g2, gradient)
	simdops.Saxpby(o.r, 1-o.Rho, g2, o.Rho)

	delta := computeUpdate(o.LR, o.r, gradient)

	if o.Momentum <= 0 {
		net.Update(delta)
		return
	}
	if o.velocity == nil {
		o.velocity = make([]float32, net.TotalParameters())
	}
	simdops.Accumulate(o.velocity, delta)
	if o.Nesterov {
		net.Update(delta)
		return
	}
	net.Update(o.velocity)
}
