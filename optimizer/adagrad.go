package optimizer

import (
	"github.com/oysteijo/gosimdnn/internal/simdops"
	"github.com/oysteijo/gosimdnn/network"
)

// AdaGrad accumulates the sum of squared gradients in r without decay,
// scaling the learning rate down per-parameter as r grows. Ported from
// adagrad.c.
type AdaGrad struct {
	LR float32

	r []float32
}

func (a *AdaGrad) PreBatch(net *network.Network) {}

func (a *AdaGrad) Step(net *network.Network, gradient []float32) {
	if a.r == nil {
		a.r = make([]float32, len(gradient))
	}
	g2 := make([]float32, len(gradient))
	simdops.SquareElements(g2, gradient)
	simdops.Accumulate(a.r, g2)

	net.Update(computeUpdate(a.LR, a.r, gradient))
}
