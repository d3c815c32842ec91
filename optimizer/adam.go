package optimizer

import (
	"math"
	"sync"

	"github.com/oysteijo/gosimdnn/internal/simdops"
	"github.com/oysteijo/gosimdnn/network"
)

const adamEpsilon = 1e-8

// Adam implements the Adam optimizer, with decoupled weight decay
// (AdamW) when WeightDecay > 0. Ported from adam.c. beta1Corrected and
// beta2Corrected are instance fields rather than the original's
// process-wide static bias-correction products, so that two Adam
// optimizers training two different networks never share state.
type Adam struct {
	LR          float32
	Rho1        float32 // beta1, first-moment decay
	Rho2        float32 // beta2, second-moment decay
	WeightDecay float32 // > 0 selects AdamW's decoupled decay

	s, r                           []float32
	beta1Corrected, beta2Corrected float64
}

func (a *Adam) PreBatch(net *network.Network) {}

func (a *Adam) Step(net *network.Network, gradient []float32) {
	n := len(gradient)
	if a.s == nil {
		a.s = make([]float32, n)
		a.r = make([]float32, n)
		a.beta1Corrected = 1
		a.beta2Corrected = 1
	}

	g2 := make([]float32, n)
	simdops.SquareElements(g2, gradient)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		simdops.Saxpby(a.s, 1-a.Rho1, gradient, a.Rho1)
	}()
	go func() {
		defer wg.Done()
		simdops.Saxpby(a.r, 1-a.Rho2, g2, a.Rho2)
	}()
	wg.Wait()

	a.beta1Corrected *= float64(a.Rho1)
	a.beta2Corrected *= float64(a.Rho2)
	sCorrection := float32(1 - a.beta1Corrected)
	rCorrection := float32(1 - a.beta2Corrected)

	delta := make([]float32, n)
	for i := range delta {
		sHat := a.s[i] / sCorrection
		rHat := a.r[i] / rCorrection
		delta[i] = -a.LR * sHat / (float32(math.Sqrt(float64(rHat))) + adamEpsilon)
	}

	if a.WeightDecay > 0 {
		simdops.Saxpy(delta, -a.WeightDecay, net.GetParameters())
	}

	net.Update(delta)
}
