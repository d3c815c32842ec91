package optimizer

import (
	"github.com/oysteijo/gosimdnn/internal/simdops"
	"github.com/oysteijo/gosimdnn/network"
)

// SGD implements stochastic gradient descent with optional momentum,
// Nesterov lookahead, and a 1/(1+decay*t) learning rate schedule. Ported
// from SGD.c.
type SGD struct {
	LR       float32
	Decay    float32
	Momentum float32
	Nesterov bool

	velocity []float32
	step     int
}

// PreBatch decays the velocity by Momentum and, for Nesterov, applies it
// to the network immediately — the interim lookahead update that must
// happen before this batch's gradient is computed.
func (s *SGD) PreBatch(net *network.Network) {
	if s.Momentum <= 0 {
		return
	}
	if s.velocity == nil {
		s.velocity = make([]float32, net.TotalParameters())
	}
	simdops.Scale(s.velocity, s.Momentum)
	if s.Nesterov {
		net.Update(s.velocity)
	}
}

func (s *SGD) Step(net *network.Network, gradient []float32) {
	lr := s.LR
	if s.Decay > 0 {
		lr = s.LR / (1 + s.Decay*float32(s.step))
	}
	s.step++

	scaled := make([]float32, len(gradient))
	copy(scaled, gradient)
	simdops.Scale(scaled, -lr)

	if s.Momentum <= 0 {
		net.Update(scaled)
		return
	}

	if s.velocity == nil {
		s.velocity = make([]float32, net.TotalParameters())
	}
	simdops.Accumulate(s.velocity, scaled)

	if s.Nesterov {
		// PreBatch already applied the lookahead; apply only the raw
		// scaled gradient here to avoid double-counting velocity.
		net.Update(scaled)
		return
	}
	net.Update(s.velocity)
}
