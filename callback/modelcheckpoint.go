package callback

import (
	"fmt"

	"github.com/oysteijo/gosimdnn/network"
)

// ModelCheckpoint saves Net to Filename whenever the monitored metric
// improves. Ported from modelcheckpoint.c, with the same per-instance
// bestSoFar state as EarlyStopping in place of the original's
// process-wide statics.
type ModelCheckpoint struct {
	Net             *network.Network
	Filename        string
	MonitorIdx      int
	GreaterIsBetter bool

	bestSoFar   float32
	initialized bool
}

func (m *ModelCheckpoint) Run(metricNames []string, results []float32, hasValidation bool) error {
	idx := monitorIndex(m.MonitorIdx, len(metricNames), hasValidation)
	if idx >= len(results) {
		return fmt.Errorf("callback: ModelCheckpoint monitor index %d out of range (have %d results)", idx, len(results))
	}
	score := results[idx]

	improved := !m.initialized
	if m.initialized {
		if m.GreaterIsBetter {
			improved = score > m.bestSoFar
		} else {
			improved = score < m.bestSoFar
		}
	}
	if !improved {
		return nil
	}
	m.bestSoFar = score
	m.initialized = true
	return m.Net.Save(m.Filename)
}
