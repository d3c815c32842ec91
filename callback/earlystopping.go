package callback

import "fmt"

// EarlyStopping watches one metric slot across epochs and signals the
// caller to stop once it hasn't improved for more than Patience
// consecutive epochs. Ported from earlystopping.c. bestSoFar and
// epochsSinceImprovement are instance fields, not the original's
// process-wide statics, so two EarlyStopping callbacks training two
// different networks never share state; the improvement check itself
// uses an explicit "seen a score yet" flag rather than the original's
// FLT_MAX sentinel, which the original's own source flagged as producing
// a wrong first-epoch comparison under GreaterIsBetter.
type EarlyStopping struct {
	MonitorIdx      int // < 0 selects the default via monitorIndex
	GreaterIsBetter bool
	Patience        int

	bestSoFar              float32
	epochsSinceImprovement int
	initialized            bool
	stop                   bool
}

func (e *EarlyStopping) Run(metricNames []string, results []float32, hasValidation bool) error {
	idx := monitorIndex(e.MonitorIdx, len(metricNames), hasValidation)
	if idx >= len(results) {
		return fmt.Errorf("callback: EarlyStopping monitor index %d out of range (have %d results)", idx, len(results))
	}
	score := results[idx]

	improved := !e.initialized
	if e.initialized {
		if e.GreaterIsBetter {
			improved = score > e.bestSoFar
		} else {
			improved = score < e.bestSoFar
		}
	}

	if improved {
		e.bestSoFar = score
		e.epochsSinceImprovement = 0
		e.initialized = true
	} else {
		e.epochsSinceImprovement++
	}
	if e.epochsSinceImprovement > e.Patience {
		e.stop = true
	}
	return nil
}

// Stop reports whether training should halt. Poll it after every Run.
func (e *EarlyStopping) Stop() bool {
	return e.stop
}
