// Package callback implements the epoch-boundary hooks invoked by a
// training loop after each optimizer.Base.RunEpoch call returns: console
// and file logging, early stopping, and checkpointing the best model seen
// so far. Ported from callback.h/logger.c/earlystopping.c/
// modelcheckpoint.c. The original engine called these from inside its
// epoch driver; its own comments note that decision was considered a
// mistake and that callbacks belonged in the caller's training loop
// instead, so here they are invoked by the caller after RunEpoch returns,
// not by package optimizer itself.
package callback

// Callback is run once per epoch with that epoch's metric results:
// metricNames names each training metric in order, results holds the
// training values followed by the validation values when hasValidation is
// true.
type Callback interface {
	Run(metricNames []string, results []float32, hasValidation bool) error
}

// monitorIndex resolves which slot of a combined train/validation results
// slice a callback should watch: an explicit non-negative index always
// wins, otherwise it is the first validation slot when validation data was
// given, else the first training slot. Shared by EarlyStopping and
// ModelCheckpoint, which both ported this exact rule from their C
// originals.
func monitorIndex(explicit, nMetrics int, hasValidation bool) int {
	if explicit >= 0 {
		return explicit
	}
	if hasValidation {
		return nMetrics
	}
	return 0
}
