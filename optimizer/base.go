// Package optimizer implements the epoch driver shared by every gradient
// descent variant (package-level SGD, AdaGrad, RMSProp, Adam/AdamW types)
// plus the minibatch gradient computation they all sit on top of. Ported
// from optimizer.c/optimizer.h: Base plays the role of the original
// struct optimizer, and Stepper plays the role of the per-algorithm
// run_epoch function pointer the original engine dispatched through.
package optimizer

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/oysteijo/gosimdnn/internal/simdops"
	"github.com/oysteijo/gosimdnn/internal/workerpool"
	"github.com/oysteijo/gosimdnn/metric"
	"github.com/oysteijo/gosimdnn/network"
)

// Stepper applies one optimizer's parameter update rule. PreBatch runs
// before the batch gradient is computed, for optimizers (Nesterov
// momentum variants) that need to apply an interim lookahead update to the
// network first. Step is called afterward with the averaged batch
// gradient.
type Stepper interface {
	PreBatch(net *network.Network)
	Step(net *network.Network, gradient []float32)
}

// Base drives epochs over a dataset for any Stepper: shuffling, minibatch
// gradient accumulation (parallelized across a worker pool), and
// per-epoch metric evaluation on the training set and, if given, a
// validation set.
type Base struct {
	Net       *network.Network
	BatchSize int
	Shuffle   bool
	Metrics   []metric.Metric

	pool  *workerpool.Pool
	rng   *rand.Rand
	pivot []int
}

// NewBase constructs a Base bound to net. metricNames may be empty, in
// which case RunEpoch's first call auto-selects a single metric matching
// the network's loss function, mirroring optimizer_check_sanity.
func NewBase(net *network.Network, batchSize int, shuffle bool, metricNames []string, seed int64) (*Base, error) {
	if net == nil {
		return nil, fmt.Errorf("optimizer: network must not be nil")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("optimizer: batchSize must be positive, got %d", batchSize)
	}
	metrics := make([]metric.Metric, 0, len(metricNames))
	for _, name := range metricNames {
		m, err := metric.ByName(name)
		if err != nil {
			return nil, fmt.Errorf("optimizer: %w", err)
		}
		metrics = append(metrics, m)
	}
	return &Base{
		Net:       net,
		BatchSize: batchSize,
		Shuffle:   shuffle,
		Metrics:   metrics,
		pool:      workerpool.New(0),
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// Close releases the worker pool. Call once training is finished.
func (b *Base) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

func (b *Base) sanityCheck() error {
	if !b.Net.HasLoss() {
		return fmt.Errorf("optimizer: network has no loss set; call Network.SetLoss first")
	}
	if len(b.Metrics) == 0 {
		m, err := metric.ForLoss(b.Net.Loss.Name)
		if err != nil {
			return fmt.Errorf("optimizer: no metrics configured and %w", err)
		}
		b.Metrics = []metric.Metric{m}
	}
	return nil
}

// preparePivot (re)allocates the shuffle pivot and refills it with
// 0..n-1 only when the sample count changes, matching
// prepare_shuffle_pivot's static-size cache in the original engine, scoped
// to this Base instead of process-wide. The PRNG is seeded once by NewBase
// and is not reseeded here.
func (b *Base) preparePivot(n int) {
	if len(b.pivot) == n {
		return
	}
	b.pivot = make([]int, n)
	for i := range b.pivot {
		b.pivot[i] = i
	}
}

// fisherYatesShuffle shuffles b.pivot in place, descending from the last
// index, exactly as fisher_yates_shuffle in the original engine.
func (b *Base) fisherYatesShuffle() {
	for i := len(b.pivot) - 1; i >= 1; i-- {
		j := b.rng.Intn(i + 1)
		b.pivot[i], b.pivot[j] = b.pivot[j], b.pivot[i]
	}
}

// RunEpoch runs one epoch over (x, y) — nSamples rows, laid out row-major
// by the network's input and output widths — against stepper, then
// evaluates every configured metric on the training set and, if valX/valY
// are non-nil, on the validation set too. The returned slice holds the
// training metrics first, followed by the validation metrics when
// present; hasValidation reports whether the second half is populated.
// Ported from optimizer_run_epoch: callbacks are deliberately not invoked
// here, matching the original's decision (recorded in its own comments)
// to call them from the training loop instead of from inside RunEpoch.
func (b *Base) RunEpoch(stepper Stepper, x, y []float32, nSamples int, valX, valY []float32, nValSamples int) ([]float32, bool, error) {
	if err := b.sanityCheck(); err != nil {
		return nil, false, err
	}
	if len(b.Net.Layers) == 0 {
		return nil, false, fmt.Errorf("optimizer: network has no layers")
	}

	b.preparePivot(nSamples)
	if b.Shuffle {
		b.fisherYatesShuffle()
	}

	nIn := b.Net.Layers[0].NIn
	nOut := b.Net.Layers[len(b.Net.Layers)-1].NOut

	for start := 0; start < nSamples; start += b.BatchSize {
		end := min(start+b.BatchSize, nSamples)
		indices := b.pivot[start:end]

		stepper.PreBatch(b.Net)
		gradient := b.calcBatchGradient(x, y, nIn, nOut, indices)
		stepper.Step(b.Net, gradient)
	}

	trainResults := b.evaluate(x, y, nSamples, nIn, nOut)
	hasValidation := valX != nil && nValSamples > 0
	if !hasValidation {
		return trainResults, false, nil
	}
	valResults := b.evaluate(valX, valY, nValSamples, nIn, nOut)
	return append(trainResults, valResults...), true, nil
}

// calcBatchGradient backpropagates every sample named by indices and
// returns their mean gradient. Samples are split into contiguous chunks
// run across the worker pool, each chunk accumulating into its own local
// buffer before a single reduction into the shared total — avoiding the
// thread-local alignment padding the original C engine needed, since Go
// goroutines share no SIMD register state across calls.
func (b *Base) calcBatchGradient(x, y []float32, nIn, nOut int, indices []int) []float32 {
	total := b.Net.TotalParameters()
	acc := make([]float32, total)
	var mu sync.Mutex

	b.pool.ParallelFor(len(indices), func(start, end int) {
		local := make([]float32, total)
		grad := make([]float32, total)
		for i := start; i < end; i++ {
			idx := indices[i]
			sample := x[idx*nIn : (idx+1)*nIn]
			target := y[idx*nOut : (idx+1)*nOut]
			if err := b.Net.Backpropagation(sample, target, grad); err != nil {
				continue
			}
			simdops.AccumulateUnaligned(local, grad)
		}
		mu.Lock()
		simdops.AccumulateUnaligned(acc, local)
		mu.Unlock()
	})

	simdops.DivideByScalar(acc, float32(len(indices)))
	return acc
}

func (b *Base) evaluate(x, y []float32, nSamples, nIn, nOut int) []float32 {
	preds, err := b.Net.PredictBatch(x, nSamples)
	if err != nil {
		preds = make([]float32, nSamples*nOut)
	}
	results := make([]float32, len(b.Metrics))
	for i, m := range b.Metrics {
		results[i] = m.Eval(preds, y)
	}
	return results
}
