// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestParallelForAccumulatesGradients(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 97 // odd size, exercises the ragged tail of a minibatch
	grads := make([]float64, n)

	pool.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			grads[i] = float64(i) * 2
		}
	})

	for i := 0; i < n; i++ {
		if grads[i] != float64(i)*2 {
			t.Errorf("grads[%d] = %v, want %v", i, grads[i], float64(i)*2)
		}
	}
}

func TestParallelForAtomicLoadBalances(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 100
	var touched atomic.Int32

	pool.ParallelForAtomic(n, func(i int) {
		touched.Add(1)
	})

	if int(touched.Load()) != n {
		t.Errorf("touched = %d, want %d", touched.Load(), n)
	}
}

func TestParallelForSingleWorkerIsSequential(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	var order []int
	pool.ParallelFor(5, func(start, end int) {
		for i := start; i < end; i++ {
			order = append(order, i)
		}
	})

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want sequential", order)
		}
	}
}

func TestClosedPoolFallsBackToSequential(t *testing.T) {
	pool := New(4)
	pool.Close()

	n := 10
	results := make([]int, n)
	pool.ParallelForAtomic(n, func(i int) {
		results[i] = i + 1
	})

	for i := 0; i < n; i++ {
		if results[i] != i+1 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i+1)
		}
	}
}
