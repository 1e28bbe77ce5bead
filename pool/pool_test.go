// ABOUTME: Tests for the worker pool submit-and-wait lifecycle
// ABOUTME: Validates batch completion and reuse across batches

package pool

import (
	"sync/atomic"
	"testing"
)

func TestPoolRunsAllTasks(t *testing.T) {
	p := New(4)
	defer p.Close()

	var counter atomic.Int64

	for range 100 {
		p.Submit(func() { counter.Add(1) })
	}

	p.Wait()

	if got := counter.Load(); got != 100 {
		t.Errorf("Ran %d tasks, want 100", got)
	}
}

func TestPoolReusableAcrossBatches(t *testing.T) {
	p := New(2)
	defer p.Close()

	var counter atomic.Int64

	for batch := range 5 {
		for range 20 {
			p.Submit(func() { counter.Add(1) })
		}

		p.Wait()

		if got := counter.Load(); got != int64((batch+1)*20) {
			t.Fatalf("After batch %d: %d tasks done, want %d", batch, got, (batch+1)*20)
		}
	}
}

func TestPoolDefaultsWorkers(t *testing.T) {
	p := New(0)
	defer p.Close()

	if p.Workers() < 1 {
		t.Errorf("Worker count %d, want at least 1", p.Workers())
	}
}
