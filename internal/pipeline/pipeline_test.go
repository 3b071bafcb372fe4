package pipeline

import (
	"sync/atomic"
	"testing"
)

func TestMapPreservesOrder(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	results := Map(items, nil, func(v int) int { return v * 2 })

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	for i, r := range results {
		if r != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, r, i*2)
		}
	}
}

func TestMapEmpty(t *testing.T) {
	if got := Map(nil, nil, func(v int) int { return v }); got != nil {
		t.Errorf("Map(nil) = %v, want nil", got)
	}
}

func TestMapProgress(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var calls atomic.Int64
	var sawTotal atomic.Bool

	Map(items, func(current, total int) {
		calls.Add(1)
		if total != len(items) {
			t.Errorf("total = %d, want %d", total, len(items))
		}
		if current == total {
			sawTotal.Store(true)
		}
	}, func(v int) int { return v })

	if calls.Load() != int64(len(items)) {
		t.Errorf("progress called %d times, want %d", calls.Load(), len(items))
	}
	if !sawTotal.Load() {
		t.Error("progress never reported completion")
	}
}
