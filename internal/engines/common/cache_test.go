package common

import (
	"sync"
	"testing"

	"github.com/toolcrib/vbwear/pkg/core"
	"github.com/toolcrib/vbwear/pkg/evaluator"
)

func TestFitnessCache(t *testing.T) {
	cache := NewFitnessCache()
	key := core.Individual{HiddenUnits: 12, LearningRate: 1e-3, Alpha: 1e-4}.Key()

	// Test Put and Get
	cache.Put(key, evaluator.Result{Fitness: 0.25})

	retrieved, ok := cache.Get(key)
	if !ok {
		t.Error("Expected result to be found in cache")
	}
	if retrieved.Fitness != 0.25 {
		t.Errorf("Expected Fitness 0.25, got %f", retrieved.Fitness)
	}

	_, ok = cache.Get("non-existent")
	if ok {
		t.Error("Expected non-existent item to not be found")
	}

	// First write wins
	cache.Put(key, evaluator.Result{Fitness: 9})
	if r, _ := cache.Get(key); r.Fitness != 0.25 {
		t.Errorf("Expected first result to be kept, got %f", r.Fitness)
	}

	hits, misses := cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("Expected 2 hits and 1 miss, got %d and %d", hits, misses)
	}

	// Test Concurrency
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Put(key, evaluator.Result{Fitness: 0.25})
			cache.Get(key)
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("Expected 1 cached individual, got %d", cache.Len())
	}
}

func TestFitnessCacheDistinguishesValues(t *testing.T) {
	cache := NewFitnessCache()
	a := core.Individual{HiddenUnits: 10, LearningRate: 0.001, Alpha: 0.0001}
	b := a
	b.LearningRate = 0.0010000000000000002

	cache.Put(a.Key(), evaluator.Result{Fitness: 1})
	if _, ok := cache.Get(b.Key()); ok {
		t.Error("Expected individuals differing in the last bit to have distinct keys")
	}
}
