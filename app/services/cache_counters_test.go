package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheCounters_Concurrent(t *testing.T) {
	var counters cacheCounters

	const workers = 32
	const perWorker = 500

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				counters.hit()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				counters.miss()
			}
		}()
	}
	wg.Wait()

	hits, misses, hitRate := counters.snapshot()
	assert.Equal(t, int64(workers*perWorker), hits)
	assert.Equal(t, int64(workers*perWorker), misses)
	assert.InDelta(t, 0.5, hitRate, 1e-9)
}

func TestCacheCounters_EmptyRate(t *testing.T) {
	var counters cacheCounters

	hits, misses, hitRate := counters.snapshot()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Zero(t, hitRate)
}
