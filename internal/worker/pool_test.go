package worker

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	perrors "phasher/pkg/errors"
	"phasher/pkg/logger"
)

// MockHasher is a mock implementation of the Hasher interface
type MockHasher struct {
	hashDelay   time.Duration
	failing     map[string]bool
	hashCounter int32
}

func (m *MockHasher) HashFile(path string) (uint64, error) {
	atomic.AddInt32(&m.hashCounter, 1)
	if m.hashDelay > 0 {
		time.Sleep(m.hashDelay)
	}
	if m.failing[path] {
		return 0, perrors.New(perrors.ErrorTypeDecode, path, "mock decode failure")
	}
	return uint64(len(path)), nil
}

func (m *MockHasher) HashCount() int {
	return int(atomic.LoadInt32(&m.hashCounter))
}

func TestPoolHashesAllPaths(t *testing.T) {
	hasher := &MockHasher{}
	pool := NewPool(4, 8, hasher, logger.NewNopLogger())

	paths := make([]string, 50)
	for i := range paths {
		paths[i] = fmt.Sprintf("img-%03d.jpg", i)
	}

	resultsDone := make(chan map[string]uint64)
	go func() {
		results := make(map[string]uint64)
		for res := range pool.Results() {
			results[res.Path] = res.Hash
		}
		resultsDone <- results
	}()

	pool.Start()
	for _, path := range paths {
		pool.Submit(Job{Path: path})
	}
	pool.Stop()

	results := <-resultsDone

	if len(results) != len(paths) {
		t.Errorf("Expected %d results, got %d", len(paths), len(results))
	}
	for _, path := range paths {
		if _, ok := results[path]; !ok {
			t.Errorf("Missing result for %s", path)
		}
	}
	if hasher.HashCount() != len(paths) {
		t.Errorf("Expected %d hash calls, got %d", len(paths), hasher.HashCount())
	}
	if pool.Failed() != 0 {
		t.Errorf("Expected no failures, got %d", pool.Failed())
	}
}

func TestPoolContainsFailures(t *testing.T) {
	hasher := &MockHasher{
		failing: map[string]bool{
			"broken-1.jpg": true,
			"broken-2.jpg": true,
		},
	}
	pool := NewPool(3, 4, hasher, logger.NewNopLogger())

	paths := []string{"a.jpg", "broken-1.jpg", "b.jpg", "broken-2.jpg", "c.jpg"}

	resultsDone := make(chan map[string]uint64)
	go func() {
		results := make(map[string]uint64)
		for res := range pool.Results() {
			results[res.Path] = res.Hash
		}
		resultsDone <- results
	}()

	pool.Start()
	for _, path := range paths {
		pool.Submit(Job{Path: path})
	}
	pool.Stop()

	results := <-resultsDone

	// Failures never reach the result queue and never affect other jobs
	if len(results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(results))
	}
	for _, path := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if _, ok := results[path]; !ok {
			t.Errorf("Missing result for %s", path)
		}
	}
	for _, path := range []string{"broken-1.jpg", "broken-2.jpg"} {
		if _, ok := results[path]; ok {
			t.Errorf("Unexpected result for failing path %s", path)
		}
	}
	if pool.Failed() != 2 {
		t.Errorf("Expected 2 failures, got %d", pool.Failed())
	}
}

func TestPoolProgressCalledPerJob(t *testing.T) {
	hasher := &MockHasher{
		failing: map[string]bool{"broken.jpg": true},
	}
	pool := NewPool(2, 4, hasher, logger.NewNopLogger())

	var ticks int32
	pool.SetProgress(func() {
		atomic.AddInt32(&ticks, 1)
	})

	paths := []string{"a.jpg", "broken.jpg", "b.jpg", "c.jpg"}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range pool.Results() {
		}
	}()

	pool.Start()
	for _, path := range paths {
		pool.Submit(Job{Path: path})
	}
	pool.Stop()
	<-drained

	// Progress ticks for failures too
	if got := int(atomic.LoadInt32(&ticks)); got != len(paths) {
		t.Errorf("Expected %d progress ticks, got %d", len(paths), got)
	}
}

func TestPoolBackpressure(t *testing.T) {
	hasher := &MockHasher{}
	// Result queue of one forces workers to block on a slow consumer
	pool := NewPool(4, 1, hasher, logger.NewNopLogger())

	const jobs = 20

	resultsDone := make(chan int)
	go func() {
		count := 0
		for range pool.Results() {
			time.Sleep(time.Millisecond)
			count++
		}
		resultsDone <- count
	}()

	pool.Start()
	for i := 0; i < jobs; i++ {
		pool.Submit(Job{Path: fmt.Sprintf("img-%02d.jpg", i)})
	}
	pool.Stop()

	if count := <-resultsDone; count != jobs {
		t.Errorf("Expected %d results through the bounded queue, got %d", jobs, count)
	}
}
