package worker

import (
	"sync"
	"sync/atomic"

	perrors "phasher/pkg/errors"
	"phasher/pkg/logger"
)

// Job represents a single image path awaiting hashing
type Job struct {
	Path string
}

// Result represents a successfully computed hash ready to be written
type Result struct {
	Path string
	Hash uint64
}

// Hasher computes the perceptual hash for one image path
type Hasher interface {
	HashFile(path string) (uint64, error)
}

// Pool manages concurrent hash workers. Results flow through a bounded queue:
// a worker blocks when the queue is full, so memory stays bounded when
// hashing outpaces the writer.
type Pool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	hasher      Hasher
	logger      logger.Logger
	failed      atomic.Int64
	progress    func()
}

// NewPool creates a new hash worker pool with the given parallelism and
// result queue capacity
func NewPool(numWorkers, queueSize int, hasher Hasher, log logger.Logger) *Pool {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Pool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2), // Buffer size = 2x workers
		resultQueue: make(chan Result, queueSize),
		hasher:      hasher,
		logger:      log,
	}
}

// SetProgress registers fn to be called once per processed job, success or
// failure. Must be called before Start.
func (p *Pool) SetProgress(fn func()) {
	p.progress = fn
}

// Start launches all workers
func (p *Pool) Start() {
	p.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": p.numWorkers,
		"queue_size":  cap(p.resultQueue),
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit adds a new hash job to the queue, blocking while the queue is full
func (p *Pool) Submit(job Job) {
	p.jobQueue <- job
}

// Results returns the bounded result channel consumed by the writer
func (p *Pool) Results() <-chan Result {
	return p.resultQueue
}

// Stop signals that no more jobs will be submitted, waits for the workers to
// drain the queue, then closes the result channel so the consumer can finish
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)

	p.logger.Debug("Worker pool stopped")
}

// Failed returns the number of jobs that ended in a per-item error
func (p *Pool) Failed() int64 {
	return p.failed.Load()
}

// worker is the main worker routine
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.DebugWithFields("Worker started", map[string]interface{}{
		"worker_id": id,
	})

	for job := range p.jobQueue {
		hash, err := p.hasher.HashFile(job.Path)
		if err != nil {
			// Per-item failures are contained to this one path; the
			// writer and the other workers never see them
			p.failed.Add(1)
			p.logger.ErrorWithFields("Failed to hash image", map[string]interface{}{
				"worker_id": id,
				"path":      job.Path,
				"type":      string(perrors.TypeOf(err)),
				"error":     err.Error(),
			})
		} else {
			p.resultQueue <- Result{Path: job.Path, Hash: hash}
		}

		if p.progress != nil {
			p.progress()
		}
	}

	p.logger.DebugWithFields("Worker stopping - job queue closed", map[string]interface{}{
		"worker_id": id,
	})
}
