package pipeline

import (
	"time"

	"phasher/internal/worker"
	"phasher/pkg/cache"
	"phasher/pkg/config"
	perrors "phasher/pkg/errors"
	"phasher/pkg/logger"
	"phasher/pkg/ui"
)

// Stats summarizes one pipeline run
type Stats struct {
	Candidates int           // paths in the input list, duplicates included
	Duplicates int           // repeated candidates collapsed away
	Cached     int           // candidates already committed in the checkpoint
	Hashed     int           // new entries appended this run
	Failed     int           // per-item failures, hashing or writing
	Duration   time.Duration // wall-clock time of the run
}

// Pipeline wires the candidate list, the hash workers and the checkpoint
// writer together for one run
type Pipeline struct {
	store  *cache.Store
	hasher worker.Hasher
	cfg    *config.Config
	log    logger.Logger
}

// New creates a pipeline over an opened checkpoint store and a hash engine
func New(store *cache.Store, hasher worker.Hasher, cfg *config.Config, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Pipeline{
		store:  store,
		hasher: hasher,
		cfg:    cfg,
		log:    log,
	}
}

// Run hashes every candidate that is not already committed to the checkpoint
// and appends the results as they complete
func (p *Pipeline) Run(candidates []string) (*Stats, error) {
	start := time.Now()
	stats := &Stats{Candidates: len(candidates)}

	// Set difference against the recovered checkpoint; duplicate candidates
	// collapse to one unit of work
	seen := make(map[string]struct{}, len(candidates))
	var work []string
	for _, path := range candidates {
		if _, dup := seen[path]; dup {
			stats.Duplicates++
			continue
		}
		seen[path] = struct{}{}

		if p.store.Contains(path) {
			stats.Cached++
			continue
		}
		work = append(work, path)
	}

	p.log.InfoWithFields("Work set computed", map[string]interface{}{
		"candidates": stats.Candidates,
		"duplicates": stats.Duplicates,
		"cached":     stats.Cached,
		"to_hash":    len(work),
	})

	if len(work) == 0 {
		stats.Duration = time.Since(start)
		return stats, nil
	}

	pool := worker.NewPool(p.cfg.Pipeline.Workers, p.cfg.Pipeline.QueueSize, p.hasher, p.log)

	if !p.cfg.Pipeline.Quiet {
		bar := ui.NewProgressBar(len(work), "hashing")
		pool.SetProgress(func() {
			_ = bar.Add(1)
		})
	}

	// The writer goroutine owns the checkpoint file for the whole run;
	// entries land in completion order
	writerDone := make(chan struct{})
	var written, refused int
	go func() {
		defer close(writerDone)
		for res := range pool.Results() {
			if err := p.store.Append(res.Path, res.Hash); err != nil {
				refused++
				if perrors.IsDelimiter(err) {
					p.log.WarnWithFields("Path contains tab or newline, it will be skipped", map[string]interface{}{
						"path": res.Path,
					})
				} else {
					p.log.ErrorWithFields("Failed to append checkpoint entry", map[string]interface{}{
						"path":  res.Path,
						"error": err.Error(),
					})
				}
				continue
			}
			written++
		}
	}()

	pool.Start()
	for _, path := range work {
		pool.Submit(worker.Job{Path: path})
	}
	pool.Stop()
	<-writerDone

	stats.Hashed = written
	stats.Failed = int(pool.Failed()) + refused
	stats.Duration = time.Since(start)

	p.log.InfoWithFields("Run completed", map[string]interface{}{
		"hashed":   stats.Hashed,
		"failed":   stats.Failed,
		"cached":   stats.Cached,
		"duration": stats.Duration,
	})

	return stats, nil
}
