// Package pipeline connects the candidate path list, the hash worker pool
// and the checkpoint writer.
//
// Candidates already present in the checkpoint are filtered out with set
// semantics before any work is scheduled, so no path is hashed twice across
// runs. The remaining paths fan out over a fixed-size worker pool; results
// funnel through a bounded queue to a single writer goroutine that owns the
// checkpoint file, so the file is never mutated concurrently. The checkpoint
// line order is completion order, not input order; lookups are keyed by
// path rather than position.
//
// Per-item failures (unreadable file, unknown format, corrupt image, a path
// containing a reserved delimiter) are logged and skipped; they never affect
// other workers, the writer, or the run's outcome.
package pipeline
