// Package cache implements the resumable checkpoint file for computed hashes.
//
// The checkpoint file doubles as the program's output: one UTF-8 text line per
// image, "<path>\t<hash>\n", with the hash rendered as a base-10 unsigned
// 64-bit integer. A line is committed only once it is fully terminated by a
// newline and splits into exactly two tab-separated fields.
//
// Opening the store scans the file from the start and recovers every committed
// line into an in-memory map. Scanning stops at the first line that is
// unterminated, malformed, or whose hash field does not parse; such a line is
// the expected artifact of a crash mid-write and is silently discarded by
// repositioning the write cursor after the last committed line. Subsequent
// appends overwrite the discarded tail.
//
// Appends are flushed to durable storage one entry at a time, so a crash loses
// at most the single in-flight entry and never an already-written one.
//
// The store is not safe for concurrent appends; the pipeline funnels all
// writes through a single writer goroutine.
package cache
