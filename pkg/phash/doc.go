// Package phash computes 64-bit DCT-based perceptual hashes of images.
//
// An image is converted to grayscale, resampled to a 32x32 grid with a
// Lanczos filter, and transformed with a 2-D discrete cosine transform. The
// 8x8 block of low-frequency coefficients starting at row 1, column 1 (the DC
// term and first AC row/column carry brightness and aspect information and
// are skipped) is flattened row by row, and each bit of the hash records
// whether the corresponding coefficient is at or above the block's median.
//
// Visually similar images produce hashes with a small Hamming distance; use
// Distance to compare two hashes. Hashing is deterministic: identical decoded
// pixels always produce the identical hash.
package phash
