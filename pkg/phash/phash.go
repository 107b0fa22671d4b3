package phash

import (
	"bytes"
	stderrors "errors"
	"image"
	"math/bits"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"

	perrors "phasher/pkg/errors"
)

const (
	// sampleSize is the edge length of the grid an image is resampled to
	// before the transform
	sampleSize = 32

	// blockSize is the edge length of the low-frequency coefficient block
	// that becomes the hash
	blockSize = 8

	// blockOffset skips the DC term and the first AC row and column
	blockOffset = 1
)

// Engine computes perceptual hashes using a basis matrix built once at
// construction and shared read-only by all callers
type Engine struct {
	fs   afero.Fs
	dct  [][]float64
	dctT [][]float64
}

// NewEngine creates an Engine reading image files from fs; a nil fs means the
// operating system filesystem
func NewEngine(fs afero.Fs) *Engine {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dct := dctMatrix(sampleSize)
	return &Engine{
		fs:   fs,
		dct:  dct,
		dctT: transpose(dct),
	}
}

// Hash computes the 64-bit perceptual hash of a decoded image. It is
// deterministic: identical pixel data always yields the identical hash.
func (e *Engine) Hash(img image.Image) uint64 {
	small := imaging.Resize(imaging.Grayscale(img), sampleSize, sampleSize, imaging.Lanczos)

	pixels := make([][]float64, sampleSize)
	for y := 0; y < sampleSize; y++ {
		row := make([]float64, sampleSize)
		for x := 0; x < sampleSize; x++ {
			// Grayscale output has R == G == B, so the red channel is
			// the gray value
			row[x] = float64(small.Pix[small.PixOffset(x, y)])
		}
		pixels[y] = row
	}

	coeffs := multiply(multiply(e.dct, pixels), e.dctT)

	// Flatten the low-frequency block row by row; the bit index of each
	// coefficient follows this same order
	flat := make([]float64, 0, blockSize*blockSize)
	for y := blockOffset; y < blockOffset+blockSize; y++ {
		flat = append(flat, coeffs[y][blockOffset:blockOffset+blockSize]...)
	}

	sorted := make([]float64, len(flat))
	copy(sorted, flat)
	sort.Float64s(sorted)
	median := (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2

	var hash uint64
	for i, v := range flat {
		if v >= median {
			hash |= 1 << uint(i)
		}
	}
	return hash
}

// HashFile reads, decodes and hashes the image at path. Failures are typed so
// that an unreadable file, an unrecognized format and a corrupt image are
// each attributable to the one offending path.
func (e *Engine) HashFile(path string) (uint64, error) {
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return 0, perrors.Wrap(perrors.ErrorTypeRead, path, "failed to read image", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		if stderrors.Is(err, image.ErrFormat) {
			return 0, perrors.Wrap(perrors.ErrorTypeFormat, path, "unrecognized image format", err)
		}
		return 0, perrors.Wrap(perrors.ErrorTypeDecode, path, "failed to decode image", err)
	}

	return e.Hash(img), nil
}

// Distance returns the Hamming distance between two hashes; visually similar
// images have a small distance
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
