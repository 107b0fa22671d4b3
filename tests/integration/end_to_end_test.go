package integration

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phasher/pkg/cache"
	"phasher/pkg/config"
	"phasher/pkg/logger"
	"phasher/pkg/pathlist"
	"phasher/pkg/phash"
	"phasher/pkg/pipeline"
)

// writeTestImage renders a deterministic grayscale pattern derived from the
// seeds and writes it as a PNG
func writeTestImage(t *testing.T, fs afero.Fs, path string, seedA, seedB int) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Pix[y*img.Stride+x] = uint8((x*seedA + y*seedB) % 256)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0644))
}

func testConfig(output string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Output = output
	cfg.Pipeline.Workers = 4
	cfg.Pipeline.Quiet = true
	return cfg
}

// runPipeline performs a full run the way the CLI does: read list, open
// checkpoint, hash, close
func runPipeline(t *testing.T, fs afero.Fs, listPath, output string) *pipeline.Stats {
	t.Helper()

	log := logger.NewNopLogger()

	candidates, err := pathlist.ReadSource(fs, listPath)
	require.NoError(t, err)

	store, err := cache.Open(fs, output, log)
	require.NoError(t, err)
	defer store.Close()

	engine := phash.NewEngine(fs)

	stats, err := pipeline.New(store, engine, testConfig(output), log).Run(candidates)
	require.NoError(t, err)
	return stats
}

// parseCheckpoint asserts every line is well-formed and returns the entries
func parseCheckpoint(t *testing.T, fs afero.Fs, path string) map[string]uint64 {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	entries := make(map[string]uint64)
	content := string(data)
	if content == "" {
		return entries
	}
	require.True(t, strings.HasSuffix(content, "\n"), "checkpoint must end with a newline")

	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 2, "line %q must have exactly two fields", line)
		hash, err := strconv.ParseUint(fields[1], 10, 64)
		require.NoError(t, err, "hash field of %q must parse", line)
		_, dup := entries[fields[0]]
		require.False(t, dup, "path %s appears twice", fields[0])
		entries[fields[0]] = hash
	}
	return entries
}

func TestEndToEndHashRun(t *testing.T) {
	fs := afero.NewMemMapFs()

	var list strings.Builder
	for i := 0; i < 5; i++ {
		path := fmt.Sprintf("images/img-%d.png", i)
		writeTestImage(t, fs, path, i+1, 7-i)
		list.WriteString(path + "\n")
	}
	require.NoError(t, afero.WriteFile(fs, "list.txt", []byte(list.String()), 0644))

	stats := runPipeline(t, fs, "list.txt", "hashes.tsv")
	assert.Equal(t, 5, stats.Hashed)
	assert.Equal(t, 0, stats.Failed)

	entries := parseCheckpoint(t, fs, "hashes.tsv")
	require.Len(t, entries, 5)

	// Each recorded hash matches an independent recomputation
	engine := phash.NewEngine(fs)
	for path, hash := range entries {
		want, err := engine.HashFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, hash, "recorded hash for %s", path)
	}
}

func TestEndToEndResumeAfterCrash(t *testing.T) {
	fs := afero.NewMemMapFs()

	var list strings.Builder
	for i := 0; i < 5; i++ {
		path := fmt.Sprintf("images/img-%d.png", i)
		writeTestImage(t, fs, path, 2*i+1, i+3)
		list.WriteString(path + "\n")
	}
	require.NoError(t, afero.WriteFile(fs, "list.txt", []byte(list.String()), 0644))

	stats := runPipeline(t, fs, "list.txt", "hashes.tsv")
	require.Equal(t, 5, stats.Hashed)
	firstRun := parseCheckpoint(t, fs, "hashes.tsv")

	// Simulate a crash mid-append: a trailing line without a newline
	data, err := afero.ReadFile(fs, "hashes.tsv")
	require.NoError(t, err)
	corrupted := append(data, []byte("images/img-9.png\t42")...)
	require.NoError(t, afero.WriteFile(fs, "hashes.tsv", corrupted, 0644))

	// Extend the candidate list and rerun
	for i := 5; i < 7; i++ {
		path := fmt.Sprintf("images/img-%d.png", i)
		writeTestImage(t, fs, path, i+2, 2*i+1)
		list.WriteString(path + "\n")
	}
	require.NoError(t, afero.WriteFile(fs, "list.txt", []byte(list.String()), 0644))

	stats = runPipeline(t, fs, "list.txt", "hashes.tsv")
	assert.Equal(t, 5, stats.Cached, "committed entries survive the crash artifact")
	assert.Equal(t, 2, stats.Hashed)

	final := parseCheckpoint(t, fs, "hashes.tsv")
	require.Len(t, final, 7)

	// The well-formed prefix is preserved byte for byte
	finalData, err := afero.ReadFile(fs, "hashes.tsv")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(finalData, data), "first run's entries must be a byte-identical prefix")

	// And the half-written line is gone
	assert.NotContains(t, final, "images/img-9.png")
	for path, hash := range firstRun {
		assert.Equal(t, hash, final[path], "entry for %s unchanged across runs", path)
	}
}

func TestEndToEndPerItemFailures(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeTestImage(t, fs, "good-1.png", 3, 5)
	writeTestImage(t, fs, "good-2.png", 5, 3)
	require.NoError(t, afero.WriteFile(fs, "not-an-image.txt", []byte("plain text"), 0644))

	list := "good-1.png\nmissing.png\nnot-an-image.txt\ngood-2.png\n"
	require.NoError(t, afero.WriteFile(fs, "list.txt", []byte(list), 0644))

	stats := runPipeline(t, fs, "list.txt", "hashes.tsv")
	assert.Equal(t, 2, stats.Hashed)
	assert.Equal(t, 2, stats.Failed)

	entries := parseCheckpoint(t, fs, "hashes.tsv")
	assert.Len(t, entries, 2)
	assert.Contains(t, entries, "good-1.png")
	assert.Contains(t, entries, "good-2.png")
}
