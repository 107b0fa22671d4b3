// Package pathlist reads line-delimited lists of candidate image paths.
package pathlist

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"

	perrors "phasher/pkg/errors"
)

// StdinSource is the input value meaning "read the list from standard input"
const StdinSource = "-"

// Read returns the paths listed in r, one per line, trimmed of surrounding
// whitespace. Blank lines are skipped. Order is preserved; duplicates are
// kept (the pipeline collapses them with set semantics).
func Read(r io.Reader) ([]string, error) {
	var paths []string

	scanner := bufio.NewScanner(r)
	// Paths can be long; lift the default line limit
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		path := strings.TrimSpace(scanner.Text())
		if path == "" {
			continue
		}
		paths = append(paths, path)
	}
	if err := scanner.Err(); err != nil {
		return nil, perrors.Wrap(perrors.ErrorTypeInput, "", "failed to read path list", err)
	}

	return paths, nil
}

// ReadSource reads the candidate list named by source: a file path, or
// StdinSource for standard input. Failure to open the source is fatal to the
// run.
func ReadSource(fs afero.Fs, source string) ([]string, error) {
	if source == StdinSource {
		return Read(os.Stdin)
	}

	file, err := fs.Open(source)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrorTypeInput, source, "failed to open input list", err)
	}
	defer file.Close()

	return Read(file)
}
