package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	perrors "phasher/pkg/errors"
	"phasher/pkg/logger"
)

// Store holds the recovered checkpoint entries and owns the file handle used
// for appending new ones
type Store struct {
	file    afero.File
	entries map[string]uint64
	log     logger.Logger
}

// Open opens (creating if absent) the checkpoint file at path and recovers
// all committed entries from it, leaving the write cursor positioned directly
// after the last committed line
func Open(fs afero.Fs, path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	file, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrorTypeCache, path, "failed to open checkpoint file", err)
	}

	s := &Store{
		file:    file,
		entries: make(map[string]uint64),
		log:     log,
	}

	if err := s.load(); err != nil {
		file.Close()
		return nil, err
	}

	return s, nil
}

// load scans the file line by line, recording entries until it hits the end of
// the file or the first uncommitted line, then repositions the write cursor
// after the last committed one
func (s *Store) load() error {
	info, err := s.file.Stat()
	if err != nil {
		return perrors.Wrap(perrors.ErrorTypeCache, s.file.Name(), "failed to stat checkpoint file", err)
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return perrors.Wrap(perrors.ErrorTypeCache, s.file.Name(), "failed to seek checkpoint file", err)
	}

	reader := bufio.NewReader(s.file)

	var validOffset int64
	for {
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			break
		}

		// A line without a trailing newline was left unfinished by a crash
		if !strings.HasSuffix(line, "\n") {
			break
		}

		fields := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
		if len(fields) != 2 {
			break
		}

		hash, perr := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
		if perr != nil {
			break
		}

		s.entries[strings.TrimSpace(fields[0])] = hash
		validOffset += int64(len(line))
	}

	// Reposition so appends overwrite any trailing garbage instead of
	// following it
	if _, err := s.file.Seek(validOffset, io.SeekStart); err != nil {
		return perrors.Wrap(perrors.ErrorTypeCache, s.file.Name(), "failed to reposition checkpoint file", err)
	}

	discarded := info.Size() - validOffset
	if discarded > 0 {
		s.log.WarnWithFields("Discarding unfinished checkpoint tail", map[string]interface{}{
			"file":            s.file.Name(),
			"discarded_bytes": discarded,
		})
	}

	s.log.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"file":    s.file.Name(),
		"entries": len(s.entries),
	})

	return nil
}

// Append writes one entry as "<path>\t<hash>\n" and flushes it to durable
// storage before returning. Paths containing a tab or newline cannot be
// represented in the file format and are refused with a delimiter error.
func (s *Store) Append(path string, hash uint64) error {
	if strings.ContainsAny(path, "\t\n") {
		return perrors.New(perrors.ErrorTypeDelimiter, path, "path contains tab or newline")
	}

	if _, err := fmt.Fprintf(s.file, "%s\t%d\n", path, hash); err != nil {
		return perrors.Wrap(perrors.ErrorTypeCache, path, "failed to append checkpoint entry", err)
	}

	if err := s.file.Sync(); err != nil {
		return perrors.Wrap(perrors.ErrorTypeCache, path, "failed to sync checkpoint file", err)
	}

	s.entries[path] = hash
	return nil
}

// Contains reports whether path already has a committed entry
func (s *Store) Contains(path string) bool {
	_, ok := s.entries[path]
	return ok
}

// Get returns the hash recorded for path
func (s *Store) Get(path string) (uint64, bool) {
	hash, ok := s.entries[path]
	return hash, ok
}

// Entries returns a copy of all committed entries
func (s *Store) Entries() map[string]uint64 {
	entries := make(map[string]uint64, len(s.entries))
	for path, hash := range s.entries {
		entries[path] = hash
	}
	return entries
}

// Len returns the number of committed entries
func (s *Store) Len() int {
	return len(s.entries)
}

// Close closes the underlying file
func (s *Store) Close() error {
	return s.file.Close()
}
