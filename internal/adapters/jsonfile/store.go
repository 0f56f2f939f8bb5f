// Package jsonfile implements the ports.WatchStore interface as a single JSON
// file (watched_files.json by default). Saves go through a temp file in the same
// directory followed by a rename, so readers see either the old or the new list.
package jsonfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/corey/watchdog/internal/ports"
)

// DefaultFileName is the store file created in the working directory.
const DefaultFileName = "watched_files.json"

// Store implements ports.WatchStore backed by a JSON file.
type Store struct {
	path   string
	logger *log.Logger

	// Fingerprint of the file as of the last Load, used to warn when
	// another process rewrote it before our Save. Last writer still wins.
	seen   bool
	exists bool
	sum    uint64
}

// NewStore returns a store for the file at path. Nothing is read or created
// until Load or Save. A nil logger discards log output.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{path: path, logger: logger}
}

// Location returns the store file path.
func (s *Store) Location() string {
	return s.path
}

// Load reads the watch list. See ports.WatchStore for the error contract.
func (s *Store) Load() (*ports.WatchList, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.remember(false, nil)
		return ports.NewWatchList(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ports.ErrIO, s.path, err)
	}
	s.remember(true, data)

	list, err := Decode(data)
	if err != nil {
		s.logger.Printf("corrupted watch list %s: %v", s.path, err)
		return ports.NewWatchList(), fmt.Errorf("%w: %s: %v", ports.ErrCorruptedStore, s.path, err)
	}
	s.logger.Printf("loaded %d entries from %s", list.Len(), s.path)
	return list, nil
}

// Save atomically replaces the store file with list.
func (s *Store) Save(list *ports.WatchList) error {
	data, err := Encode(list)
	if err != nil {
		return fmt.Errorf("%w: encode watch list: %v", ports.ErrIO, err)
	}

	if s.modifiedSinceLoad() {
		s.logger.Printf("warning: %s was modified externally since it was loaded; overwriting", s.path)
	}

	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ports.ErrIO, s.path, err)
	}
	s.remember(true, data)
	s.logger.Printf("saved %d entries to %s", list.Len(), s.path)
	return nil
}

func (s *Store) remember(exists bool, data []byte) {
	s.seen = true
	s.exists = exists
	s.sum = 0
	if exists {
		s.sum = xxhash.Sum64(data)
	}
}

// modifiedSinceLoad compares the file on disk against the last Load.
// Unreadable files are reported as unmodified; Save surfaces the real error.
func (s *Store) modifiedSinceLoad() bool {
	if !s.seen {
		return false
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.exists
	}
	if err != nil {
		return false
	}
	return !s.exists || xxhash.Sum64(data) != s.sum
}

// writeFileAtomic writes data to a temp file next to path, syncs it, and
// renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
