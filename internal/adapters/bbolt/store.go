// Package bbolt implements the ports.WatchStore interface using bbolt (embedded B+ tree).
// The whole watch list lives in one "watchlist" bucket as a JSON blob, written in
// a single transaction, so a crash mid-save cannot corrupt the previously committed list.
//
// The database is opened per operation and closed right after, so the file lock
// is never held while the interactive loop waits on the user.
package bbolt

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/corey/watchdog/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// DefaultFileName is the database created in the working directory.
const DefaultFileName = "watched_files.db"

// lockTimeout bounds how long Load/Save wait for another process's file lock.
const lockTimeout = 1 * time.Second

// Store implements ports.WatchStore backed by bbolt.
type Store struct {
	path   string
	logger *log.Logger

	// corrupt is set when the last Load rejected the file. Only then may
	// Save move an unopenable file aside and start a fresh database.
	corrupt bool
}

// NewStore returns a store for the database at path. The file is created on
// the first Save. A nil logger discards log output.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{path: path, logger: logger}
}

// Location returns the database path.
func (s *Store) Location() string {
	return s.path
}

// Load retrieves the watch list. A missing database yields an empty list.
func (s *Store) Load() (*ports.WatchList, error) {
	s.corrupt = false
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return ports.NewWatchList(), nil
	}
	// A read-only open of an empty file fails while trying to initialize it.
	if err == nil && info.Size() == 0 {
		return s.corrupted(errors.New("empty file"))
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: lockTimeout, ReadOnly: true})
	if err != nil {
		if s.isCorrupt(err) {
			return s.corrupted(err)
		}
		return nil, fmt.Errorf("%w: bbolt open %s: %v", ports.ErrIO, s.path, err)
	}
	defer db.Close()

	var version, blob []byte
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWatchList)
		if b == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := b.Get(keyFormat); v != nil {
			version = append([]byte(nil), v...)
		}
		if v := b.Get(keyEntries); v != nil {
			blob = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: bbolt read %s: %v", ports.ErrIO, s.path, err)
	}

	list, err := decodeEntries(version, blob)
	if err != nil {
		return s.corrupted(err)
	}
	s.logger.Printf("loaded %d entries from %s", list.Len(), s.path)
	return list, nil
}

// Save persists the full watch list in one transaction, replacing any prior list.
// A file that cannot be opened as bbolt is moved aside to <path>.corrupt and
// replaced by a fresh database, but only after Load reported it as corrupted;
// otherwise Save refuses to touch it.
func (s *Store) Save(list *ports.WatchList) error {
	version, blob, err := encodeEntries(list)
	if err != nil {
		return fmt.Errorf("%w: encode watch list: %v", ports.ErrIO, err)
	}

	db, err := s.openForWrite()
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketWatchList)
		if err != nil {
			return err
		}
		if err := b.Put(keyFormat, version); err != nil {
			return err
		}
		return b.Put(keyEntries, blob)
	})
	if err != nil {
		return fmt.Errorf("%w: bbolt write %s: %v", ports.ErrIO, s.path, err)
	}
	s.logger.Printf("saved %d entries to %s", list.Len(), s.path)
	return nil
}

func (s *Store) openForWrite() (*bolt.DB, error) {
	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: lockTimeout})
	if err == nil {
		return db, nil
	}
	if !s.isCorrupt(err) {
		return nil, fmt.Errorf("%w: bbolt open %s: %v", ports.ErrIO, s.path, err)
	}

	if !s.corrupt {
		return nil, fmt.Errorf("%w: %s is not a watch list database; refusing to overwrite: %v", ports.ErrIO, s.path, err)
	}
	aside := s.path + ".corrupt"
	s.logger.Printf("moving corrupted watch list %s to %s", s.path, aside)
	if err := os.Rename(s.path, aside); err != nil {
		return nil, fmt.Errorf("%w: move corrupted %s: %v", ports.ErrIO, s.path, err)
	}
	s.corrupt = false
	db, err = bolt.Open(s.path, 0600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: bbolt open %s: %v", ports.ErrIO, s.path, err)
	}
	return db, nil
}

func (s *Store) corrupted(err error) (*ports.WatchList, error) {
	s.corrupt = true
	s.logger.Printf("corrupted watch list %s: %v", s.path, err)
	return ports.NewWatchList(), fmt.Errorf("%w: %s: %v", ports.ErrCorruptedStore, s.path, err)
}

// isCorrupt separates "not a usable bbolt file" from environmental failures.
// Lock timeouts and permission errors are I/O problems; anything else bbolt
// rejects at open time means the file content is unusable.
func (s *Store) isCorrupt(err error) bool {
	switch {
	case errors.Is(err, bolt.ErrTimeout), errors.Is(err, fs.ErrPermission), errors.Is(err, fs.ErrNotExist):
		return false
	case errors.Is(err, bolt.ErrInvalid), errors.Is(err, bolt.ErrVersionMismatch), errors.Is(err, bolt.ErrChecksum):
		return true
	}
	var pathErr *fs.PathError
	return !errors.As(err, &pathErr)
}
