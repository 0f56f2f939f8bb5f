// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// WatchStore persists the watch list to durable storage.
//
// Load and Save are the only operations with side effects. Entry mutation
// happens in memory on the loaded WatchList; the caller composes
// Load -> mutate -> Save.
type WatchStore interface {
	// Load reads the backing store.
	// A missing store yields an empty list and a nil error.
	// Unparseable content yields an empty list and an error wrapping
	// ErrCorruptedStore; the list is still usable.
	// Any other read failure wraps ErrIO.
	Load() (*WatchList, error)

	// Save replaces the backing store with the full list. Readers never
	// observe a half-written store. Fails with ErrIO when the location
	// is not writable.
	Save(list *WatchList) error

	// Location returns a human-readable description of where the list lives.
	Location() string
}

// Entry is one (path, digest) pair of a WatchList.
type Entry struct {
	Path   string `json:"path" yaml:"path" toml:"path"`
	Digest string `json:"digest" yaml:"digest" toml:"digest"`
}
