package ports

import (
	"iter"
	"slices"
)

// WatchList maps absolute file paths to their last recorded content digest.
//
// Iteration follows insertion order. Overwriting an existing path keeps its
// original position, so a rebaseline does not reshuffle list output.
// The zero value is not usable; call NewWatchList.
type WatchList struct {
	order   []string
	digests map[string]string
}

// NewWatchList returns an empty watch list.
func NewWatchList() *WatchList {
	return &WatchList{digests: make(map[string]string)}
}

// Len returns the number of entries.
func (l *WatchList) Len() int {
	return len(l.order)
}

// Get returns the digest recorded for path.
func (l *WatchList) Get(path string) (string, bool) {
	d, ok := l.digests[path]
	return d, ok
}

// Add inserts or overwrites the entry for path. No I/O.
func (l *WatchList) Add(path, digest string) {
	if _, ok := l.digests[path]; !ok {
		l.order = append(l.order, path)
	}
	l.digests[path] = digest
}

// Remove deletes the entry for path and reports whether anything was deleted.
func (l *WatchList) Remove(path string) bool {
	if _, ok := l.digests[path]; !ok {
		return false
	}
	delete(l.digests, path)
	if i := slices.Index(l.order, path); i >= 0 {
		l.order = slices.Delete(l.order, i, i+1)
	}
	return true
}

// All iterates entries in insertion order.
func (l *WatchList) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, p := range l.order {
			if !yield(p, l.digests[p]) {
				return
			}
		}
	}
}

// Paths returns the tracked paths in insertion order.
func (l *WatchList) Paths() []string {
	return slices.Clone(l.order)
}

// Entries returns a snapshot of the list as (path, digest) pairs.
func (l *WatchList) Entries() []Entry {
	out := make([]Entry, 0, len(l.order))
	for p, d := range l.All() {
		out = append(out, Entry{Path: p, Digest: d})
	}
	return out
}

// Clone returns an independent copy of the list.
func (l *WatchList) Clone() *WatchList {
	c := &WatchList{
		order:   slices.Clone(l.order),
		digests: make(map[string]string, len(l.digests)),
	}
	for p, d := range l.digests {
		c.digests[p] = d
	}
	return c
}

// Equal reports whether both lists hold the same paths with the same digests.
// Order is not compared.
func (l *WatchList) Equal(other *WatchList) bool {
	if l.Len() != other.Len() {
		return false
	}
	for p, d := range l.digests {
		if od, ok := other.digests[p]; !ok || od != d {
			return false
		}
	}
	return true
}

// AddEntry is the functional form of Add: it returns list with path set to digest.
func AddEntry(list *WatchList, path, digest string) *WatchList {
	list.Add(path, digest)
	return list
}

// RemoveEntry is the functional form of Remove.
func RemoveEntry(list *WatchList, path string) (*WatchList, bool) {
	removed := list.Remove(path)
	return list, removed
}
