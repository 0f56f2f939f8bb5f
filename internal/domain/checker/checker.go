// Package checker compares the current content of watched files against the
// digests recorded in a watch list.
package checker

import (
	"iter"

	"github.com/corey/watchdog/internal/domain/digest"
	"github.com/corey/watchdog/internal/ports"
)

// Result is the outcome of checking one entry.
type Result struct {
	Path   string
	Status ports.Status
	Err    error // set when Status is Unreadable
}

// CheckAll yields one Result per entry of list, in list order.
//
// Hashing happens lazily as the sequence is consumed. A hash failure yields
// Unreadable; the list is never modified, so an unreadable file stays tracked
// and a changed file keeps its old baseline until it is added again.
// Each range over the returned sequence is a fresh pass.
func CheckAll(list *ports.WatchList, hash digest.Func) iter.Seq[Result] {
	if hash == nil {
		hash = digest.Compute
	}
	return func(yield func(Result) bool) {
		for path, recorded := range list.All() {
			if !yield(check(path, recorded, hash)) {
				return
			}
		}
	}
}

func check(path, recorded string, hash digest.Func) Result {
	current, err := hash(path)
	switch {
	case err != nil:
		return Result{Path: path, Status: ports.Unreadable, Err: err}
	case current == recorded:
		return Result{Path: path, Status: ports.Unchanged}
	default:
		return Result{Path: path, Status: ports.Changed}
	}
}

// Summarize drains results and counts them per status.
func Summarize(results iter.Seq[Result]) ports.Summary {
	var s ports.Summary
	for r := range results {
		s.Add(r.Status)
	}
	return s
}
