package ports

// Sink receives report events from command handlers. The terminal renderer
// and test recorders both implement it; the core never writes to a console.
type Sink interface {
	Report(ev Event)
}

// EventKind identifies what a report Event describes.
type EventKind int

const (
	EventAdded      EventKind = iota // a path was added or rebaselined
	EventRemoved                     // a path was removed
	EventNotTracked                  // remove target was not in the list
	EventEntry                       // one (path, digest) pair from list
	EventStatus                      // one check result
	EventSummary                     // check totals, after all EventStatus
	EventEmpty                       // the list has no entries
	EventWarning                     // recoverable condition (e.g. corrupted store)
	EventError                       // the current command was aborted
)

// String returns the kind's display name.
func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventNotTracked:
		return "not-tracked"
	case EventEntry:
		return "entry"
	case EventStatus:
		return "status"
	case EventSummary:
		return "summary"
	case EventEmpty:
		return "empty"
	case EventWarning:
		return "warning"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is one structured report. Only the fields relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Command string // operation that produced the event: "add", "check", "verify", ...
	Path    string
	Digest  string
	Status  Status
	Summary *Summary
	Err     error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(Event)

// Report calls f(ev).
func (f SinkFunc) Report(ev Event) { f(ev) }
