package ports

// Status classifies one watched file during a check.
type Status int

const (
	// Unchanged: the current digest equals the recorded one.
	Unchanged Status = iota
	// Changed: the file was readable and its digest differs.
	Changed
	// Unreadable: the digest could not be computed. The entry stays tracked.
	Unreadable
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Unreadable:
		return "unreadable"
	}
	return "unknown"
}

// Summary counts check results per status.
type Summary struct {
	Total      int `json:"total"`
	Unchanged  int `json:"unchanged"`
	Changed    int `json:"changed"`
	Unreadable int `json:"unreadable"`
}

// Add counts one result with status st.
func (s *Summary) Add(st Status) {
	s.Total++
	switch st {
	case Unchanged:
		s.Unchanged++
	case Changed:
		s.Changed++
	case Unreadable:
		s.Unreadable++
	}
}

// Clean reports whether every checked file was unchanged.
func (s Summary) Clean() bool {
	return s.Changed == 0 && s.Unreadable == 0
}
