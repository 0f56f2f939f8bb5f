// Package status records the outcome of the most recent check.
//
// Check writes a small JSON file after every completed run. `watchdog config`
// reads it back to show when the watch list was last verified, and scripts
// can poll it without rehashing anything.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/corey/watchdog/internal/domain/checker"
	"github.com/corey/watchdog/internal/ports"
)

// StatusFile is the filename within the .watchdog directory where status JSON is written.
const StatusFile = "status.json"

// StatusData is the JSON payload written after a check.
type StatusData struct {
	CheckedAt  time.Time     `json:"checked_at"`
	Store      string        `json:"store"`
	Summary    ports.Summary `json:"summary"`
	Changed    []string      `json:"changed,omitempty"`
	Unreadable []string      `json:"unreadable,omitempty"`
}

// Generate produces a StatusData from the results of one check.
// Changed and unreadable paths are sorted.
func Generate(store string, results []checker.Result, now time.Time) *StatusData {
	sd := &StatusData{
		CheckedAt: now.UTC(),
		Store:     store,
		Summary:   checker.Summarize(slices.Values(results)),
	}
	for _, r := range results {
		switch r.Status {
		case ports.Changed:
			sd.Changed = append(sd.Changed, r.Path)
		case ports.Unreadable:
			sd.Unreadable = append(sd.Unreadable, r.Path)
		}
	}
	slices.Sort(sd.Changed)
	slices.Sort(sd.Unreadable)
	return sd
}

// WriteJSON writes the status data as JSON to a file.
func WriteJSON(path string, data *StatusData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ReadJSON reads a status file written by WriteJSON.
func ReadJSON(path string) (*StatusData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sd StatusData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &sd, nil
}

// Line renders sd as a one-line description, e.g.
// "2026-10-16 09:30 UTC: 3 checked, 1 changed, 0 unreadable".
func (sd *StatusData) Line() string {
	s := sd.Summary
	return fmt.Sprintf("%s: %d checked, %d changed, %d unreadable",
		sd.CheckedAt.UTC().Format("2006-01-02 15:04 MST"), s.Total, s.Changed, s.Unreadable)
}
