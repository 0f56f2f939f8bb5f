package app

import (
	"os"
	"path/filepath"

	"github.com/corey/watchdog/internal/adapters/bbolt"
	"github.com/corey/watchdog/internal/adapters/jsonfile"
	"github.com/corey/watchdog/internal/domain/status"
)

// Paths holds all resolved filesystem paths for a working directory.
// All fields are pre-computed strings.
type Paths struct {
	Root string // working directory

	JSONStore string // watched_files.json
	BoltStore string // watched_files.db

	ConfigYAML string // .watchdog.yaml
	ConfigTOML string // .watchdog.toml

	StateDir string // .watchdog/
	LogDir   string // .watchdog/log/
	LogFile  string // .watchdog/log/watchdog.log

	StatusFile string // .watchdog/status.json
}

// NewPaths constructs all resolved paths from a working directory.
func NewPaths(root string) *Paths {
	state := filepath.Join(root, ".watchdog")
	return &Paths{
		Root: root,

		JSONStore: filepath.Join(root, jsonfile.DefaultFileName),
		BoltStore: filepath.Join(root, bbolt.DefaultFileName),

		ConfigYAML: filepath.Join(root, ".watchdog.yaml"),
		ConfigTOML: filepath.Join(root, ".watchdog.toml"),

		StateDir: state,
		LogDir:   filepath.Join(state, "log"),
		LogFile:  filepath.Join(state, "log", "watchdog.log"),

		StatusFile: filepath.Join(state, status.StatusFile),
	}
}

// StorePath returns the default store file for backend.
func (p *Paths) StorePath(backend string) string {
	if backend == BackendBolt {
		return p.BoltStore
	}
	return p.JSONStore
}

// ConfigFile returns the first config file that exists, or "".
// YAML wins over TOML when both are present.
func (p *Paths) ConfigFile() string {
	for _, f := range []string{p.ConfigYAML, p.ConfigTOML} {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			return f
		}
	}
	return ""
}

// EnsureDirs creates the state directories. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.StateDir, p.LogDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}
