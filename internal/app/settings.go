package app

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config keys, shared with the CLI flag bindings.
const (
	KeyStore         = "store"
	KeyBackend       = "backend"
	KeyColor         = "color"
	KeyLogFile       = "log.file"
	KeyLogMaxSizeMB  = "log.max_size_mb"
	KeyLogMaxBackups = "log.max_backups"
)

// Settings is the resolved user configuration.
//
// Precedence (highest first): flags bound to v, WATCHDOG_* environment
// variables, .watchdog.yaml / .watchdog.toml in the working directory, defaults.
type Settings struct {
	Store         string // absolute store path
	Backend       string
	Color         string // auto, always, never
	ConfigFile    string // file that was read, if any
	LogFile       string // "" disables logging
	LogMaxSizeMB  int
	LogMaxBackups int
}

// LoadSettings resolves Settings for the working directory in paths.
func LoadSettings(v *viper.Viper, paths *Paths) (Settings, error) {
	v.SetDefault(KeyBackend, BackendJSON)
	v.SetDefault(KeyStore, "")
	v.SetDefault(KeyColor, "auto")
	v.SetDefault(KeyLogFile, paths.LogFile)
	v.SetDefault(KeyLogMaxSizeMB, 10)
	v.SetDefault(KeyLogMaxBackups, 3)

	v.SetEnvPrefix("WATCHDOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if f := paths.ConfigFile(); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return s, fmt.Errorf("read config %s: %w", f, err)
		}
		s.ConfigFile = f
	}

	s.Backend = strings.ToLower(v.GetString(KeyBackend))
	if s.Backend != BackendJSON && s.Backend != BackendBolt {
		return s, fmt.Errorf("invalid %s %q (want %s or %s)", KeyBackend, s.Backend, BackendJSON, BackendBolt)
	}

	s.Color = strings.ToLower(v.GetString(KeyColor))
	switch s.Color {
	case "auto", "always", "never":
	default:
		return s, fmt.Errorf("invalid %s %q (want auto, always or never)", KeyColor, s.Color)
	}

	s.Store = v.GetString(KeyStore)
	switch {
	case s.Store == "":
		s.Store = paths.StorePath(s.Backend)
	case !filepath.IsAbs(s.Store):
		s.Store = filepath.Join(paths.Root, s.Store)
	}

	s.LogFile = v.GetString(KeyLogFile)
	if s.LogFile != "" && !filepath.IsAbs(s.LogFile) {
		s.LogFile = filepath.Join(paths.Root, s.LogFile)
	}
	s.LogMaxSizeMB = v.GetInt(KeyLogMaxSizeMB)
	s.LogMaxBackups = v.GetInt(KeyLogMaxBackups)
	return s, nil
}

// NewLogger returns the logger described by s and a closer for its file.
// An empty LogFile yields a discarding logger.
func NewLogger(s Settings) (*log.Logger, io.Closer) {
	if s.LogFile == "" {
		return log.New(io.Discard, "", 0), nopCloser{}
	}
	lj := &lumberjack.Logger{
		Filename:   s.LogFile,
		MaxSize:    s.LogMaxSizeMB,
		MaxBackups: s.LogMaxBackups,
	}
	return log.New(lj, "[watchdog] ", log.LstdFlags), lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
