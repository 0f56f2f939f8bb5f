// Package app wires together the store adapters and domain logic.
// Each exported operation is one user command: it loads the watch list fresh,
// does its work, saves only after a successful mutation, and reports progress
// to a ports.Sink. No operation is fatal to the process; errors are reported
// and returned so the caller can decide whether to keep looping.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"time"

	"github.com/corey/watchdog/internal/adapters/bbolt"
	"github.com/corey/watchdog/internal/adapters/jsonfile"
	"github.com/corey/watchdog/internal/domain/checker"
	"github.com/corey/watchdog/internal/domain/digest"
	"github.com/corey/watchdog/internal/domain/status"
	"github.com/corey/watchdog/internal/ports"
)

// Store backends.
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

// Config holds everything needed to build an App.
type Config struct {
	WorkDir   string      // base for relative paths (default: required)
	StorePath string      // default: WorkDir/watched_files.json or .db by backend
	Backend   string      // BackendJSON (default) or BackendBolt
	Logger    *log.Logger // default: discard
	Hash      digest.Func // default: digest.Compute

	StatusPath string           // last-check record; "" disables it
	Now        func() time.Time // default: time.Now
}

// App is the top-level container wiring the store and hashing together.
type App struct {
	WorkDir string
	Store   ports.WatchStore

	logger     *log.Logger
	hash       digest.Func
	statusPath string
	now        func() time.Time
}

// New creates an App with all dependencies wired. Nothing is read from disk.
func New(cfg Config) (*App, error) {
	if cfg.WorkDir == "" {
		return nil, fmt.Errorf("work dir required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.Hash == nil {
		cfg.Hash = digest.Compute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendJSON
	}
	if cfg.StorePath == "" {
		cfg.StorePath = NewPaths(cfg.WorkDir).StorePath(cfg.Backend)
	} else if !filepath.IsAbs(cfg.StorePath) {
		cfg.StorePath = filepath.Join(cfg.WorkDir, cfg.StorePath)
	}

	store, err := NewStore(cfg.Backend, cfg.StorePath, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &App{
		WorkDir: cfg.WorkDir,
		Store:   store,

		logger:     cfg.Logger,
		hash:       cfg.Hash,
		statusPath: cfg.StatusPath,
		now:        cfg.Now,
	}, nil
}

// NewStore builds the WatchStore adapter for backend at path.
func NewStore(backend, path string, logger *log.Logger) (ports.WatchStore, error) {
	switch backend {
	case BackendJSON:
		return jsonfile.NewStore(path, logger), nil
	case BackendBolt:
		return bbolt.NewStore(path, logger), nil
	}
	return nil, fmt.Errorf("unknown backend %q (want %s or %s)", backend, BackendJSON, BackendBolt)
}

// Resolve turns a user-supplied path into the canonical absolute key used in
// the watch list. Relative paths are taken from WorkDir.
func (a *App) Resolve(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.WorkDir, path)
	}
	return filepath.Clean(path)
}

// Add records the current digest of path, inserting or rebaselining its entry.
func (a *App) Add(ctx context.Context, sink ports.Sink, path string) error {
	const cmd = "add"
	if err := ctx.Err(); err != nil {
		return err
	}
	abs := a.Resolve(path)

	list, err := a.load(cmd, sink)
	if err != nil {
		return err
	}
	d, err := a.hash(abs)
	if err != nil {
		return a.fail(cmd, sink, abs, err)
	}
	list.Add(abs, d)
	if err := a.Store.Save(list); err != nil {
		return a.fail(cmd, sink, abs, err)
	}
	sink.Report(ports.Event{Kind: ports.EventAdded, Command: cmd, Path: abs, Digest: d})
	return nil
}

// Remove stops tracking path. The store is written only if an entry was
// actually removed.
func (a *App) Remove(ctx context.Context, sink ports.Sink, path string) error {
	const cmd = "remove"
	if err := ctx.Err(); err != nil {
		return err
	}
	abs := a.Resolve(path)

	list, err := a.load(cmd, sink)
	if err != nil {
		return err
	}
	if _, removed := ports.RemoveEntry(list, abs); !removed {
		sink.Report(ports.Event{Kind: ports.EventNotTracked, Command: cmd, Path: abs})
		return nil
	}
	if err := a.Store.Save(list); err != nil {
		return a.fail(cmd, sink, abs, err)
	}
	sink.Report(ports.Event{Kind: ports.EventRemoved, Command: cmd, Path: abs})
	return nil
}

// List reports every (path, digest) pair, or EventEmpty.
func (a *App) List(ctx context.Context, sink ports.Sink) error {
	const cmd = "list"
	list, err := a.snapshot(ctx, cmd, sink)
	if err != nil {
		return err
	}
	if list.Len() == 0 {
		sink.Report(ports.Event{Kind: ports.EventEmpty, Command: cmd})
		return nil
	}
	for p, d := range list.All() {
		sink.Report(ports.Event{Kind: ports.EventEntry, Command: cmd, Path: p, Digest: d})
	}
	return nil
}

// Check reports the status of every entry followed by a summary. Stored
// digests are never updated here. A completed check is recorded at the
// configured status path.
func (a *App) Check(ctx context.Context, sink ports.Sink) (ports.Summary, error) {
	const cmd = "check"
	var sum ports.Summary

	list, err := a.snapshot(ctx, cmd, sink)
	if err != nil {
		return sum, err
	}
	if list.Len() == 0 {
		sink.Report(ports.Event{Kind: ports.EventEmpty, Command: cmd})
		return sum, nil
	}

	results := make([]checker.Result, 0, list.Len())
	for r := range checker.CheckAll(list, a.hash) {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		results = append(results, r)
		sum.Add(r.Status)
		if r.Err != nil {
			a.logger.Printf("check %s: %v", r.Path, r.Err)
		}
		sink.Report(ports.Event{Kind: ports.EventStatus, Command: cmd, Path: r.Path, Status: r.Status, Err: r.Err})
	}
	sink.Report(ports.Event{Kind: ports.EventSummary, Command: cmd, Summary: &sum})
	a.recordStatus(results)
	return sum, nil
}

// LastCheck returns the record of the most recent completed check, or nil
// if there is none.
func (a *App) LastCheck() *status.StatusData {
	if a.statusPath == "" {
		return nil
	}
	sd, err := status.ReadJSON(a.statusPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.logger.Printf("read status: %v", err)
		}
		return nil
	}
	return sd
}

// recordStatus writes the last-check record. Failures are logged only.
func (a *App) recordStatus(results []checker.Result) {
	if a.statusPath == "" {
		return
	}
	sd := status.Generate(a.Store.Location(), results, a.now())
	if err := status.WriteJSON(a.statusPath, sd); err != nil {
		a.logger.Printf("write status: %v", err)
	}
}

// Verify reports every stored entry whose path is not absolute or whose
// digest is malformed, and returns how many it found. No file is hashed and
// the store is not modified.
func (a *App) Verify(ctx context.Context, sink ports.Sink) (int, error) {
	const cmd = "verify"
	list, err := a.snapshot(ctx, cmd, sink)
	if err != nil {
		return 0, err
	}
	problems := 0
	for p, d := range list.All() {
		var bad error
		switch {
		case !filepath.IsAbs(p):
			bad = fmt.Errorf("%w: path is not absolute: %s", ports.ErrMalformedEntry, p)
		case !digest.Valid(d):
			bad = fmt.Errorf("%w: bad digest for %s: %q", ports.ErrMalformedEntry, p, d)
		}
		if bad != nil {
			problems++
			sink.Report(ports.Event{Kind: ports.EventWarning, Command: cmd, Path: p, Err: bad})
		}
	}
	if problems > 0 {
		a.logger.Printf("verify %s: %d malformed entries", a.Store.Location(), problems)
	}
	return problems, nil
}

// Snapshot loads the current watch list without reporting entries. Corruption
// is still reported as a warning.
func (a *App) Snapshot(ctx context.Context, sink ports.Sink) (*ports.WatchList, error) {
	return a.snapshot(ctx, "list", sink)
}

// Tracked returns the tracked paths, for pickers.
func (a *App) Tracked(ctx context.Context, sink ports.Sink) ([]string, error) {
	list, err := a.snapshot(ctx, "remove", sink)
	if err != nil {
		return nil, err
	}
	return list.Paths(), nil
}

// Migrate copies the current watch list into dst and returns the number of
// entries written. dst is overwritten.
func (a *App) Migrate(ctx context.Context, sink ports.Sink, dst ports.WatchStore) (int, error) {
	const cmd = "migrate"
	list, err := a.snapshot(ctx, cmd, sink)
	if err != nil {
		return 0, err
	}
	if err := dst.Save(list); err != nil {
		return 0, a.fail(cmd, sink, dst.Location(), err)
	}
	a.logger.Printf("migrated %d entries from %s to %s", list.Len(), a.Store.Location(), dst.Location())
	return list.Len(), nil
}

func (a *App) snapshot(ctx context.Context, cmd string, sink ports.Sink) (*ports.WatchList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.load(cmd, sink)
}

// load reads the store. Corruption degrades to an empty list with a warning;
// any other failure aborts the command.
func (a *App) load(cmd string, sink ports.Sink) (*ports.WatchList, error) {
	list, err := a.Store.Load()
	switch {
	case err == nil:
		return list, nil
	case errors.Is(err, ports.ErrCorruptedStore):
		sink.Report(ports.Event{Kind: ports.EventWarning, Command: cmd, Path: a.Store.Location(), Err: err})
		return list, nil
	default:
		return nil, a.fail(cmd, sink, a.Store.Location(), err)
	}
}

func (a *App) fail(cmd string, sink ports.Sink, path string, err error) error {
	a.logger.Printf("%s %s: %v", cmd, path, err)
	sink.Report(ports.Event{Kind: ports.EventError, Command: cmd, Path: path, Err: err})
	return err
}
