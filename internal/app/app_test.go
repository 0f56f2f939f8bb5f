package app

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corey/watchdog/internal/domain/digest"
	"github.com/corey/watchdog/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a ports.Sink that keeps every event.
type recorder struct {
	events []ports.Event
}

func (r *recorder) Report(ev ports.Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []ports.EventKind {
	out := make([]ports.EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *recorder) ofKind(k ports.EventKind) []ports.Event {
	var out []ports.Event
	for _, ev := range r.events {
		if ev.Kind == k {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) reset() { r.events = nil }

// newTestApp builds an App rooted in a fresh temp dir.
func newTestApp(t *testing.T, backend string) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	a, err := New(Config{WorkDir: dir, Backend: backend})
	require.NoError(t, err)
	return a, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{WorkDir: t.TempDir(), Backend: "sqlite"})
	assert.ErrorContains(t, err, "unknown backend")

	dir := t.TempDir()
	a, err := New(Config{WorkDir: dir, StorePath: "custom.json"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom.json"), a.Store.Location())
}

func TestResolve(t *testing.T) {
	a, dir := newTestApp(t, BackendJSON)
	assert.Equal(t, filepath.Join(dir, "a.txt"), a.Resolve("a.txt"))
	assert.Equal(t, filepath.Join(dir, "a.txt"), a.Resolve("./sub/../a.txt"))
	assert.Equal(t, "/etc/hosts", a.Resolve("/etc//hosts"))
}

func TestAdd_ReportsAbsolutePath(t *testing.T) {
	a, dir := newTestApp(t, BackendJSON)
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	rec := &recorder{}

	require.NoError(t, a.Add(context.Background(), rec, "a.txt"))
	require.Equal(t, []ports.EventKind{ports.EventAdded}, rec.kinds())
	assert.Equal(t, filepath.Join(dir, "a.txt"), rec.events[0].Path)
	assert.Equal(t, digest.Bytes([]byte("alpha")), rec.events[0].Digest)

	list, err := a.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, list.Paths())
}

func TestAdd_NotFoundAbortsWithoutSave(t *testing.T) {
	a, _ := newTestApp(t, BackendJSON)
	rec := &recorder{}

	err := a.Add(context.Background(), rec, "missing.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrFileNotFound)
	require.Equal(t, []ports.EventKind{ports.EventError}, rec.kinds())
	assert.ErrorIs(t, rec.events[0].Err, ports.ErrFileNotFound)

	_, statErr := os.Stat(a.Store.Location())
	assert.True(t, os.IsNotExist(statErr), "no store write on failed add")
}

func TestAdd_UnwritableStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	a, err := New(Config{WorkDir: dir, StorePath: filepath.Join(dir, "nope", "store.json")})
	require.NoError(t, err)
	rec := &recorder{}

	err = a.Add(context.Background(), rec, "a.txt")
	assert.ErrorIs(t, err, ports.ErrIO)
	assert.Equal(t, []ports.EventKind{ports.EventError}, rec.kinds())
}

func TestAddRemoveListCheck_Flow(t *testing.T) {
	for _, backend := range []string{BackendJSON, BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			a, dir := newTestApp(t, backend)
			aPath := filepath.Join(dir, "a.txt")
			bPath := filepath.Join(dir, "b.txt")
			writeFile(t, aPath, "alpha")
			writeFile(t, bPath, "beta")
			rec := &recorder{}

			require.NoError(t, a.Add(ctx, rec, aPath))
			require.NoError(t, a.Add(ctx, rec, bPath))

			rec.reset()
			require.NoError(t, a.List(ctx, rec))
			entries := rec.ofKind(ports.EventEntry)
			require.Len(t, entries, 2)
			assert.Equal(t, aPath, entries[0].Path)
			assert.Equal(t, bPath, entries[1].Path)

			// Idempotent check.
			for i := 0; i < 2; i++ {
				rec.reset()
				sum, err := a.Check(ctx, rec)
				require.NoError(t, err)
				assert.Equal(t, ports.Summary{Total: 2, Unchanged: 2}, sum)
				for _, ev := range rec.ofKind(ports.EventStatus) {
					assert.Equal(t, ports.Unchanged, ev.Status)
				}
				assert.Equal(t, ports.EventSummary, rec.events[len(rec.events)-1].Kind)
			}

			// Change one byte, delete the other file.
			writeFile(t, aPath, "alphA")
			require.NoError(t, os.Remove(bPath))
			rec.reset()
			sum, err := a.Check(ctx, rec)
			require.NoError(t, err)
			assert.Equal(t, ports.Summary{Total: 2, Changed: 1, Unreadable: 1}, sum)
			statuses := rec.ofKind(ports.EventStatus)
			require.Len(t, statuses, 2)
			assert.Equal(t, ports.Changed, statuses[0].Status)
			assert.Equal(t, ports.Unreadable, statuses[1].Status)
			assert.ErrorIs(t, statuses[1].Err, ports.ErrFileNotFound)

			// Unreadable entry is still tracked after the check.
			list, err := a.Store.Load()
			require.NoError(t, err)
			assert.Equal(t, 2, list.Len())

			// Re-add rebaselines.
			require.NoError(t, a.Add(ctx, rec, aPath))
			rec.reset()
			_, err = a.Check(ctx, rec)
			require.NoError(t, err)
			assert.Equal(t, ports.Unchanged, rec.ofKind(ports.EventStatus)[0].Status)

			// Remove.
			rec.reset()
			require.NoError(t, a.Remove(ctx, rec, bPath))
			assert.Equal(t, []ports.EventKind{ports.EventRemoved}, rec.kinds())
			tracked, err := a.Tracked(ctx, rec)
			require.NoError(t, err)
			assert.Equal(t, []string{aPath}, tracked)
		})
	}
}

func TestRemove_NotTrackedLeavesStoreUntouched(t *testing.T) {
	a, _ := newTestApp(t, BackendJSON)
	// Compact formatting: any save would rewrite it pretty-printed.
	original := `{"/a.txt":"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"}`
	writeFile(t, a.Store.Location(), original)
	rec := &recorder{}

	require.NoError(t, a.Remove(context.Background(), rec, "/missing.txt"))
	require.Equal(t, []ports.EventKind{ports.EventNotTracked}, rec.kinds())
	assert.Equal(t, "/missing.txt", rec.events[0].Path)

	data, err := os.ReadFile(a.Store.Location())
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestListAndCheck_Empty(t *testing.T) {
	a, _ := newTestApp(t, BackendJSON)
	rec := &recorder{}

	require.NoError(t, a.List(context.Background(), rec))
	sum, err := a.Check(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, ports.Summary{}, sum)
	assert.Equal(t, []ports.EventKind{ports.EventEmpty, ports.EventEmpty}, rec.kinds())
	assert.Equal(t, "list", rec.events[0].Command)
	assert.Equal(t, "check", rec.events[1].Command)
}

func TestCorruptedStore_WarnsAndStartsFresh(t *testing.T) {
	var logBuf bytes.Buffer
	dir := t.TempDir()
	a, err := New(Config{WorkDir: dir, Logger: log.New(&logBuf, "", 0)})
	require.NoError(t, err)
	writeFile(t, a.Store.Location(), "{ not json")
	writeFile(t, filepath.Join(dir, "new.txt"), "new")
	rec := &recorder{}

	require.NoError(t, a.List(context.Background(), rec))
	assert.Equal(t, []ports.EventKind{ports.EventWarning, ports.EventEmpty}, rec.kinds())
	assert.ErrorIs(t, rec.events[0].Err, ports.ErrCorruptedStore)

	rec.reset()
	require.NoError(t, a.Add(context.Background(), rec, "new.txt"))
	assert.Equal(t, []ports.EventKind{ports.EventWarning, ports.EventAdded}, rec.kinds())
	assert.Contains(t, logBuf.String(), "corrupted watch list")

	// The corrupt content is gone after the save.
	rec.reset()
	require.NoError(t, a.List(context.Background(), rec))
	assert.Equal(t, []ports.EventKind{ports.EventEntry}, rec.kinds())
}

func TestCheck_Cancelled(t *testing.T) {
	a, dir := newTestApp(t, BackendJSON)
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	rec := &recorder{}
	require.NoError(t, a.Add(context.Background(), rec, "a.txt"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Check(ctx, rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, a.Add(ctx, rec, "a.txt"), context.Canceled)
}

func TestMigrate_JSONToBolt(t *testing.T) {
	ctx := context.Background()
	a, dir := newTestApp(t, BackendJSON)
	for _, name := range []string{"one.txt", "two.txt"} {
		writeFile(t, filepath.Join(dir, name), name)
		require.NoError(t, a.Add(ctx, &recorder{}, name))
	}

	dst, err := NewStore(BackendBolt, NewPaths(dir).BoltStore, nil)
	require.NoError(t, err)
	n, err := a.Migrate(ctx, &recorder{}, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	src, err := a.Store.Load()
	require.NoError(t, err)
	got, err := dst.Load()
	require.NoError(t, err)
	assert.True(t, src.Equal(got))
	assert.Equal(t, src.Paths(), got.Paths())
}

func TestCheck_RecordsLastCheck(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	paths := NewPaths(dir)
	require.NoError(t, paths.EnsureDirs())
	when := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	a, err := New(Config{WorkDir: dir, StatusPath: paths.StatusFile, Now: func() time.Time { return when }})
	require.NoError(t, err)
	assert.Nil(t, a.LastCheck(), "no check yet")

	aPath := filepath.Join(dir, "a.txt")
	writeFile(t, aPath, "alpha")
	require.NoError(t, a.Add(ctx, &recorder{}, aPath))
	writeFile(t, aPath, "alphA")

	_, err = a.Check(ctx, &recorder{})
	require.NoError(t, err)

	last := a.LastCheck()
	require.NotNil(t, last)
	assert.Equal(t, when, last.CheckedAt)
	assert.Equal(t, a.Store.Location(), last.Store)
	assert.Equal(t, ports.Summary{Total: 1, Changed: 1}, last.Summary)
	assert.Equal(t, []string{aPath}, last.Changed)
}

func TestCheck_EmptyDoesNotRecord(t *testing.T) {
	dir := t.TempDir()
	paths := NewPaths(dir)
	require.NoError(t, paths.EnsureDirs())
	a, err := New(Config{WorkDir: dir, StatusPath: paths.StatusFile})
	require.NoError(t, err)

	_, err = a.Check(context.Background(), &recorder{})
	require.NoError(t, err)
	assert.Nil(t, a.LastCheck())
}

func TestVerify(t *testing.T) {
	a, _ := newTestApp(t, BackendJSON)
	good := digest.Bytes([]byte("x"))
	writeFile(t, a.Store.Location(), `{"/ok.txt":"`+good+`","rel.txt":"`+good+`","/bad.txt":"ABC"}`)
	rec := &recorder{}

	n, err := a.Verify(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	warnings := rec.ofKind(ports.EventWarning)
	require.Len(t, warnings, 2)
	assert.Equal(t, "rel.txt", warnings[0].Path)
	assert.ErrorIs(t, warnings[0].Err, ports.ErrMalformedEntry)
	assert.Equal(t, "/bad.txt", warnings[1].Path)
	assert.ErrorContains(t, warnings[1].Err, `bad digest for /bad.txt: "ABC"`)

	// Remove resolves rel.txt to an absolute key, so drop it from the list directly.
	require.NoError(t, a.Remove(context.Background(), rec, "/bad.txt"))
	list, err := a.Store.Load()
	require.NoError(t, err)
	list.Remove("rel.txt")
	require.NoError(t, a.Store.Save(list))

	rec.reset()
	n, err = a.Verify(context.Background(), rec)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rec.events)
}
