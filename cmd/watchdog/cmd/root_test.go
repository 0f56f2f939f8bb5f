package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/corey/watchdog/internal/domain/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// run executes the command tree with the given stdin and args, rooted in dir.
func run(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestOneShot_AddListCheck(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	writeFile(t, a, "alpha")

	out, _, err := run(t, dir, "", "add", "a.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Added: "+a)

	out, _, err = run(t, dir, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "File: "+a+" Hash: "+digest.Bytes([]byte("alpha")))

	out, _, err = run(t, dir, "", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: "+a)
	assert.Contains(t, out, "1 checked │ 1 ok")
	assert.NotContains(t, out, "\x1b[", "no color when stdout is not a terminal")
}

func TestOneShot_AddMissingExitsOne(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "", "add", "missing.txt")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, out, "Error: File not found: "+filepath.Join(dir, "missing.txt"))

	_, statErr := os.Stat(filepath.Join(dir, "watched_files.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOneShot_AddContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "beta")

	out, _, err := run(t, dir, "", "add", "missing.txt", "b.txt")
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, out, "Added: "+filepath.Join(dir, "b.txt"))
}

func TestOneShot_RemoveNotTracked(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "", "remove", "nope.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: Not in watch list: "+filepath.Join(dir, "nope.txt"))
}

func TestCheck_StrictExitCodes(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	writeFile(t, a, "alpha")
	_, _, err := run(t, dir, "", "add", a)
	require.NoError(t, err)

	_, _, err = run(t, dir, "", "check", "--strict")
	require.NoError(t, err)

	writeFile(t, a, "alphA")
	out, _, err := run(t, dir, "", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "CHANGED: "+a)
	assert.Contains(t, out, "1 changed")

	_, _, err = run(t, dir, "", "check", "--strict")
	assert.Equal(t, 2, ExitCode(err))

	require.NoError(t, os.Remove(a))
	out, _, err = run(t, dir, "", "check", "--strict")
	assert.Equal(t, 2, ExitCode(err))
	assert.Contains(t, out, "UNREADABLE: "+a)
}

func TestCheck_Empty(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "No files to check.")

	out, _, err = run(t, dir, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No files are currently being watched.")
}

func TestList_Formats(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "alpha")
	writeFile(t, b, "beta")
	_, _, err := run(t, dir, "", "add", b, a)
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		out, _, err := run(t, dir, "", "list", "--format", "json")
		require.NoError(t, err)
		stored, err := os.ReadFile(filepath.Join(dir, "watched_files.json"))
		require.NoError(t, err)
		assert.Equal(t, string(stored), out)
	})

	t.Run("yaml", func(t *testing.T) {
		out, _, err := run(t, dir, "", "list", "--format", "yaml")
		require.NoError(t, err)
		var got map[string]string
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, map[string]string{
			a: digest.Bytes([]byte("alpha")),
			b: digest.Bytes([]byte("beta")),
		}, got)
		assert.Less(t, strings.Index(out, b), strings.Index(out, a), "insertion order")
	})

	t.Run("toml", func(t *testing.T) {
		out, _, err := run(t, dir, "", "list", "--format", "toml")
		require.NoError(t, err)
		var doc tomlDoc
		_, err = toml.Decode(out, &doc)
		require.NoError(t, err)
		require.Len(t, doc.Entry, 2)
		assert.Equal(t, b, doc.Entry[0].Path)
		assert.Equal(t, a, doc.Entry[1].Path)
		assert.Equal(t, digest.Bytes([]byte("beta")), doc.Entry[0].Digest)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := run(t, dir, "", "list", "--format", "xml")
		assert.ErrorContains(t, err, "unknown format")
	})
}

func TestList_CorruptStoreWarnsOnStderrForMachineFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "watched_files.json"), "{ nope")

	out, errOut, err := run(t, dir, "", "list", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)
	assert.Contains(t, errOut, "Warning: Corrupted watch list file")

	out, _, err = run(t, dir, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: Corrupted watch list file "+filepath.Join(dir, "watched_files.json")+". Starting fresh.")
}

func TestConfig_FileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend:  json")
	assert.Contains(t, out, "Config:   (none)")

	writeFile(t, filepath.Join(dir, ".watchdog.yaml"), "backend: bolt\nlog:\n  file: \"\"\n")
	out, _, err = run(t, dir, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend:  bolt")
	assert.Contains(t, out, "Store:    "+filepath.Join(dir, "watched_files.db"))
	assert.Contains(t, out, "Log:      (disabled)")

	out, _, err = run(t, dir, "", "--backend", "json", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend:  json")

	_, _, err = run(t, dir, "", "--backend", "sqlite", "config")
	assert.ErrorContains(t, err, "invalid backend")
}

func TestMigrate_ToBolt(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	writeFile(t, a, "alpha")
	_, _, err := run(t, dir, "", "add", a)
	require.NoError(t, err)

	out, _, err := run(t, dir, "", "migrate", "--to", "bolt")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrated 1 entries to "+filepath.Join(dir, "watched_files.db"))

	out, _, err = run(t, dir, "", "--backend", "bolt", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "File: "+a)

	_, _, err = run(t, dir, "", "migrate", "--to", "json")
	assert.ErrorContains(t, err, "is the current store")

	_, _, err = run(t, dir, "", "migrate")
	assert.Error(t, err, "--to is required")
}

func TestLogFile_WrittenUnderStateDir(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "", "list")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".watchdog", "log", "watchdog.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[watchdog] ")
	assert.Contains(t, string(data), "list: root="+dir)
}

func TestConfig_ShowsLastCheck(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked:  (never)")

	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	_, _, err = run(t, dir, "", "shell", "add", "a.txt", "check", "exit")
	require.NoError(t, err)

	out, _, err = run(t, dir, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, ": 1 checked, 0 changed, 0 unreadable")
	assert.FileExists(t, filepath.Join(dir, ".watchdog", "status.json"))
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "watched_files.json")

	out, _, err := run(t, dir, "", "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Store OK: "+store)

	writeFile(t, store, `{"/x.txt": "not-a-digest"}`)
	out, _, err = run(t, dir, "", "verify")
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, out, `Warning: malformed entry: bad digest for /x.txt: "not-a-digest"`)
}

func TestExecute_RepeatedRunsGetFreshContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")

	// Each Execute cancels its context on return; later runs must not inherit it.
	for i := 0; i < 3; i++ {
		out, _, err := run(t, dir, "", "add", "a.txt")
		require.NoError(t, err, "run %d", i)
		assert.Contains(t, out, "Added: "+filepath.Join(dir, "a.txt"), "run %d", i)
	}
	out, _, err := run(t, dir, "", "check", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "1 checked │ 1 ok")
}

func TestMigrate_RefusesForeignDestination(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	writeFile(t, a, "alpha")
	_, _, err := run(t, dir, "", "add", a)
	require.NoError(t, err)

	notes := filepath.Join(dir, "notes.txt")
	writeFile(t, notes, "not a watch list")
	_, _, err = run(t, dir, "", "migrate", "--to", "bolt", "--dest", "notes.txt")
	assert.ErrorContains(t, err, "is not a bolt watch list")

	data, err := os.ReadFile(notes)
	require.NoError(t, err)
	assert.Equal(t, "not a watch list", string(data))
	assert.NoFileExists(t, notes+".corrupt")
}
