// Package digest computes content fingerprints for watched files.
//
// A digest is the lowercase hex SHA-256 of a file's full byte content. Only
// content matters: name, timestamps and permissions never affect the result.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/corey/watchdog/internal/ports"
)

// Size is the length of a digest string in hex characters.
const Size = sha256.Size * 2

// Func computes the digest of the file at path.
type Func func(path string) (string, error)

// Compute streams the file at path through SHA-256 and returns the hex digest.
//
// Errors wrap ports.ErrFileNotFound when path is missing or not a regular
// file, and ports.ErrIO for any other open or read failure.
func Compute(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", classify(path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", classify(path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ports.ErrFileNotFound, path)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", classify(path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bytes returns the digest of in-memory content.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Valid reports whether s has the shape of a digest: Size lowercase hex characters.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func classify(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ports.ErrFileNotFound, path)
	}
	return fmt.Errorf("%w: hash %s: %v", ports.ErrIO, path, err)
}
