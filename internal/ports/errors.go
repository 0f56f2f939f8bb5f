package ports

import "errors"

// Error classes shared by adapters and domain packages. Concrete errors wrap
// one of these so callers can classify them with errors.Is.
var (
	// ErrCorruptedStore means the backing store exists but could not be parsed
	// as a path -> digest mapping. Recoverable: callers proceed with an empty
	// watch list, and the next save replaces the corrupt content.
	ErrCorruptedStore = errors.New("corrupted watch list")

	// ErrFileNotFound means a path does not resolve to an existing regular file.
	ErrFileNotFound = errors.New("file not found")

	// ErrIO covers every other read/write failure on the store or a watched file
	// (permission denied, device errors, unwritable store location).
	ErrIO = errors.New("i/o error")

	// ErrMalformedEntry marks a stored entry whose path is not absolute or
	// whose digest is not 64 lowercase hex characters.
	ErrMalformedEntry = errors.New("malformed entry")
)
