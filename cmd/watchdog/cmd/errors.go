package cmd

import (
	"errors"
	"fmt"
)

// exitCode is returned by commands that already reported their failure
// through the sink and only need the process to exit non-zero.
// 1 = a command was aborted, 2 = check --strict found changes.
type exitCode struct{ code int }

func (e exitCode) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

// ExitCode extracts the exit code from an exitCode error.
// Returns -1 if the error is not an exitCode.
func ExitCode(err error) int {
	var ec exitCode
	if errors.As(err, &ec) {
		return ec.code
	}
	return -1
}

// errUnknownCommand is reported by the interactive loop for unrecognized input.
var errUnknownCommand = errors.New("unknown command")
