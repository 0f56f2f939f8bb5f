// watchdog tracks a set of files and reports which ones changed since their
// digests were recorded. Single binary, single user, local files only.
package main

import (
	"fmt"
	"os"

	"github.com/corey/watchdog/cmd/watchdog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		code := cmd.ExitCode(err)
		if code < 0 {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			code = 1
		}
		os.Exit(code)
	}
}
