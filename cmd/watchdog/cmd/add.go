package cmd

import (
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Start watching files",
	Long: `Records the current SHA-256 digest of each path. Adding a path that is
already watched replaces its digest with the current one (rebaseline).
Relative paths are resolved against the working directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	failed := false
	for _, p := range args {
		if err := sess.app.Add(cmd.Context(), sess.sink, p); err != nil {
			if cmd.Context().Err() != nil {
				return err
			}
			failed = true
		}
	}
	if failed {
		return exitCode{1}
	}
	return nil
}
