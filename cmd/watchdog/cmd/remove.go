package cmd

import (
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <path>...",
	Short: "Stop watching files",
	Long:  "Removes each path from the watch list. Paths that are not watched are reported and skipped.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	failed := false
	for _, p := range args {
		if err := sess.app.Remove(cmd.Context(), sess.sink, p); err != nil {
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
