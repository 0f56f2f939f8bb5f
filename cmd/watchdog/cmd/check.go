package cmd

import (
	"github.com/spf13/cobra"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report which watched files changed",
	Long: `Recomputes the digest of every watched file and compares it with the
recorded one. Files that cannot be read are reported as UNREADABLE and stay
in the watch list. Recorded digests are never updated; use "add" to
rebaseline.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Exit 2 if any file changed or is unreadable")
}

func runCheck(cmd *cobra.Command, args []string) error {
	sum, err := sess.app.Check(cmd.Context(), sess.sink)
	if err != nil {
		if cmd.Context().Err() != nil {
			return err
		}
		return exitCode{1}
	}
	if checkStrict && !sum.Clean() {
		return exitCode{2}
	}
	return nil
}
