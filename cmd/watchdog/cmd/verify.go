package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the watch list itself for malformed entries",
	Long: `Reports stored entries whose path is not absolute or whose digest is not
64 lowercase hex characters, as can happen after hand-editing the store.
Exits 1 if any are found. Watched files are not read.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	n, err := sess.app.Verify(cmd.Context(), sess.sink)
	if err != nil || n > 0 {
		return exitCode{1}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", sess.sink.st.ok.Render("Store OK:"), sess.app.Store.Location())
	return nil
}
