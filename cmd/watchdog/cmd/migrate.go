package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/corey/watchdog/internal/app"
	"github.com/corey/watchdog/internal/ports"
	"github.com/spf13/cobra"
)

var (
	migrateTo   string
	migrateDest string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate --to json|bolt",
	Short: "Copy the watch list into another store backend",
	Long: `Copies every entry of the current store into a store of the given
backend. The destination is overwritten; the source is left untouched.
Point --backend (or the config file) at the new store afterwards.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "Destination backend: json or bolt")
	migrateCmd.Flags().StringVar(&migrateDest, "dest", "", "Destination path (default: the backend's default store file)")
	_ = migrateCmd.MarkFlagRequired("to")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dest := migrateDest
	switch {
	case dest == "":
		dest = sess.paths.StorePath(migrateTo)
	case !filepath.IsAbs(dest):
		dest = filepath.Join(sess.paths.Root, dest)
	}
	if filepath.Clean(dest) == filepath.Clean(sess.app.Store.Location()) {
		return fmt.Errorf("destination %s is the current store", dest)
	}

	dst, err := app.NewStore(migrateTo, dest, sess.logger)
	if err != nil {
		return err
	}
	// Only an absent or readable watch list of the target backend may be overwritten.
	if _, err := dst.Load(); err != nil {
		if errors.Is(err, ports.ErrCorruptedStore) {
			return fmt.Errorf("destination %s exists and is not a %s watch list", dest, migrateTo)
		}
		return err
	}
	n, err := sess.app.Migrate(cmd.Context(), sess.sink, dst)
	if err != nil {
		return exitCode{1}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d entries to %s\n", sess.sink.st.ok.Render("Migrated"), n, dst.Location())
	return nil
}
