package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/corey/watchdog/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	flagDir     string
	flagStore   string
	flagBackend string
	flagColor   string
	flagNoColor bool
	flagLogFile string
)

var rootCmd = &cobra.Command{
	Use:   "watchdog",
	Short: "watchdog: track files and detect content changes",
	Long: `Records a SHA-256 digest for each watched file and reports which files
changed since. Without a subcommand, starts the interactive loop.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runShell,
}

// session is the per-invocation state built by setup.
type session struct {
	paths    *app.Paths
	settings app.Settings
	app      *app.App
	sink     *terminalSink
	logger   *log.Logger
	logClose io.Closer
}

var sess *session

// projectRoot returns the working directory: --dir, or cwd by default.
func projectRoot() (string, error) {
	if flagDir != "" {
		return filepath.Abs(flagDir)
	}
	return os.Getwd()
}

// setup resolves settings and wires the App for the command about to run.
func setup(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	paths := app.NewPaths(root)

	v := viper.New()
	bind := map[string]string{
		app.KeyStore:   "store",
		app.KeyBackend: "backend",
		app.KeyColor:   "color",
		app.KeyLogFile: "log-file",
	}
	for key, name := range bind {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
			return err
		}
	}

	settings, err := app.LoadSettings(v, paths)
	if err != nil {
		return err
	}

	// A read-only working directory runs without state files rather than failing.
	statusPath := paths.StatusFile
	if err := paths.EnsureDirs(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s unavailable: %v\n", paths.StateDir, err)
		statusPath = ""
		if settings.LogFile == paths.LogFile {
			settings.LogFile = ""
		}
	}
	logger, closer := app.NewLogger(settings)

	a, err := app.New(app.Config{
		WorkDir:   root,
		StorePath: settings.Store,
		Backend:   settings.Backend,
		Logger:    logger,

		StatusPath: statusPath,
	})
	if err != nil {
		closer.Close()
		return err
	}
	logger.Printf("%s: root=%s store=%s backend=%s", cmd.Name(), root, settings.Store, settings.Backend)

	sess = &session{
		paths:    paths,
		settings: settings,
		app:      a,
		sink:     newTerminalSink(cmd.OutOrStdout(), resolveColor(settings.Color, flagNoColor)),
		logger:   logger,
		logClose: closer,
	}
	return nil
}

func teardown() {
	if sess != nil {
		sess.logClose.Close()
		sess = nil
	}
}

// Execute runs the root command.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer teardown()
	return rootCmd.ExecuteContext(ctx)
}

// resetFlags restores every flag to its default and drops the context stored
// by the previous run. Cobra keeps both between Execute calls on the same
// command tree, and a subcommand reuses a stored context even after it was
// cancelled.
func resetFlags(c *cobra.Command) {
	c.SetContext(nil)
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDir, "dir", "", "Working directory (default: current directory)")
	pf.StringVar(&flagStore, "store", "", "Watch list path (default: watched_files.json or .db in the working directory)")
	pf.StringVar(&flagBackend, "backend", app.BackendJSON, "Store backend: json or bolt")
	pf.StringVar(&flagColor, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable color output")
	pf.StringVar(&flagLogFile, "log-file", "", "Log file path (default: .watchdog/log/watchdog.log)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(shellCmd)
}
