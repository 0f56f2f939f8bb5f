package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the working directory, store, backend, config file and log file in effect.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	s := sess.settings
	st := sess.sink.st
	w := cmd.OutOrStdout()

	configFile := s.ConfigFile
	if configFile == "" {
		configFile = st.dim.Render("(none)")
	}
	logFile := s.LogFile
	if logFile == "" {
		logFile = st.dim.Render("(disabled)")
	}
	storeState := st.warn.Render("not created yet")
	if _, err := os.Stat(s.Store); err == nil {
		storeState = st.ok.Render("present")
	}

	fmt.Fprintln(w, st.banner.Bold(true).Render("watchdog config"))
	fmt.Fprintf(w, "  Root:     %s\n", sess.paths.Root)
	fmt.Fprintf(w, "  Config:   %s\n", configFile)
	fmt.Fprintf(w, "  Backend:  %s\n", s.Backend)
	fmt.Fprintf(w, "  Store:    %s (%s)\n", s.Store, storeState)
	fmt.Fprintf(w, "  Log:      %s\n", logFile)
	fmt.Fprintf(w, "  Color:    %s\n", s.Color)

	lastCheck := st.dim.Render("(never)")
	if last := sess.app.LastCheck(); last != nil {
		lastCheck = last.Line()
		if !last.Summary.Clean() {
			lastCheck = st.warn.Render(lastCheck)
		}
	}
	fmt.Fprintf(w, "  Checked:  %s\n", lastCheck)
	return nil
}
