package cmd

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/corey/watchdog/internal/adapters/jsonfile"
	"github.com/corey/watchdog/internal/ports"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show watched files and their digests",
	Long: `Lists every watched path with its recorded digest, in insertion order.

Formats:
  text  one "File: <path> Hash: <digest>" line per entry (default)
  json  same layout as watched_files.json
  yaml  a mapping of path to digest
  toml  an [[entry]] table per path`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text, json, yaml, toml")
}

func runList(cmd *cobra.Command, args []string) error {
	if listFormat == "text" {
		if err := sess.app.List(cmd.Context(), sess.sink); err != nil {
			return exitCode{1}
		}
		return nil
	}

	encode, ok := listEncoders[listFormat]
	if !ok {
		return fmt.Errorf("unknown format %q (want text, json, yaml or toml)", listFormat)
	}
	// Notices go to stderr so stdout stays machine-readable.
	warn := newTerminalSink(cmd.ErrOrStderr(), resolveColor(sess.settings.Color, flagNoColor))
	list, err := sess.app.Snapshot(cmd.Context(), warn)
	if err != nil {
		return exitCode{1}
	}
	return encode(cmd.OutOrStdout(), list)
}

var listEncoders = map[string]func(io.Writer, *ports.WatchList) error{
	"json": writeJSON,
	"yaml": writeYAML,
	"toml": writeTOML,
}

func writeJSON(w io.Writer, list *ports.WatchList) error {
	data, err := jsonfile.Encode(list)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeYAML emits an ordered mapping; a Go map would lose insertion order.
func writeYAML(w io.Writer, list *ports.WatchList) error {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for p, d := range list.All() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: d},
		)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

type tomlDoc struct {
	Entry []ports.Entry `toml:"entry"`
}

func writeTOML(w io.Writer, list *ports.WatchList) error {
	return toml.NewEncoder(w).Encode(tomlDoc{Entry: list.Entries()})
}
