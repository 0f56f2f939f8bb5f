package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/corey/watchdog/internal/app"
	"github.com/corey/watchdog/internal/domain/browser"
	"github.com/corey/watchdog/internal/ports"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell [command [args]...]",
	Short: "Run the interactive loop",
	Long: `Runs the interactive command loop. Arguments are consumed as commands
before prompting, so "watchdog shell add a.txt b.txt list" adds two files,
lists the watch list and then waits for input. "exit" or end of input stops
the loop.

add and remove take every following word up to the next command word
(add, remove, list, check, exit, in any case). A file named like a command
must be given as a path, for example "add ./list".`,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()

	var p prompter
	if f, ok := in.(*os.File); ok && f == os.Stdin && isStdinTTY() {
		p = &huhPrompter{in: in, out: out, lister: browser.OSLister}
	} else {
		p = newLinePrompter(in, out)
	}

	sh := &shell{app: sess.app, sink: sess.sink, prompt: p, queue: args}
	return sh.run(cmd.Context())
}

// commandWords are the commands understood by the interactive loop.
var commandWords = []string{"add", "remove", "list", "check", "exit"}

func isCommandWord(w string) bool {
	return slices.Contains(commandWords, strings.ToLower(w))
}

// prompter asks the user for the next command and for file selections.
type prompter interface {
	// Line returns the words of the next command. io.EOF ends the loop.
	Line() ([]string, error)
	// PickFiles selects files to add, starting from dir.
	PickFiles(dir string) ([]string, error)
	// PickTracked selects entries to remove among tracked.
	PickTracked(tracked []string) ([]string, error)
}

// shell is the interactive command loop. Failures inside a command are
// reported through the sink and never stop the loop.
type shell struct {
	app    *app.App
	sink   *terminalSink
	prompt prompter
	queue  []string
}

func (s *shell) run(ctx context.Context) error {
	s.sink.banner()
	for {
		if ctx.Err() != nil {
			return nil
		}
		s.sink.rule()

		word, err := s.next()
		if err != nil {
			if isEndOfInput(err) {
				return nil
			}
			return err
		}

		switch strings.ToLower(word) {
		case "":
			continue
		case "add":
			s.add(ctx)
		case "remove":
			s.remove(ctx)
		case "list":
			_ = s.app.List(ctx, s.sink)
		case "check":
			_, _ = s.app.Check(ctx, s.sink)
		case "exit":
			s.sink.goodbye()
			return nil
		default:
			s.sink.Report(ports.Event{Kind: ports.EventError, Command: word, Err: errUnknownCommand})
		}
	}
}

// next pops the next queued word, prompting for a new line when the queue
// is empty. A blank line yields "".
func (s *shell) next() (string, error) {
	if len(s.queue) == 0 {
		words, err := s.prompt.Line()
		if err != nil {
			return "", err
		}
		s.queue = words
	}
	if len(s.queue) == 0 {
		return "", nil
	}
	w := s.queue[0]
	s.queue = s.queue[1:]
	return w, nil
}

// operands pops queued words up to the next command word.
func (s *shell) operands() []string {
	var out []string
	for len(s.queue) > 0 && !isCommandWord(s.queue[0]) {
		out = append(out, s.queue[0])
		s.queue = s.queue[1:]
	}
	return out
}

func (s *shell) add(ctx context.Context) {
	paths := s.operands()
	if len(paths) == 0 {
		picked, err := s.prompt.PickFiles(s.app.WorkDir)
		if err != nil {
			s.pickFailed("add", err)
			return
		}
		paths = picked
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = s.app.Add(ctx, s.sink, p)
	}
}

func (s *shell) remove(ctx context.Context) {
	paths := s.operands()
	if len(paths) == 0 {
		tracked, err := s.app.Tracked(ctx, s.sink)
		if err != nil {
			return
		}
		if len(tracked) == 0 {
			s.sink.Report(ports.Event{Kind: ports.EventEmpty, Command: "remove"})
			return
		}
		picked, err := s.prompt.PickTracked(tracked)
		if err != nil {
			s.pickFailed("remove", err)
			return
		}
		paths = picked
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = s.app.Remove(ctx, s.sink, p)
	}
}

// pickFailed reports a picker error. An aborted picker cancels only the
// current command; end of input is left for the next prompt to notice.
func (s *shell) pickFailed(command string, err error) {
	if isEndOfInput(err) {
		return
	}
	s.sink.Report(ports.Event{Kind: ports.EventError, Command: command, Err: err})
}

func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, huh.ErrUserAborted)
}

// huhPrompter drives the loop with huh selects on a terminal.
type huhPrompter struct {
	in     io.Reader
	out    io.Writer
	lister browser.Lister
}

func (p *huhPrompter) run(field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).
		WithInput(p.in).
		WithOutput(p.out).
		Run()
}

func (p *huhPrompter) Line() ([]string, error) {
	var choice string
	sel := huh.NewSelect[string]().
		Title("What would you like to do?").
		Options(huh.NewOptions(commandWords...)...).
		Value(&choice)
	if err := p.run(sel); err != nil {
		return nil, err
	}
	return []string{choice}, nil
}

// PickFiles walks the directory browser until files are picked or the
// user backs out of an empty selection.
func (p *huhPrompter) PickFiles(dir string) ([]string, error) {
	st := browser.Start(dir, p.lister)
	for !st.Done {
		if len(st.Files) > 0 {
			var picked []string
			opts := make([]huh.Option[string], len(st.Files))
			for i, f := range st.Files {
				opts[i] = huh.NewOption(filepath.Base(f), f)
			}
			ms := huh.NewMultiSelect[string]().
				Title("Select files to watch in " + st.Dir).
				Options(opts...).
				Value(&picked)
			if err := p.run(ms); err != nil {
				return nil, err
			}
			st = browser.Step(st, browser.Input{Kind: browser.Pick, Paths: picked}, p.lister)
			continue
		}

		var choice string
		sel := huh.NewSelect[string]().
			Title("Current directory: " + st.Dir).
			Description(st.Message).
			Options(huh.NewOptions(browser.Choices(st)...)...).
			Value(&choice)
		if err := p.run(sel); err != nil {
			return nil, err
		}
		st = browser.Step(st, browser.Resolve(choice), p.lister)
	}
	return st.Selected, nil
}

func (p *huhPrompter) PickTracked(tracked []string) ([]string, error) {
	var picked []string
	ms := huh.NewMultiSelect[string]().
		Title("Select files to stop watching").
		Options(huh.NewOptions(tracked...)...).
		Value(&picked)
	if err := p.run(ms); err != nil {
		return nil, err
	}
	return picked, nil
}

// linePrompter reads commands line by line, for pipes and scripts.
type linePrompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{sc: bufio.NewScanner(in), out: out}
}

func (p *linePrompter) Line() ([]string, error) {
	fmt.Fprint(p.out, "> ")
	return p.fields()
}

func (p *linePrompter) PickFiles(string) ([]string, error) {
	fmt.Fprint(p.out, "Path(s) to add: ")
	return p.fields()
}

// PickTracked accepts tracked paths or their 1-based numbers.
func (p *linePrompter) PickTracked(tracked []string) ([]string, error) {
	for i, path := range tracked {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, path)
	}
	fmt.Fprint(p.out, "Path(s) or number(s) to remove: ")
	words, err := p.fields()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n, err := strconv.Atoi(w); err == nil && n >= 1 && n <= len(tracked) {
			out = append(out, tracked[n-1])
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (p *linePrompter) fields() ([]string, error) {
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return strings.Fields(p.sc.Text()), nil
}
