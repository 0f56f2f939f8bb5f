package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/corey/watchdog/internal/ports"
	"github.com/muesli/termenv"
)

// styles holds the lipgloss styles for terminal output. With color disabled
// every style renders plain text.
type styles struct {
	ok     lipgloss.Style
	bad    lipgloss.Style
	warn   lipgloss.Style
	info   lipgloss.Style
	dim    lipgloss.Style
	banner lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		bad:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		info:   r.NewStyle().Foreground(lipgloss.Color("4")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("8")),
		banner: r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// terminalSink renders report events as lines of text.
//
//	Added: /home/me/notes.txt
//	File: /home/me/notes.txt Hash: e3b0c442…
//	OK: /home/me/notes.txt
//	CHANGED: /etc/hosts
//	UNREADABLE: /tmp/gone.txt (file not found: /tmp/gone.txt)
//	3 checked │ 1 ok │ 1 changed │ 1 unreadable
type terminalSink struct {
	w  io.Writer
	st styles
}

func newTerminalSink(w io.Writer, color bool) *terminalSink {
	return &terminalSink{w: w, st: newStyles(w, color)}
}

// Report implements ports.Sink.
func (s *terminalSink) Report(ev ports.Event) {
	fmt.Fprintln(s.w, s.format(ev))
}

func (s *terminalSink) format(ev ports.Event) string {
	st := s.st
	switch ev.Kind {
	case ports.EventAdded:
		return st.ok.Render("Added:") + " " + ev.Path
	case ports.EventRemoved:
		return st.ok.Render("Removed:") + " " + ev.Path
	case ports.EventNotTracked:
		return st.warn.Render("Warning:") + " Not in watch list: " + ev.Path
	case ports.EventEntry:
		return st.ok.Render("File:") + " " + ev.Path + " " + st.info.Render("Hash:") + " " + ev.Digest
	case ports.EventStatus:
		return s.formatStatus(ev)
	case ports.EventSummary:
		return s.formatSummary(ev.Summary)
	case ports.EventEmpty:
		return st.warn.Render(emptyNotice(ev.Command))
	case ports.EventWarning:
		if errors.Is(ev.Err, ports.ErrCorruptedStore) {
			return st.warn.Render("Warning:") + " Corrupted watch list file " + ev.Path + ". Starting fresh."
		}
		return st.warn.Render("Warning:") + " " + errText(ev.Err)
	case ports.EventError:
		return s.formatError(ev)
	}
	return ""
}

func (s *terminalSink) formatStatus(ev ports.Event) string {
	switch ev.Status {
	case ports.Unchanged:
		return s.st.ok.Render("OK:") + " " + ev.Path
	case ports.Changed:
		return s.st.bad.Render("CHANGED:") + " " + ev.Path
	default:
		line := s.st.warn.Render("UNREADABLE:") + " " + ev.Path
		if ev.Err != nil {
			line += " " + s.st.dim.Render("("+errText(ev.Err)+")")
		}
		return line
	}
}

func (s *terminalSink) formatSummary(sum *ports.Summary) string {
	if sum == nil {
		return ""
	}
	parts := []string{
		fmt.Sprintf("%d checked", sum.Total),
		s.st.ok.Render(fmt.Sprintf("%d ok", sum.Unchanged)),
	}
	if sum.Changed > 0 {
		parts = append(parts, s.st.bad.Render(fmt.Sprintf("%d changed", sum.Changed)))
	}
	if sum.Unreadable > 0 {
		parts = append(parts, s.st.warn.Render(fmt.Sprintf("%d unreadable", sum.Unreadable)))
	}
	return strings.Join(parts, " │ ")
}

func (s *terminalSink) formatError(ev ports.Event) string {
	label := s.st.bad.Render("Error:")
	switch {
	case errors.Is(ev.Err, errUnknownCommand):
		return s.st.bad.Render("Unknown command:") + " " + ev.Command
	case errors.Is(ev.Err, ports.ErrFileNotFound):
		return label + " File not found: " + ev.Path
	case ev.Err != nil:
		return label + " " + errText(ev.Err)
	}
	return label + " " + ev.Command + " failed"
}

func emptyNotice(command string) string {
	switch command {
	case "check":
		return "No files to check."
	case "remove":
		return "No files to remove."
	}
	return "No files are currently being watched."
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// banner is printed when the interactive loop starts.
const banner = `
 __        __    _       _     ____
 \ \      / /_ _| |_ ___| |__ |  _ \  ___   __ _
  \ \ /\ / / _' | __/ __| '_ \| | | |/ _ \ / _' |
   \ V  V / (_| | || (__| | | | |_| | (_) | (_| |
    \_/\_/ \__,_|\__\___|_| |_|____/ \___/ \__, |
                                           |___/
   track files, detect content changes
`

func (s *terminalSink) banner() {
	fmt.Fprintln(s.w, s.st.banner.Render(banner))
}

func (s *terminalSink) goodbye() {
	fmt.Fprintln(s.w, s.st.ok.Render("Goodbye!"))
}

// rule separates interactive commands.
func (s *terminalSink) rule() {
	fmt.Fprintln(s.w, s.st.dim.Render(strings.Repeat("─", 60)))
}
