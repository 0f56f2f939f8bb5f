// Package browser is the directory navigator behind interactive `add`.
//
// It is a pure state machine: Step(state, input) -> next state. Directory
// listing goes through an injected Lister, and rendering/prompting belong to
// the caller, so navigation rules are testable without a terminal.
package browser

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// SelectFiles is the choice that switches from navigating to picking files.
const SelectFiles = "[Select files in this directory]"

// ParentDir is the choice that moves one directory up.
const ParentDir = ".."

// Lister returns the entries of a directory. os.ReadDir satisfies it.
type Lister func(dir string) ([]fs.DirEntry, error)

// State is one step of a browsing session.
type State struct {
	Dir     string   // current absolute directory
	Subdirs []string // sorted subdirectory names of Dir
	Files   []string // absolute file paths; set after SelectHere
	Message string   // notice for the user about the last step, if any

	Selected []string // final selection; set with Done
	Done     bool
}

// Input is one user action.
type Input struct {
	Kind  InputKind
	Name  string   // for Enter: subdirectory name
	Paths []string // for Pick: chosen files
}

// InputKind enumerates user actions.
type InputKind int

const (
	Up InputKind = iota
	Enter
	SelectHere
	Pick
	Cancel
)

// Start begins browsing at dir.
func Start(dir string, list Lister) State {
	return load(State{Dir: filepath.Clean(dir)}, list)
}

// Step applies in to st.
func Step(st State, in Input, list Lister) State {
	if st.Done {
		return st
	}
	switch in.Kind {
	case Up:
		parent, ok := parentOf(st.Dir)
		if !ok {
			st.Message = "Already at root directory."
			return st
		}
		return load(State{Dir: parent}, list)

	case Enter:
		if in.Name == ParentDir {
			return Step(st, Input{Kind: Up}, list)
		}
		if !slices.Contains(st.Subdirs, in.Name) {
			st.Message = "No such directory: " + in.Name
			return st
		}
		return load(State{Dir: filepath.Join(st.Dir, in.Name)}, list)

	case SelectHere:
		files, err := regularFiles(st.Dir, list)
		if err != nil {
			return moveUpAfterDenied(st, "files in "+st.Dir, list)
		}
		if len(files) == 0 {
			st.Files = nil
			st.Message = "No files here."
			return st
		}
		st.Files = files
		st.Message = ""
		return st

	case Pick:
		st.Selected = slices.Clone(in.Paths)
		st.Done = true
		st.Message = ""
		return st

	case Cancel:
		st.Selected = nil
		st.Done = true
		return st
	}
	return st
}

// Choices returns the navigation options for st: ".." unless at the root,
// then subdirectories, then SelectFiles.
func Choices(st State) []string {
	out := make([]string, 0, len(st.Subdirs)+2)
	if _, ok := parentOf(st.Dir); ok {
		out = append(out, ParentDir)
	}
	out = append(out, st.Subdirs...)
	return append(out, SelectFiles)
}

// Resolve maps a chosen option from Choices to the Input it stands for.
func Resolve(choice string) Input {
	switch choice {
	case ParentDir:
		return Input{Kind: Up}
	case SelectFiles:
		return Input{Kind: SelectHere}
	}
	return Input{Kind: Enter, Name: choice}
}

// load lists st.Dir. An unreadable directory moves up with a warning.
func load(st State, list Lister) State {
	entries, err := list(st.Dir)
	if err != nil {
		return moveUpAfterDenied(st, st.Dir, list)
	}
	st.Subdirs = st.Subdirs[:0]
	for _, e := range entries {
		if e.IsDir() {
			st.Subdirs = append(st.Subdirs, e.Name())
		}
	}
	slices.Sort(st.Subdirs)
	st.Files = nil
	return st
}

func moveUpAfterDenied(st State, what string, list Lister) State {
	parent, ok := parentOf(st.Dir)
	if !ok {
		st.Subdirs = nil
		st.Files = nil
		st.Message = "Warning: Access denied to " + what + "."
		return st
	}
	next := load(State{Dir: parent}, list)
	if next.Message == "" {
		next.Message = "Warning: Access denied to " + what + ". Moving up."
	}
	return next
}

func regularFiles(dir string, list Lister) ([]string, error) {
	entries, err := list(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func parentOf(dir string) (string, bool) {
	parent := filepath.Dir(dir)
	if parent == dir {
		return "", false
	}
	return parent, true
}

// OSLister lists real directories.
var OSLister Lister = os.ReadDir
