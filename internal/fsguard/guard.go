// Package fsguard decides whether a generator write may proceed and performs it.
//
// Every mutation of a project goes through a Guard. In dry-run mode the Guard
// takes the same decisions as a real run but records the result in an
// in-memory overlay instead of touching the disk, so later steps of the same
// invocation see the planned files.
package fsguard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ErrFileExists is matched by *FileExistsError.
var ErrFileExists = errors.New("file already exists")

// FileExistsError is returned when a write targets an existing file and
// overwriting was not requested.
type FileExistsError struct {
	Path string
}

func (e *FileExistsError) Error() string {
	return fmt.Sprintf("file already exists: %s (use --force to overwrite)", e.Path)
}

func (e *FileExistsError) Is(target error) bool {
	return target == ErrFileExists
}

// Options are fixed for one invocation.
type Options struct {
	Force  bool
	DryRun bool
}

// ChangeKind describes what a Guard did (or would do) to a path.
type ChangeKind string

const (
	ChangeMkdir     ChangeKind = "mkdir"
	ChangeCreate    ChangeKind = "create"
	ChangeOverwrite ChangeKind = "overwrite"
	ChangeUpdate    ChangeKind = "update"
	ChangeAppend    ChangeKind = "append"
	ChangeSkip      ChangeKind = "skip"
)

// Change is one recorded filesystem effect. Path is relative to the Guard root
// when the caller passed a relative path.
type Change struct {
	Kind ChangeKind
	Path string
}

// Guard applies Options to every filesystem mutation under root.
type Guard struct {
	root    string
	opts    Options
	files   map[string][]byte
	dirs    map[string]bool
	changes []Change
}

// New creates a guard rooted at root.
func New(root string, opts Options) *Guard {
	return &Guard{
		root:  root,
		opts:  opts,
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// Root returns the project directory this guard writes into.
func (g *Guard) Root() string {
	return g.root
}

// Options returns the options the guard was created with.
func (g *Guard) Options() Options {
	return g.opts
}

// Changes returns the effects recorded so far, in order.
func (g *Guard) Changes() []Change {
	out := make([]Change, len(g.changes))
	copy(out, g.changes)
	return out
}

// Path resolves name against the guard root.
func (g *Guard) Path(name string) string {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(g.root, name)
}

// Exists reports whether name exists on disk or in the dry-run overlay.
func (g *Guard) Exists(name string) bool {
	full := g.Path(name)
	if _, ok := g.files[full]; ok {
		return true
	}
	if g.dirs[full] {
		return true
	}
	_, err := os.Stat(full)
	return err == nil
}

// ReadFile reads name, preferring content planned earlier in a dry run.
func (g *Guard) ReadFile(name string) ([]byte, error) {
	full := g.Path(name)
	if data, ok := g.files[full]; ok {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	return os.ReadFile(full)
}

// EnsureDir creates name and any missing parents. An existing directory is
// never an error, with or without force.
func (g *Guard) EnsureDir(name string) error {
	full := g.Path(name)
	if g.Exists(name) {
		return nil
	}

	if g.opts.DryRun {
		g.planDir(full)
		g.record(ChangeMkdir, name)
		return nil
	}

	if err := os.MkdirAll(full, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", name, err)
	}
	g.record(ChangeMkdir, name)
	return nil
}

// WriteFile writes content to name with leading whitespace trimmed. It fails
// with *FileExistsError when name exists and Force is not set.
func (g *Guard) WriteFile(name, content string) error {
	exists := g.Exists(name)
	if exists && !g.opts.Force {
		return &FileExistsError{Path: name}
	}

	kind := ChangeCreate
	if exists {
		kind = ChangeOverwrite
	}

	data := []byte(strings.TrimLeftFunc(content, unicode.IsSpace))
	if err := g.put(name, data); err != nil {
		return err
	}
	g.record(kind, name)
	return nil
}

// WriteFileIfAbsent writes content to name only when nothing exists there
// yet. An existing file is left alone and recorded as skipped, even with
// Force set. It reports whether the file was written.
func (g *Guard) WriteFileIfAbsent(name, content string) (bool, error) {
	if g.Exists(name) {
		g.record(ChangeSkip, name)
		return false, nil
	}

	data := []byte(strings.TrimLeftFunc(content, unicode.IsSpace))
	if err := g.put(name, data); err != nil {
		return false, err
	}
	g.record(ChangeCreate, name)
	return true, nil
}

// Replace persists data to a file the generator owns (the route registry, the
// ledger state) without the existence check.
func (g *Guard) Replace(name string, data []byte) error {
	if err := g.put(name, data); err != nil {
		return err
	}
	g.record(ChangeUpdate, name)
	return nil
}

// Append adds data to the end of name, creating it if needed.
func (g *Guard) Append(name string, data []byte) error {
	full := g.Path(name)

	if g.opts.DryRun {
		current, err := g.ReadFile(name)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		g.files[full] = append(current, data...)
		g.record(ChangeAppend, name)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	file, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to append to %s: %w", name, err)
	}
	g.record(ChangeAppend, name)
	return nil
}

func (g *Guard) put(name string, data []byte) error {
	full := g.Path(name)

	if g.opts.DryRun {
		g.planDir(filepath.Dir(full))
		g.files[full] = data
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// planDir marks dir and its parents as existing in the overlay.
func (g *Guard) planDir(dir string) {
	for dir != "" && !g.dirs[dir] {
		g.dirs[dir] = true
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (g *Guard) record(kind ChangeKind, name string) {
	g.changes = append(g.changes, Change{Kind: kind, Path: filepath.ToSlash(name)})
}
