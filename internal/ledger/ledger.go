// Package ledger records every module the generator registers.
//
// The ledger is two files: an append-only text log that receives one line per
// tracking call, and a JSON state document holding one entry per module path.
// The log is a raw event trace and is never deduplicated; the state document
// is.
package ledger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
)

// ErrCorruptState is matched by *CorruptStateError.
var ErrCorruptState = errors.New("corrupt module state")

// CorruptStateError is returned when the state document exists but cannot be
// decoded. It is never recovered from: overwriting the file would lose history.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("invalid %s, cannot continue: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

func (e *CorruptStateError) Is(target error) bool {
	return target == ErrCorruptState
}

// Source tells which command created a module.
type Source string

const (
	SourceInit   Source = "init"
	SourceCreate Source = "create"
)

// ModuleEntry is one tracked module, keyed by ModulePath.
type ModuleEntry struct {
	Name       string `json:"name"`
	ModulePath string `json:"modulePath"`
	Route      string `json:"route"`
	CreatedBy  Source `json:"createdBy"`

	// Extra holds keys this package does not know about. They are written
	// back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

func (e *ModuleEntry) UnmarshalJSON(data []byte) error {
	type plain ModuleEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownKeys(data, "name", "modulePath", "route", "createdBy")
	if err != nil {
		return err
	}
	*e = ModuleEntry(p)
	e.Extra = extra
	return nil
}

func (e ModuleEntry) MarshalJSON() ([]byte, error) {
	type plain ModuleEntry
	return withKeys(plain(e), e.Extra)
}

// State is the JSON state document.
type State struct {
	Modules []ModuleEntry `json:"modules"`

	// Extra holds top-level keys other than "modules".
	Extra map[string]json.RawMessage `json:"-"`
}

func (s *State) UnmarshalJSON(data []byte) error {
	type plain State
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownKeys(data, "modules")
	if err != nil {
		return err
	}
	*s = State(p)
	s.Extra = extra
	return nil
}

func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	return withKeys(plain(s), s.Extra)
}

// unknownKeys returns the members of the JSON object data not named in known.
func unknownKeys(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, key := range known {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// withKeys encodes v, which must encode to a non-empty object, and appends
// extra members in key order.
func withKeys(v any, extra map[string]json.RawMessage) ([]byte, error) {
	out, err := encode(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out = out[:len(out)-1]
	for _, key := range keys {
		name, err := encode(key)
		if err != nil {
			return nil, err
		}
		out = append(out, ',')
		out = append(out, name...)
		out = append(out, ':')
		out = append(out, extra[key]...)
	}
	return append(out, '}'), nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Find returns the entry for modulePath.
func (s *State) Find(modulePath string) (ModuleEntry, bool) {
	for _, m := range s.Modules {
		if m.ModulePath == modulePath {
			return m, true
		}
	}
	return ModuleEntry{}, false
}

// Ledger tracks modules in the log and state files of one project.
type Ledger struct {
	LogPath   string
	StatePath string

	now func() time.Time
}

// New creates a ledger over the given log and state paths, relative to the
// guard root.
func New(logPath, statePath string) *Ledger {
	return &Ledger{
		LogPath:   logPath,
		StatePath: statePath,
		now:       time.Now,
	}
}

// WithClock returns a copy of the ledger that timestamps log lines with now.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	clone := *l
	clone.now = now
	return &clone
}

// LogLine formats the log entry for one tracking call.
func LogLine(at time.Time, entry ModuleEntry) string {
	return fmt.Sprintf("[%s] %s -> module: %s | route: %s\n",
		at.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		entry.CreatedBy,
		entry.Name,
		entry.Route,
	)
}

// Track records a module. The log line is appended on every call; the state
// document gains an entry only when modulePath is not tracked yet and is not
// rewritten otherwise. Track reports whether a new entry was added.
//
// The state document is validated before anything is written, so a corrupt
// document leaves the log untouched.
func (l *Ledger) Track(g *fsguard.Guard, name, modulePath, route string, createdBy Source) (bool, error) {
	state, err := l.Load(g)
	if err != nil {
		return false, err
	}

	entry := ModuleEntry{
		Name:       name,
		ModulePath: modulePath,
		Route:      route,
		CreatedBy:  createdBy,
	}

	if err := g.Append(l.LogPath, []byte(LogLine(l.now(), entry))); err != nil {
		return false, fmt.Errorf("failed to append to module log: %w", err)
	}

	if _, exists := state.Find(modulePath); exists {
		return false, nil
	}

	state.Modules = append(state.Modules, entry)
	if err := l.save(g, state); err != nil {
		return false, err
	}
	return true, nil
}

// Load reads the state document. A missing document yields an empty state.
func (l *Ledger) Load(g *fsguard.Guard) (*State, error) {
	state := &State{Modules: []ModuleEntry{}}
	if !g.Exists(l.StatePath) {
		return state, nil
	}

	data, err := g.ReadFile(l.StatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.StatePath, err)
	}

	if err := json.Unmarshal(data, state); err != nil {
		return nil, &CorruptStateError{Path: l.StatePath, Err: err}
	}
	if state.Modules == nil {
		state.Modules = []ModuleEntry{}
	}
	return state, nil
}

func (l *Ledger) save(g *fsguard.Guard, state *State) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("failed to marshal module state: %w", err)
	}

	if err := g.Replace(l.StatePath, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write module state: %w", err)
	}
	return nil
}

// Tail returns up to n of the most recent log lines.
func (l *Ledger) Tail(g *fsguard.Guard, n int) ([]string, error) {
	if n <= 0 || !g.Exists(l.LogPath) {
		return nil, nil
	}

	data, err := g.ReadFile(l.LogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.LogPath, err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", l.LogPath, err)
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
