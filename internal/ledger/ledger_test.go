package ledger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
)

var fixedTime = time.Date(2026, 10, 17, 9, 30, 0, 123_000_000, time.UTC)

func newLedger() *Ledger {
	return New("modules.log", "modules.json").WithClock(func() time.Time { return fixedTime })
}

func readState(t *testing.T, dir string) State {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "modules.json"))
	require.NoError(t, err)
	var state State
	require.NoError(t, json.Unmarshal(data, &state))
	return state
}

func readLog(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "modules.log"))
	require.NoError(t, err)
	return string(data)
}

func TestLogLineFormat(t *testing.T) {
	line := LogLine(fixedTime, ModuleEntry{Name: "user", Route: "/users", CreatedBy: SourceCreate})
	assert.Equal(t, "[2026-10-17T09:30:00.123Z] create -> module: user | route: /users\n", line)
}

func TestTrackCreatesState(t *testing.T) {
	dir := t.TempDir()
	g := fsguard.New(dir, fsguard.Options{})

	added, err := newLedger().Track(g, "user", "user", "/users", SourceCreate)
	require.NoError(t, err)
	assert.True(t, added)

	state := readState(t, dir)
	assert.Equal(t, []ModuleEntry{{
		Name:       "user",
		ModulePath: "user",
		Route:      "/users",
		CreatedBy:  SourceCreate,
	}}, state.Modules)

	raw, err := os.ReadFile(filepath.Join(dir, "modules.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"modules\": [\n    {\n      \"name\": \"user\","))
}

func TestTrackDeduplicatesStateButNotLog(t *testing.T) {
	dir := t.TempDir()
	g := fsguard.New(dir, fsguard.Options{})
	l := newLedger()

	added, err := l.Track(g, "user", "user", "/users", SourceCreate)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = l.Track(g, "user", "user", "/users", SourceCreate)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Len(t, readState(t, dir).Modules, 1)
	assert.Equal(t, 2, strings.Count(readLog(t, dir), "\n"))
}

func TestTrackKeepsExistingModules(t *testing.T) {
	dir := t.TempDir()
	g := fsguard.New(dir, fsguard.Options{})
	l := newLedger()

	_, err := l.Track(g, "test", "test", "/tests", SourceInit)
	require.NoError(t, err)
	_, err = l.Track(g, "product", "shop/product", "/products", SourceCreate)
	require.NoError(t, err)

	state := readState(t, dir)
	require.Len(t, state.Modules, 2)
	assert.Equal(t, "test", state.Modules[0].ModulePath)
	assert.Equal(t, SourceInit, state.Modules[0].CreatedBy)
	assert.Equal(t, "shop/product", state.Modules[1].ModulePath)
}

func TestTrackCorruptStateLeavesLogUntouched(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modules.log"), []byte("earlier\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modules.json"), []byte("{not json"), 0644))
	g := fsguard.New(dir, fsguard.Options{})

	_, err := newLedger().Track(g, "user", "user", "/users", SourceCreate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptState))

	var corrupt *CorruptStateError
	require.True(t, errors.As(err, &corrupt))
	assert.Equal(t, "modules.json", corrupt.Path)

	assert.Equal(t, "earlier\n", readLog(t, dir))

	raw, err := os.ReadFile(filepath.Join(dir, "modules.json"))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestTrackCorruptStateInDryRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modules.json"), []byte("[]"), 0644))
	g := fsguard.New(dir, fsguard.Options{DryRun: true})

	_, err := newLedger().Track(g, "user", "user", "/users", SourceCreate)
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestTrackDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	g := fsguard.New(dir, fsguard.Options{DryRun: true})
	l := newLedger()

	added, err := l.Track(g, "user", "user", "/users", SourceCreate)
	require.NoError(t, err)
	assert.True(t, added)

	_, err = os.Stat(filepath.Join(dir, "modules.log"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "modules.json"))
	assert.True(t, os.IsNotExist(err))

	state, err := l.Load(g)
	require.NoError(t, err)
	assert.Len(t, state.Modules, 1)
}

func TestLoadMissingState(t *testing.T) {
	state, err := newLedger().Load(fsguard.New(t.TempDir(), fsguard.Options{}))
	require.NoError(t, err)
	assert.NotNil(t, state.Modules)
	assert.Empty(t, state.Modules)
}

func TestTail(t *testing.T) {
	dir := t.TempDir()
	g := fsguard.New(dir, fsguard.Options{})
	l := newLedger()

	lines, err := l.Tail(g, 5)
	require.NoError(t, err)
	assert.Empty(t, lines)

	for _, name := range []string{"a", "b", "c"} {
		_, err := l.Track(g, name, name, "/"+name+"s", SourceCreate)
		require.NoError(t, err)
	}

	lines, err = l.Tail(g, 2)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "module: b")
	assert.Contains(t, lines[1], "module: c")
}

const stateWithUnknownKeys = `{"version":2,"modules":[{"name":"user","modulePath":"user","route":"/users","createdBy":"create","owner":"team-x"}]}`

func TestTrackExistingModuleLeavesStateUntouched(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "modules.json")
	require.NoError(t, os.WriteFile(statePath, []byte(stateWithUnknownKeys), 0644))
	g := fsguard.New(dir, fsguard.Options{})

	added, err := newLedger().Track(g, "user", "user", "/users", SourceCreate)
	require.NoError(t, err)
	assert.False(t, added)

	raw, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Equal(t, stateWithUnknownKeys, string(raw))
	assert.Contains(t, readLog(t, dir), "create -> module: user | route: /users")
}

func TestTrackKeepsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modules.json"), []byte(stateWithUnknownKeys), 0644))
	g := fsguard.New(dir, fsguard.Options{})

	added, err := newLedger().Track(g, "product", "product", "/products", SourceCreate)
	require.NoError(t, err)
	assert.True(t, added)

	raw, err := os.ReadFile(filepath.Join(dir, "modules.json"))
	require.NoError(t, err)

	var doc struct {
		Version int              `json:"version"`
		Modules []map[string]any `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 2, doc.Version)
	require.Len(t, doc.Modules, 2)
	assert.Equal(t, "team-x", doc.Modules[0]["owner"])
	assert.Equal(t, "product", doc.Modules[1]["name"])
	assert.NotContains(t, doc.Modules[1], "owner")

	state := readState(t, dir)
	assert.Equal(t, json.RawMessage(`"team-x"`), state.Modules[0].Extra["owner"])
	assert.Equal(t, json.RawMessage(`2`), state.Extra["version"])
}
