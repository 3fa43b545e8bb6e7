package fsguard

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteFileRefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	g := New(dir, Options{})

	require.NoError(t, g.WriteFile("src/app.ts", "first"))

	err := g.WriteFile("src/app.ts", "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileExists))

	var existsErr *FileExistsError
	require.True(t, errors.As(err, &existsErr))
	assert.Equal(t, "src/app.ts", existsErr.Path)
	assert.Contains(t, err.Error(), "src/app.ts")

	assert.Equal(t, "first", readFile(t, filepath.Join(dir, "src", "app.ts")))
}

func TestWriteFileForceOverwrites(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, New(dir, Options{}).WriteFile("a.ts", "first"))

	g := New(dir, Options{Force: true})
	require.NoError(t, g.WriteFile("a.ts", "second"))

	assert.Equal(t, "second", readFile(t, filepath.Join(dir, "a.ts")))
	assert.Equal(t, []Change{{Kind: ChangeOverwrite, Path: "a.ts"}}, g.Changes())
}

func TestWriteFileTrimsLeadingWhitespace(t *testing.T) {
	dir := t.TempDir()
	g := New(dir, Options{})

	require.NoError(t, g.WriteFile("deep/nested/file.ts", "\n\n  export const x = 1;\n"))

	assert.Equal(t, "export const x = 1;\n", readFile(t, filepath.Join(dir, "deep", "nested", "file.ts")))
}

func TestEnsureDirIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	for _, opts := range []Options{{}, {Force: true}} {
		g := New(dir, opts)
		require.NoError(t, g.EnsureDir("src/routes/api"))
		require.NoError(t, g.EnsureDir("src/routes/api"))
	}

	info, err := os.Stat(filepath.Join(dir, "src", "routes", "api"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDryRunDoesNotTouchDisk(t *testing.T) {
	dir := t.TempDir()
	g := New(dir, Options{DryRun: true})

	require.NoError(t, g.EnsureDir("src/modules"))
	require.NoError(t, g.WriteFile("src/app.ts", "  app"))
	require.NoError(t, g.Replace("src/routes/api/index.ts", []byte("registry")))
	require.NoError(t, g.Append("modules.log", []byte("line\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.True(t, g.Exists("src/modules"))
	assert.True(t, g.Exists("src/app.ts"))

	data, err := g.ReadFile("src/app.ts")
	require.NoError(t, err)
	assert.Equal(t, "app", string(data))

	assert.Equal(t, []Change{
		{Kind: ChangeMkdir, Path: "src/modules"},
		{Kind: ChangeCreate, Path: "src/app.ts"},
		{Kind: ChangeUpdate, Path: "src/routes/api/index.ts"},
		{Kind: ChangeAppend, Path: "modules.log"},
	}, g.Changes())
}

func TestDryRunReportsSameConflicts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte("real"), 0644))

	realErr := New(dir, Options{}).WriteFile("a.ts", "x")
	dryErr := New(dir, Options{DryRun: true}).WriteFile("a.ts", "x")

	require.Error(t, realErr)
	require.Error(t, dryErr)
	assert.Equal(t, realErr.Error(), dryErr.Error())

	// A file planned earlier in the same dry run also counts as existing.
	g := New(dir, Options{DryRun: true})
	require.NoError(t, g.WriteFile("b.ts", "planned"))
	assert.ErrorIs(t, g.WriteFile("b.ts", "again"), ErrFileExists)

	assert.Equal(t, "real", readFile(t, filepath.Join(dir, "a.ts")))
}

func TestAppend(t *testing.T) {
	dir := t.TempDir()
	g := New(dir, Options{})

	require.NoError(t, g.Append("modules.log", []byte("one\n")))
	require.NoError(t, g.Append("modules.log", []byte("two\n")))
	assert.Equal(t, "one\ntwo\n", readFile(t, filepath.Join(dir, "modules.log")))

	dry := New(dir, Options{DryRun: true})
	require.NoError(t, dry.Append("modules.log", []byte("three\n")))

	data, err := dry.ReadFile("modules.log")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(data))
	assert.Equal(t, "one\ntwo\n", readFile(t, filepath.Join(dir, "modules.log")))
}

func TestReplaceSkipsExistenceCheck(t *testing.T) {
	dir := t.TempDir()
	g := New(dir, Options{})

	require.NoError(t, g.WriteFile("modules.json", "{}"))
	require.NoError(t, g.Replace("modules.json", []byte("{\"modules\": []}")))

	assert.Equal(t, "{\"modules\": []}", readFile(t, filepath.Join(dir, "modules.json")))
}

func TestWriteFileIfAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("mine"), 0644))

	g := New(dir, Options{Force: true})

	written, err := g.WriteFileIfAbsent("package.json", "generated")
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, "mine", readFile(t, filepath.Join(dir, "package.json")))

	written, err = g.WriteFileIfAbsent("tsconfig.json", "\n{}")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "{}", readFile(t, filepath.Join(dir, "tsconfig.json")))

	assert.Equal(t, []Change{
		{Kind: ChangeSkip, Path: "package.json"},
		{Kind: ChangeCreate, Path: "tsconfig.json"},
	}, g.Changes())
}
