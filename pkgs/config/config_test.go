package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtml-lang/xtml/pkgs/types"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
defines:
  site:
    value: "Example"
  pages:
    value: "3"
    type: number

output_dir: ./dist
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./dist", cfg.OutputDir)
	assert.Equal(t, Define{Value: "Example"}, cfg.Defines["site"])
	assert.Equal(t, Define{Value: "3", Type: "number"}, cfg.Defines["pages"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "ghost.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "defines: [not: a map")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadNumberDefine(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
defines:
  n:
    value: "abc"
    type: number
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownDefineType(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
defines:
  n:
    value: "1"
    type: float
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadFromDirDefaultsWhenAbsent(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.Defines)
	assert.Empty(t, cfg.OutputDir)
}

func TestLoadFromDirFindsFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `output_dir: out`)

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestApply(t *testing.T) {
	cfg := &Config{
		Defines: map[string]Define{
			"site":  {Value: "Example"},
			"pages": {Value: "3", Type: "number"},
		},
	}

	env := types.NewEnvironment()
	cfg.Apply(env)

	site, ok := env.Lookup("site")
	require.True(t, ok)
	assert.Equal(t, types.Str("Example"), site)

	pages, ok := env.Lookup("pages")
	require.True(t, ok)
	assert.Equal(t, types.KindNumber, pages.Kind)
	assert.Equal(t, "3", pages.Raw)
}
