package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/archivewatch/internal/pathgate"
)

// writeConfig writes a YAML config file into dir and returns its path.
func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// resolved provisions p the same way Load does.
func resolved(t *testing.T, p string) string {
	t.Helper()
	out, err := pathgate.New().Provision(pathgate.Raw(p), provisionOnly)
	require.NoError(t, err)
	return out.String()
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{resolved(t, filepath.Join(home, "Documents"))}, cfg.WatchPaths)
	assert.Equal(t, resolved(t, filepath.Join(home, "Archive")), cfg.ArchiveDir)
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.Equal(t, DefaultOutput, cfg.Output)

	d, err := cfg.IntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)
}

func TestLoad_FromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, home, `
watch_paths:
  - ~/inbox
  - /srv/drop
archive_dir: ~/vault
extensions: [".PDF", "txt", "TXT", " md "]
interval: 5m
output:
  color: false
  width: 120
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		resolved(t, filepath.Join(home, "inbox")),
		resolved(t, "/srv/drop"),
	}, cfg.WatchPaths)
	assert.Equal(t, resolved(t, filepath.Join(home, "vault")), cfg.ArchiveDir)
	assert.Equal(t, []string{"pdf", "txt", "md"}, cfg.Extensions)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, 120, cfg.Output.Width)

	d, err := cfg.IntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)
}

func TestLoad_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err, "missing default file is not an error")
	assert.True(t, cfg.Output.Color)

	dir := filepath.Join(home, ".config", "archivewatch")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeConfig(t, dir, "output:\n  color: false\n  width: 100\n")

	cfg, err = Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, 100, cfg.Output.Width)
}

func TestLoad_ArchiveDirMustBeAPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "archive_dir: 2024\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, pathgate.ErrTypeMismatch)
	assert.Contains(t, err.Error(), "archive_dir")
}

func TestLoad_InvalidInterval(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "interval: soon\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid interval")
}

func TestConfig_Gate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Report.PDF")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o644))

	cfg := &Config{Extensions: []string{"pdf"}}
	ok, err := cfg.Gate().CheckExtension(pathgate.Raw(file), pathgate.Options{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNormalizeExtensions(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"already clean", []string{"txt", "md"}, []string{"txt", "md"}},
		{"leading dots", []string{".txt", ".MD"}, []string{"txt", "md"}},
		{"duplicates", []string{"txt", "TXT", ".txt"}, []string{"txt"}},
		{"blanks", []string{"", " ", "."}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeExtensions(tc.in))
		})
	}
}

func TestConfigDir_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".config", "archivewatch"), ConfigDir())
	assert.Equal(t, filepath.Join(home, ".config", "archivewatch", DefaultDBName), DBPath())
}
