package pathgate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	dir := t.TempDir()
	upper := writeFile(t, dir, "a.TXT")
	archive := writeFile(t, dir, "backup.tar.gz")
	plain := writeFile(t, dir, "Makefile")
	dotfile := writeFile(t, dir, ".bashrc")

	g := New()

	tests := []struct {
		name string
		path string
		opts Options
		want string
	}{
		{"strips dot", upper, Options{}, "TXT"},
		{"keeps dot", upper, Options{SkipStripSeparator: true}, ".TXT"},
		{"last suffix only", archive, Options{}, "gz"},
		{"no extension", plain, Options{}, ""},
		{"no extension keeps empty", plain, Options{SkipStripSeparator: true}, ""},
		{"dotfile has no extension", dotfile, Options{}, ""},
		{"skip provision", upper, Options{SkipProvision: true}, "TXT"},
		{"skip existence check", upper, Options{SkipExistenceCheck: true}, "TXT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := g.Extension(Raw(tc.path), tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtension_NotAFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "folder.d")
	require.NoError(t, os.Mkdir(sub, 0o755))

	g := New()

	for _, p := range []string{sub, filepath.Join(dir, "missing.txt")} {
		ext, err := g.Extension(Raw(p), Options{})
		require.Error(t, err, p)
		assert.ErrorIs(t, err, ErrNotAFile)
		assert.NotErrorIs(t, err, ErrTypeMismatch)
		assert.Empty(t, ext)
	}
}

func TestExtension_SkipPrepare(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "notes.md")

	g := New()

	ext, err := g.Extension(Path(file), Options{SkipPrepare: true})
	require.NoError(t, err)
	assert.Equal(t, "md", ext)

	_, err = g.Extension(Raw(file), Options{SkipPrepare: true})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestExtension_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	writeFile(t, home, "docs/plan.PDF")

	g := New(WithHomeDir(fixedHome(home)))

	ext, err := g.Extension(Raw("~/docs/plan.PDF"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "PDF", ext)

	_, err = g.Extension(Raw("~/docs/plan.PDF"), Options{SkipExpand: true})
	assert.ErrorIs(t, err, ErrNotAFile)
}

func TestCheckExtension(t *testing.T) {
	dir := t.TempDir()
	lower := writeFile(t, dir, "a.txt")
	upper := writeFile(t, dir, "b.TXT")
	bare := writeFile(t, dir, "README")

	g := New(WithExtensions([]string{"txt", "md"}))

	tests := []struct {
		name string
		path string
		opts Options
		want bool
	}{
		{"default list match", lower, Options{}, true},
		{"case-insensitive", upper, Options{}, true},
		{"override match", lower, Options{Extensions: []string{"txt"}}, true},
		{"override miss", lower, Options{Extensions: []string{"md"}}, false},
		{"empty override rejects all", lower, Options{Extensions: []string{}}, false},
		{"no extension", bare, Options{}, false},
		{"skip provision", upper, Options{SkipProvision: true}, true},
		{"skip existence check", lower, Options{SkipExistenceCheck: true}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := g.CheckExtension(Raw(tc.path), tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCheckExtension_Errors(t *testing.T) {
	dir := t.TempDir()
	g := New(WithExtensions([]string{"txt"}))

	ok, err := g.CheckExtension(Raw(dir), Options{})
	assert.ErrorIs(t, err, ErrNotAFile)
	assert.False(t, ok)

	ok, err = g.CheckExtension(Raw(filepath.Join(dir, "gone.txt")), Options{})
	assert.ErrorIs(t, err, ErrNotAFile)
	assert.False(t, ok)

	_, err = g.CheckExtension(Raw(filepath.Join(dir, "x.txt")), Options{SkipConvert: true})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestCheckExtension_NoDefaultList(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt")

	ok, err := New().CheckExtension(Raw(file), Options{})
	require.NoError(t, err)
	assert.False(t, ok)
}
