// Package pathgate is the single gate between untrusted path input (CLI
// arguments, config values) and the paths archivewatch reads from.
//
// Every operation is a synchronous query against the filesystem at call
// time. Nothing is cached and nothing is written, so results are subject to
// ordinary time-of-check/time-of-use races that callers must tolerate.
package pathgate

import (
	"errors"
	"os"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/afero"
)

// Options toggles individual stages of the gate. The zero value runs every
// stage.
type Options struct {
	SkipExpand         bool // keep a leading "~" as is
	SkipResolve        bool // keep symlinks and relative segments
	SkipConvert        bool // refuse raw strings instead of converting them
	SkipProvision      bool
	SkipExistenceCheck bool
	SkipStripSeparator bool // keep the leading "." of an extension
	SkipPrepare        bool // Extension only: use the input Path as given

	// Extensions overrides the gate's allow-list for a single call.
	Extensions []string
}

// Gate normalizes, provisions and classifies paths. A Gate holds read-only
// configuration and is safe for concurrent use.
type Gate struct {
	fs         afero.Fs
	home       func() (string, error)
	extensions []string
}

// Option configures a Gate.
type Option func(*Gate)

// WithFS sets the filesystem queried by the gate. Symlink resolution only
// follows links on the OS filesystem; other filesystems resolve lexically.
func WithFS(fs afero.Fs) Option {
	return func(g *Gate) {
		g.fs = fs
	}
}

// WithHomeDir sets the lookup used to expand "~".
func WithHomeDir(fn func() (string, error)) Option {
	return func(g *Gate) {
		g.home = fn
	}
}

// WithExtensions sets the default extension allow-list. Entries are expected
// lower-case and without a leading dot.
func WithExtensions(exts []string) Option {
	return func(g *Gate) {
		g.extensions = slices.Clone(exts)
	}
}

// New creates a Gate backed by the OS filesystem unless configured otherwise.
func New(opts ...Option) *Gate {
	g := &Gate{
		fs:   afero.NewOsFs(),
		home: os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FS returns the filesystem the gate queries.
func (g *Gate) FS() afero.Fs {
	return g.fs
}

// Extensions returns a copy of the default allow-list.
func (g *Gate) Extensions() []string {
	return slices.Clone(g.extensions)
}

// Prepare converts, provisions and existence-checks in according to opts.
// A missing path is not an error; only failures to query the filesystem are.
func (g *Gate) Prepare(in Input, opts Options) (Path, error) {
	p, err := g.convert("prepare", in, opts.SkipConvert)
	if err != nil {
		return "", err
	}

	if !opts.SkipProvision {
		p, err = g.provision(p, opts)
		if err != nil {
			return "", err
		}
	}

	if !opts.SkipExistenceCheck {
		if _, err := g.Exists(p); err != nil {
			return "", &PathError{Op: "prepare", Path: p.String(), Err: err}
		}
	}

	return p, nil
}

// Provision converts in (unless SkipConvert) and then expands and resolves
// it according to opts. Provisioning a provisioned path returns it unchanged.
func (g *Gate) Provision(in Input, opts Options) (Path, error) {
	p, err := g.convert("provision", in, opts.SkipConvert)
	if err != nil {
		return "", err
	}
	return g.provision(p, opts)
}

// Exists reports whether p exists. Non-existence is a normal result.
func (g *Gate) Exists(p Path) (bool, error) {
	ok, err := afero.Exists(g.fs, p.String())
	if err != nil && errors.Is(err, syscall.ENOTDIR) {
		// A path below a regular file cannot exist.
		return false, nil
	}
	return ok, err
}

// IsFile reports whether p exists and is a regular file. Symlinks are
// followed, so a dangling link is not a file.
func (g *Gate) IsFile(p Path) bool {
	info, err := g.fs.Stat(p.String())
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether p exists and is a directory. IsFile and IsDir are
// never both true for the same path.
func (g *Gate) IsDir(p Path) bool {
	if g.IsFile(p) {
		return false
	}
	info, err := g.fs.Stat(p.String())
	return err == nil && info.IsDir()
}

// Directory prepares in and requires the result to be a directory.
func (g *Gate) Directory(in Input, opts Options) (Path, error) {
	p, err := g.Prepare(in, opts)
	if err != nil {
		return "", err
	}
	if !g.IsDir(p) {
		return "", &PathError{Op: "directory", Path: p.String(), Err: ErrNotADirectory}
	}
	return p, nil
}

func (g *Gate) convert(op string, in Input, skip bool) (Path, error) {
	switch v := in.(type) {
	case Path:
		return v, nil
	case rawInput:
		if skip {
			return "", &PathError{Op: op, Path: string(v), Err: ErrTypeMismatch}
		}
		return toPath(string(v)), nil
	}
	return "", &PathError{Op: op, Err: ErrTypeMismatch}
}

// allowed reports whether ext is in override, or in the default allow-list
// when override is nil.
func (g *Gate) allowed(ext string, override []string) bool {
	list := g.extensions
	if override != nil {
		list = override
	}
	return slices.Contains(list, strings.ToLower(ext))
}
