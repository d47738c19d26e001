package pathgate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"
)

func (g *Gate) provision(p Path, opts Options) (Path, error) {
	s := p.String()

	if !opts.SkipExpand {
		expanded, err := g.expand(s)
		if err != nil {
			return "", &PathError{Op: "provision", Path: s, Err: err}
		}
		s = expanded
	}

	if !opts.SkipResolve {
		resolved, err := g.resolve(s)
		if err != nil {
			return "", &PathError{Op: "provision", Path: s, Err: err}
		}
		s = resolved
	}

	return Path(s), nil
}

// expand replaces a leading "~" or "~/" with the home directory. The
// "~user" form is left untouched.
func (g *Gate) expand(s string) (string, error) {
	rest, ok := strings.CutPrefix(s, "~")
	if !ok || (rest != "" && !isSeparator(rest[0])) {
		return s, nil
	}

	home, err := g.home()
	if err != nil {
		return "", fmt.Errorf("looking up home directory: %w", err)
	}
	if rest == "" {
		return home, nil
	}
	return filepath.Join(home, rest[1:]), nil
}

// resolve makes s absolute and, on the OS filesystem, follows symlinks
// along its longest existing prefix. Components that do not exist yet are
// appended lexically. On the OS filesystem ".." is applied after the link
// before it is followed, as the kernel does, so the path is not cleaned first.
func (g *Gate) resolve(s string) (string, error) {
	if _, ok := g.fs.(*afero.OsFs); !ok {
		abs, err := filepath.Abs(s)
		if err != nil {
			return "", fmt.Errorf("making path absolute: %w", err)
		}
		return abs, nil
	}

	if !filepath.IsAbs(s) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("making path absolute: %w", err)
		}
		s = wd + string(filepath.Separator) + s
	}

	vol := filepath.VolumeName(s)
	root := vol + string(filepath.Separator)
	parts := strings.FieldsFunc(s[len(vol):], func(r rune) bool {
		return r < 0x80 && isSeparator(byte(r))
	})

	for n := len(parts); n >= 0; n-- {
		cur := root + strings.Join(parts[:n], string(filepath.Separator))
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{resolved}, parts[n:]...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
			return "", fmt.Errorf("resolving symlinks: %w", err)
		}
	}
	return filepath.Clean(s), nil
}

func isSeparator(c byte) bool {
	return c == '/' || c == filepath.Separator
}
