package pathgate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Path is a canonical, immutable filesystem path value. It carries no
// metadata: existence, kind and extension are queried on demand.
type Path string

// String returns the path in platform form.
func (p Path) String() string {
	return string(p)
}

// Base returns the final element of the path.
func (p Path) Base() string {
	return filepath.Base(string(p))
}

// Suffix returns the extension of the final element including its leading
// dot, or "" when there is none. Dot-files such as ".bashrc" and names that
// end in a dot have no suffix.
func (p Path) Suffix() string {
	if p == "" {
		return ""
	}
	name := p.Base()
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

func (Path) input() {}

// Input is a value accepted by the gate: either a raw string (see Raw) or
// an already typed Path. No other variant can be constructed.
type Input interface {
	input()
}

type rawInput string

func (rawInput) input() {}

// Raw wraps an unvalidated string, typically a CLI argument or config value.
func Raw(s string) Input {
	return rawInput(s)
}

// FromAny converts a decoded value (for example from a config file) into an
// Input. Strings and Paths are accepted; anything else, including nil, fails
// with ErrTypeMismatch.
func FromAny(v any) (Input, error) {
	switch x := v.(type) {
	case Input:
		return x, nil
	case string:
		return Raw(x), nil
	}
	return nil, &PathError{
		Op:  "convert",
		Err: fmt.Errorf("%w: expected string or path, got %T", ErrTypeMismatch, v),
	}
}

// toPath wraps a raw string. An empty string denotes the current directory.
func toPath(s string) Path {
	if s == "" {
		return Path(".")
	}
	return Path(s)
}
