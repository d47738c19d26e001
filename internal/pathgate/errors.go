package pathgate

import "errors"

var (
	// ErrTypeMismatch indicates a value that is neither a raw string nor a Path
	// reached a parameter that requires one.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNotAFile indicates the path is absent or does not refer to a regular file.
	ErrNotAFile = errors.New("not a file")

	// ErrNotADirectory indicates the path is absent or does not refer to a directory.
	ErrNotADirectory = errors.New("not a directory")
)

// PathError records a failed gate operation and the path it was applied to.
// Use errors.Is against the sentinels above to classify it.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}
