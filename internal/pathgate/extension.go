package pathgate

// Extension returns the extension of the regular file in refers to, without
// its leading dot unless SkipStripSeparator is set. Unless SkipPrepare is set
// the input is prepared first; with SkipPrepare it must already be a Path.
// A path that is missing or not a regular file fails with ErrNotAFile.
func (g *Gate) Extension(in Input, opts Options) (string, error) {
	var p Path
	if opts.SkipPrepare {
		v, ok := in.(Path)
		if !ok {
			return "", &PathError{Op: "extension", Err: ErrTypeMismatch}
		}
		p = v
	} else {
		var err error
		if p, err = g.Prepare(in, opts); err != nil {
			return "", err
		}
	}

	if !g.IsFile(p) {
		return "", &PathError{Op: "extension", Path: p.String(), Err: ErrNotAFile}
	}

	suffix := p.Suffix()
	if len(suffix) > 0 && suffix[0] == '.' && !opts.SkipStripSeparator {
		return suffix[1:], nil
	}
	return suffix, nil
}

// CheckExtension reports whether the file in refers to has an extension in
// the allow-list (opts.Extensions, or the gate default when nil). Matching is
// case-insensitive. Errors from Extension, notably ErrNotAFile, are returned
// as is.
func (g *Gate) CheckExtension(in Input, opts Options) (bool, error) {
	if !opts.SkipProvision {
		p, err := g.Prepare(in, Options{
			SkipExpand:         opts.SkipExpand,
			SkipResolve:        opts.SkipResolve,
			SkipConvert:        opts.SkipConvert,
			SkipExistenceCheck: opts.SkipExistenceCheck,
		})
		if err != nil {
			return false, err
		}
		in = p
	}

	ext, err := g.Extension(in, Options{
		SkipProvision:      true,
		SkipConvert:        opts.SkipConvert,
		SkipExistenceCheck: opts.SkipExistenceCheck,
	})
	if err != nil {
		return false, err
	}

	return g.allowed(ext, opts.Extensions), nil
}
