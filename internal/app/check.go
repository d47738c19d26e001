package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/archivewatch/internal/config"
	"github.com/blackwell-systems/archivewatch/internal/output"
	"github.com/blackwell-systems/archivewatch/internal/pathgate"
)

var (
	checkNoExpand  bool
	checkNoResolve bool
	checkExt       []string
)

// errRejected is returned when at least one checked path fails the gate.
var errRejected = errors.New("one or more paths were rejected")

var checkCmd = &cobra.Command{
	Use:   "check <path>...",
	Short: "Run paths through the gate and report the result",
	Long: `Check prepares each path the way archivewatch does before reading it
and reports the canonical path, whether it exists, what it is and whether
its extension is on the allow-list. Directories pass; files pass only
with an allowed extension. The command fails if any path is rejected.

Examples:
  archivewatch check ~/Documents/report.pdf
  archivewatch check --ext txt,md notes/*
  archivewatch check --no-resolve ./link.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkNoExpand, "no-expand", false, "Do not expand a leading ~")
	checkCmd.Flags().BoolVar(&checkNoResolve, "no-resolve", false, "Do not resolve symlinks and relative segments")
	checkCmd.Flags().StringSliceVar(&checkExt, "ext", nil, "Allowed extensions for this run (overrides config)")
	rootCmd.AddCommand(checkCmd)
}

// checkResult is the outcome of running one argument through the gate.
type checkResult struct {
	Input     string `json:"input"`
	Path      string `json:"path,omitempty"`
	Exists    bool   `json:"exists"`
	Kind      string `json:"kind"` // "file", "directory", "other", "missing", "invalid"
	Extension string `json:"extension,omitempty"`
	Allowed   bool   `json:"allowed"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	gate := cfg.Gate()
	opts := pathgate.Options{
		SkipExpand:  checkNoExpand,
		SkipResolve: checkNoResolve,
	}
	if checkExt != nil {
		opts.Extensions = config.NormalizeExtensions(checkExt)
	}

	results := make([]checkResult, 0, len(args))
	failed := false
	for _, arg := range args {
		r := inspect(gate, arg, opts)
		if !r.OK {
			failed = true
		}
		results = append(results, r)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		renderCheck(out, results)
	}

	if failed {
		return errRejected
	}
	return nil
}

// inspect runs arg through the gate with opts and classifies the result.
func inspect(gate *pathgate.Gate, arg string, opts pathgate.Options) checkResult {
	r := checkResult{Input: arg}

	p, err := gate.Prepare(pathgate.Raw(arg), opts)
	if err != nil {
		r.Kind = "invalid"
		r.Error = err.Error()
		return r
	}
	r.Path = p.String()

	r.Exists, err = gate.Exists(p)
	if err != nil {
		r.Kind = "invalid"
		r.Error = err.Error()
		return r
	}

	switch {
	case gate.IsFile(p):
		r.Kind = "file"
	case gate.IsDir(p):
		r.Kind = "directory"
		r.OK = true
		return r
	case r.Exists:
		r.Kind = "other"
		r.Error = pathgate.ErrNotAFile.Error()
		return r
	default:
		r.Kind = "missing"
		r.Error = "path does not exist"
		return r
	}

	r.Extension, err = gate.Extension(p, pathgate.Options{SkipPrepare: true})
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Allowed, err = gate.CheckExtension(p, pathgate.Options{
		SkipProvision: true,
		Extensions:    opts.Extensions,
	})
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.OK = r.Allowed
	if !r.Allowed {
		r.Error = fmt.Sprintf("extension %q is not allowed", r.Extension)
	}
	return r
}

func renderCheck(w io.Writer, results []checkResult) {
	fmt.Fprintln(w, output.Section("Path check"))
	fmt.Fprintln(w)

	tbl := output.NewTable("Path", "Kind", "Ext", "Allowed", "OK")
	for _, r := range results {
		p := r.Path
		if p == "" {
			p = r.Input
		}
		allowed := output.StyleMuted.Render("-")
		if r.Kind == "file" {
			allowed = output.Badge(r.Allowed)
		}
		tbl.AddRow(p, r.Kind, r.Extension, allowed, output.Badge(r.OK))
	}
	tbl.Fprint(w)

	for _, r := range results {
		if r.Error == "" {
			continue
		}
		if flagVerbose || !r.OK {
			fmt.Fprintf(w, " %s %s: %s\n", output.StyleError.Render("x"), r.Input, r.Error)
		}
	}
}
