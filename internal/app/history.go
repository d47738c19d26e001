package app

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/archivewatch/internal/config"
	"github.com/blackwell-systems/archivewatch/internal/output"
	"github.com/blackwell-systems/archivewatch/internal/pathgate"
	"github.com/blackwell-systems/archivewatch/internal/store"
)

var (
	historyLimit int
	historyPath  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded file events",
	Long: `Show the file events recorded by 'archivewatch watch', newest first.
With --path, show the full history of a single file, oldest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of events to show")
	historyCmd.Flags().StringVar(&historyPath, "path", "", "Only show events for this file")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	events, err := loadHistory(db, historyPath, historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	renderHistory(out, events)
	return nil
}

// loadHistory returns recent events, or the events of a single file when
// path is set. The path is provisioned so "~/x" matches the recorded
// canonical path.
func loadHistory(db *store.DB, path string, limit int) ([]store.FileEvent, error) {
	if limit < 1 {
		return nil, fmt.Errorf("--limit must be at least 1, got %d", limit)
	}

	if path == "" {
		events, err := db.RecentFileEvents(limit)
		if err != nil {
			return nil, fmt.Errorf("reading events: %w", err)
		}
		return events, nil
	}

	p, err := pathgate.New().Provision(pathgate.Raw(path), pathgate.Options{SkipExistenceCheck: true})
	if err != nil {
		return nil, err
	}
	events, err := db.FileEventsForPath(p.String())
	if err != nil {
		return nil, fmt.Errorf("reading events for %s: %w", p, err)
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

func renderHistory(w io.Writer, events []store.FileEvent) {
	fmt.Fprintln(w, output.Section("File history"))
	fmt.Fprintln(w)

	if len(events) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" No events recorded yet. Run 'archivewatch watch' first."))
		return
	}

	tbl := output.NewTable("When", "Kind", "Path", "Size")
	for _, e := range events {
		size := ""
		if e.Kind != "removed" {
			size = humanize.IBytes(uint64(max(e.Size, 0)))
		}
		tbl.AddRow(e.RecordedAt.Local().Format(time.DateTime), kindLabel(e.Kind), e.Path, size)
	}
	tbl.Fprint(w)
}

func kindLabel(kind string) string {
	switch kind {
	case "added":
		return output.StyleSuccess.Render(kind)
	case "removed":
		return output.StyleWarning.Render(kind)
	default:
		return kind
	}
}
