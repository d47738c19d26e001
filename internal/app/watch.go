package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/archivewatch/internal/config"
	"github.com/blackwell-systems/archivewatch/internal/output"
	"github.com/blackwell-systems/archivewatch/internal/store"
	"github.com/blackwell-systems/archivewatch/internal/watcher"
)

// minInterval is the shortest accepted polling interval.
const minInterval = 5 * time.Second

var (
	watchDaemon   bool
	watchInterval string
	watchStop     bool
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor source directories for accepted files",
	Long: `Watch the configured source directories (watch_paths) and alert when a
file with an allowed extension appears, changes or disappears. Roots must
be directories; files outside the allow-list are ignored. Every alert is
recorded and can be reviewed with 'archivewatch history'.

Checks run on the interval and shortly after the filesystem reports a
change anywhere below a root. Hidden directories and archive_dir are
never scanned.

Examples:
  archivewatch watch                    # run in foreground (ctrl-c to stop)
  archivewatch watch --daemon           # run in background, write PID file
  archivewatch watch --interval 5m      # check every 5 minutes
  archivewatch watch --stop             # stop the background daemon`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "", "Check interval as duration string (default: from config)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	interval, err := watchDuration(cfg, watchInterval)
	if err != nil {
		return err
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if watchDaemon {
		return runDaemon(cfg, interval, db)
	}

	return runForeground(cfg, interval, db)
}

// watchDuration returns the flag interval, or the configured one when the
// flag is empty.
func watchDuration(cfg *config.Config, flag string) (time.Duration, error) {
	var interval time.Duration
	var err error
	if flag != "" {
		interval, err = time.ParseDuration(flag)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q: %w", flag, err)
		}
	} else if interval, err = cfg.IntervalDuration(); err != nil {
		return 0, err
	}
	if interval < minInterval {
		return 0, fmt.Errorf("interval must be at least %s, got %s", minInterval, interval)
	}
	return interval, nil
}

// shutdownContext returns a context cancelled on SIGINT/SIGTERM.
func shutdownContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), shutdownSignals...)
}

// runForeground runs the watcher in the foreground with live terminal output.
func runForeground(cfg *config.Config, interval time.Duration, db *store.DB) error {
	rec, err := newRecorder(db, "watch")
	if err != nil {
		return err
	}

	ctx, cancel := shutdownContext()
	defer cancel()

	if !watchQuiet {
		fmt.Printf("archivewatch watching %s... (checking every %s)\n",
			strings.Join(cfg.WatchPaths, ", "), interval)
	}

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)

		if err := rec.record(a); err != nil && !watchQuiet {
			fmt.Fprintln(os.Stderr, "recording event:", err)
		}

		if !watchQuiet {
			printAlert(a)
		}
	}

	w := watcher.New(cfg.WatchPaths, cfg.Gate(), interval, alertFn)
	w.Exclude(cfg.ArchiveDir)

	// Take initial snapshot and display baseline.
	initial, err := w.Snapshot()
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}

	if !watchQuiet {
		fmt.Printf("[%s] %s Baseline: %d accepted files, %d ignored\n",
			time.Now().Format("15:04:05"),
			output.StyleSuccess.Render(checkMark()),
			len(initial.Files),
			initial.Rejected)
		for root, reason := range initial.RootErrors {
			fmt.Printf("         %s %s: %s\n", output.StyleWarning.Render("!"), root, reason)
		}
	}

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet {
			fmt.Println("\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(cfg *config.Config, interval time.Duration, db *store.DB) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	// The snapshot row is created only once this process owns the PID file.
	rec, err := newRecorder(db, "watch-daemon")
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	ctx, cancel := shutdownContext()
	defer cancel()

	writeLog(logFile, "archivewatch daemon started (PID %d, interval %s, roots %s)",
		pid, interval, strings.Join(cfg.WatchPaths, ", "))

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)

		if err := rec.record(a); err != nil {
			writeLog(logFile, "recording event failed: %v", err)
		}
		writeLog(logFile, "[%s] %s: %s", a.Level, a.Title, a.Message)
	}

	w := watcher.New(cfg.WatchPaths, cfg.Gate(), interval, alertFn)
	w.Exclude(cfg.ArchiveDir)

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		writeLog(logFile, "daemon stopped")
		return nil
	}
	return err
}

// recorder persists file alerts under a single snapshot per watch run.
type recorder struct {
	db         *store.DB
	snapshotID int64
}

func newRecorder(db *store.DB, command string) (*recorder, error) {
	id, err := db.CreateSnapshot(command, appVersion)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot: %w", err)
	}
	return &recorder{db: db, snapshotID: id}, nil
}

// record stores a file alert. Root alerts are not file events and are
// skipped.
func (r *recorder) record(a watcher.Alert) error {
	switch a.Kind {
	case "added", "modified", "removed":
	default:
		return nil
	}
	return r.db.InsertFileEvent(&store.FileEvent{
		SnapshotID: r.snapshotID,
		Kind:       a.Kind,
		Path:       a.File.Path,
		Extension:  a.File.Extension,
		Size:       a.File.Size,
		ModTime:    a.File.ModTime,
		RecordedAt: a.Time,
	})
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// writeLog writes a timestamped line to the log file.
func writeLog(f *os.File, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(f, "[%s] %s\n", timestamp, msg)
}

// printAlert formats and prints an alert to the terminal.
func printAlert(a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	fmt.Printf("[%s] %s %s\n", timestamp, alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Printf("         %s\n", a.Message)
	}
	if flagVerbose && a.File.Path != "" {
		fmt.Printf("         %s\n", output.StyleMuted.Render(a.File.Path))
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "critical":
		return output.StyleError.Render("\xe2\x9c\x97") // ballot x
	case "warning":
		return output.StyleWarning.Render("!")
	case "info":
		return output.StyleSuccess.Render(checkMark())
	default:
		return " "
	}
}

// checkMark returns a terminal check mark indicator.
func checkMark() string {
	return "\xe2\x9c\x93"
}
