package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Notifier delivers alerts as desktop notifications. On macOS it uses
// osascript, on Linux notify-send; otherwise, or when those fail, it writes
// the alert to Fallback.
type Notifier struct {
	GOOS     string
	LookPath func(string) (string, error)
	Run      func(name string, args ...string) error
	Fallback io.Writer
}

// DefaultNotifier targets the current platform and stderr.
func DefaultNotifier() *Notifier {
	return &Notifier{
		GOOS:     runtime.GOOS,
		LookPath: exec.LookPath,
		Run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
		Fallback: os.Stderr,
	}
}

// Notify sends a desktop notification for the given alert using the
// default notifier.
func Notify(alert Alert) error {
	return DefaultNotifier().Notify(alert)
}

// Notify sends a notification for alert.
func (n *Notifier) Notify(alert Alert) error {
	switch n.GOOS {
	case "darwin":
		script := fmt.Sprintf(
			`display notification %q with title "archivewatch" subtitle %q`,
			alert.Message, alert.Title,
		)
		if err := n.Run("osascript", "-e", script); err != nil {
			return n.fallback(alert)
		}
		return nil
	case "linux":
		if _, err := n.LookPath("notify-send"); err != nil {
			return n.fallback(alert)
		}
		if err := n.Run("notify-send", "archivewatch: "+alert.Title, alert.Message); err != nil {
			return n.fallback(alert)
		}
		return nil
	default:
		return n.fallback(alert)
	}
}

func (n *Notifier) fallback(alert Alert) error {
	_, err := fmt.Fprintf(n.Fallback, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}
