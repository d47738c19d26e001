// Package app contains the Cobra command tree for archivewatch.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/archivewatch/internal/config"
	"github.com/blackwell-systems/archivewatch/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "archivewatch",
	Short: "Validate and watch the files you archive",
	Long: `archivewatch checks user-supplied paths before anything reads them:
it expands ~, resolves symlinks, classifies files and directories and
validates extensions against an allow-list. The watch command applies the
same checks continuously to the configured source directories.

Run 'archivewatch' with no arguments to list the available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		applyOutput(cfg.Output, flagNoColor, output.IsTerminal(os.Stdout))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "archivewatch", appVersion)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use a subcommand:")
		fmt.Fprintln(out, "  check     Run paths through the gate and report the result")
		fmt.Fprintln(out, "  ext       Print the extension of a file")
		fmt.Fprintln(out, "  watch     Monitor source directories for accepted files")
		fmt.Fprintln(out, "  history   Show recorded file events")
		return nil
	},
}

// applyOutput configures the output package. Color needs the config, the
// absence of --no-color and a terminal.
func applyOutput(o config.Output, noColorFlag, terminal bool) {
	if noColorFlag || !o.Color || !terminal {
		output.SetNoColor(true)
	}
	output.SetWidth(o.Width)
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/archivewatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
