package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/archivewatch/internal/config"
	"github.com/blackwell-systems/archivewatch/internal/pathgate"
)

var (
	extKeepDot     bool
	extNoProvision bool
)

var extCmd = &cobra.Command{
	Use:   "ext <path>",
	Short: "Print the extension of a file",
	Long: `Print the extension of a regular file, without its leading dot.
Files such as .bashrc have no extension and print an empty line.
Directories and missing paths are an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runExt,
}

func init() {
	extCmd.Flags().BoolVar(&extKeepDot, "keep-dot", false, "Keep the leading dot")
	extCmd.Flags().BoolVar(&extNoProvision, "no-provision", false, "Use the path as given, without expanding or resolving it")
	rootCmd.AddCommand(extCmd)
}

func runExt(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ext, err := cfg.Gate().Extension(pathgate.Raw(args[0]), pathgate.Options{
		SkipProvision:      extNoProvision,
		SkipStripSeparator: extKeepDot,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ext)
	return nil
}
