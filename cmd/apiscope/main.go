package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagFormat string
)

// errInvalidFound signals the exit-status contract: any invalid file makes
// the process exit non-zero, without printing a redundant error line.
var errInvalidFound = errors.New("invalid calls found")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalidFound) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "apiscope",
	Short:         "Static API-surface checking for Elixir projects and Livebook notebooks",
	Long:          "Apiscope extracts every qualified call from Elixir sources and Livebook notebooks, resolves aliases, and verifies each call against the compiled program's exports.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: apiscope.toml in the target directory)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text|json")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(docsCmd)
}

// resolveTargetDir returns the absolute path of the directory to check.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// configPath returns the --config override or the default location inside
// the target directory.
func configPath(targetDir string) string {
	if flagConfig != "" {
		return flagConfig
	}
	return filepath.Join(targetDir, "apiscope.toml")
}
