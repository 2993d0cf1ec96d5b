package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/apiscope"
	"github.com/jward/apiscope/internal/config"
	"github.com/jward/apiscope/internal/report"
)

var (
	flagWorkers int
	flagNoCache bool
	flagReport  string
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate every qualified call in a project",
	Long:  "Discovers Elixir sources and Livebook notebooks under the given path, extracts and resolves their qualified calls, and verifies each against the compiled program. Exits non-zero when any call does not resolve.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().IntVar(&flagWorkers, "workers", 0, "number of files checked concurrently (default: GOMAXPROCS)")
	checkCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "ignore the result cache for this run")
	checkCmd.Flags().StringVar(&flagReport, "report", "", "also write a markdown report to this path")
}

func runCheck(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	// Configuration problems are fatal before any file is touched.
	cfg, err := config.Load(configPath(targetDir))
	if err != nil {
		return err
	}

	opts := []apiscope.Option{
		apiscope.WithAllowedPrefixes(cfg.AllowedPrefixes...),
		apiscope.WithExcludes(cfg.Exclude.Dirs, cfg.Exclude.Files),
		apiscope.WithChecker(apiscope.NewExecChecker(targetDir, cfg.Runtime.MixProject)),
	}
	if flagWorkers > 0 {
		opts = append(opts, apiscope.WithWorkers(flagWorkers))
	}
	if cfg.Cache.Enabled && !flagNoCache {
		cachePath := cfg.Cache.Path
		if !filepath.IsAbs(cachePath) {
			cachePath = filepath.Join(targetDir, cachePath)
		}
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
		opts = append(opts, apiscope.WithCache(cachePath))
	}

	engine, err := apiscope.New(opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.CheckDirectory(cmd.Context(), targetDir)
	if err != nil {
		return err
	}

	if err := printResults(os.Stdout, results); err != nil {
		return err
	}

	if flagReport != "" {
		f, err := os.Create(flagReport)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		if err := report.WriteMarkdown(f, results); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Checked %d file(s) in %s\n",
		len(results), time.Since(start).Round(time.Millisecond))

	for _, r := range results {
		if !r.Valid {
			return errInvalidFound
		}
	}
	return nil
}
