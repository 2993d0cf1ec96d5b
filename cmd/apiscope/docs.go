package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/apiscope/internal/config"
	"github.com/jward/apiscope/internal/docgen"
)

var (
	flagApp        string
	flagDocsOutput string
)

var docsCmd = &cobra.Command{
	Use:   "docs [path]",
	Short: "Generate a categorized module overview",
	Long:  "Lists the application's modules through the BEAM's documentation chunks, assigns each to a configured category, and writes a markdown overview.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDocs,
}

func init() {
	docsCmd.Flags().StringVar(&flagApp, "app", "", "OTP application name (required)")
	docsCmd.Flags().StringVar(&flagDocsOutput, "output", "", "output file (default: docs.output from config)")
	_ = docsCmd.MarkFlagRequired("app")
}

func runDocs(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath(targetDir))
	if err != nil {
		return err
	}

	lister := &docgen.ExecLister{Dir: targetDir, App: flagApp}
	mods, err := lister.Modules(cmd.Context())
	if err != nil {
		return err
	}

	patterns := cfg.CategoryPatterns()
	categories := make([]docgen.Category, len(cfg.Docs.Categories))
	for i, cat := range cfg.Docs.Categories {
		categories[i] = docgen.Category{
			Name:        cat.Name,
			Description: cat.Description,
			Pattern:     patterns[i],
		}
	}

	outPath := flagDocsOutput
	if outPath == "" {
		outPath = cfg.Docs.Output
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(targetDir, outPath)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	if err := docgen.Generate(f, categories, mods); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Wrote %d module(s) to %s\n", len(mods), outPath)
	return nil
}
