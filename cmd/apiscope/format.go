package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jward/apiscope"
	"github.com/jward/apiscope/internal/report"
)

// validateFormat rejects unknown --format values before any command runs.
func validateFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid format %q (must be text or json)", format)
	}
}

// printResults renders the result list in the selected format.
func printResults(w io.Writer, results []apiscope.Result) error {
	switch flagFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		report.Summary(w, results)
		return nil
	}
}
