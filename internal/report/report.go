// Package report renders validation results as a markdown document or as a
// colored terminal summary.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jward/apiscope"
)

// WriteMarkdown renders the full result list as a markdown document.
// Results are expected pre-sorted by path; call order is preserved.
func WriteMarkdown(w io.Writer, results []apiscope.Result) error {
	valid, invalid, unreadable := tally(results)

	fmt.Fprintln(w, "# API surface report")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "- Files checked: %d\n", len(results))
	fmt.Fprintf(w, "- Valid: %d\n", valid)
	fmt.Fprintf(w, "- Invalid: %d\n", invalid)
	if unreadable > 0 {
		fmt.Fprintf(w, "- Unreadable: %d\n", unreadable)
	}

	if invalid > 0 || unreadable > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Problems")
		for _, r := range results {
			if r.Valid {
				continue
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "### %s\n", r.Path)
			fmt.Fprintln(w)
			if r.Err != "" {
				fmt.Fprintf(w, "Could not be checked: %s\n", r.Err)
				continue
			}
			for _, call := range r.InvalidCalls {
				fmt.Fprintf(w, "- `%s` does not exist\n", call)
			}
		}
	}

	return nil
}

// Summary prints a human-readable run summary. Output is stable apart from
// color escapes, which follow the terminal detection of the color package.
func Summary(w io.Writer, results []apiscope.Result) {
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	valid, invalid, unreadable := tally(results)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range results {
		switch {
		case r.Err != "":
			fmt.Fprintf(tw, "%s\t%s\t%s\n", yellow("SKIP"), r.Path, r.Err)
		case !r.Valid:
			fmt.Fprintf(tw, "%s\t%s\t%d invalid call(s)\n", red("FAIL"), r.Path, len(r.InvalidCalls))
		}
	}
	tw.Flush()

	for _, r := range results {
		for _, call := range r.InvalidCalls {
			fmt.Fprintf(w, "  %s %s\n", red("✗"), call)
		}
	}

	switch {
	case invalid == 0 && unreadable == 0:
		fmt.Fprintf(w, "%s %d file(s) checked, all calls resolve\n", green("OK"), valid)
	default:
		fmt.Fprintf(w, "%d file(s) checked: %d valid, %d invalid, %d unreadable\n",
			len(results), valid, invalid, unreadable)
	}
}

func tally(results []apiscope.Result) (valid, invalid, unreadable int) {
	for _, r := range results {
		switch {
		case r.Err != "":
			unreadable++
		case r.Valid:
			valid++
		default:
			invalid++
		}
	}
	return valid, invalid, unreadable
}
