// Package notebook extracts executable Elixir code from Livebook documents.
//
// A .livemd file interleaves markdown prose with fenced code blocks. Only
// blocks fenced as ```elixir are executable; a block preceded by Livebook's
// force_markdown directive is an illustration and must not be executed.
package notebook

import "strings"

// state of the line scanner.
type state int

const (
	outside state = iota
	suppressedMarker // force_markdown directive seen, fence not yet opened
	suppressedBlock
	executableBlock
)

const fenceOpen = "```elixir"
const fenceClose = "```"

// isDirective reports whether a line is a Livebook force_markdown directive.
// Livebook writes `<!-- livebook:{"force_markdown":true} -->`; spacing inside
// the JSON varies between editors, so the check collapses whitespace.
func isDirective(line string) bool {
	if !strings.Contains(line, "livebook:") {
		return false
	}
	compact := strings.ReplaceAll(line, " ", "")
	compact = strings.ReplaceAll(compact, "\t", "")
	return strings.Contains(compact, `"force_markdown":true`)
}

// Isolate returns the executable code of a Livebook document: the contents of
// all ```elixir fences, in order, separated by blank lines. Suppressed blocks
// and prose are dropped. A fence left open at end of input is treated as
// implicitly closed. Documents with no executable fences yield "".
func Isolate(document string) string {
	var out []string
	st := outside

	for _, line := range strings.Split(document, "\n") {
		trimmed := strings.TrimSpace(line)
		switch st {
		case outside:
			if isDirective(trimmed) {
				st = suppressedMarker
			} else if trimmed == fenceOpen {
				st = executableBlock
			}
		case suppressedMarker:
			// The directive applies to the next fence, adjacent or not.
			if trimmed == fenceOpen {
				st = suppressedBlock
			}
		case suppressedBlock:
			if trimmed == fenceClose {
				st = outside
			}
		case executableBlock:
			if trimmed == fenceClose {
				st = outside
				// Blank separator keeps consecutive blocks independent.
				out = append(out, "")
			} else {
				out = append(out, line)
			}
		}
	}

	return strings.Trim(strings.Join(out, "\n"), "\n")
}
