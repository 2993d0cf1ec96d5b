package extract

import (
	"regexp"
	"strings"

	"github.com/jward/apiscope/internal/resolve"
)

// Pattern scans for the degraded path. These approximate the walker over raw
// text: they can be fooled by strings and comments, and they cannot see
// arity, but they keep an unparseable file from aborting a corpus run.
var (
	fallbackCallRe = regexp.MustCompile(
		`\b([A-Z][A-Za-z0-9_]*(?:\.[A-Z][A-Za-z0-9_]*)*)\.([a-z_][A-Za-z0-9_]*[?!]?)\(`)
	fallbackAliasRe = regexp.MustCompile(
		`^\s*alias\s+([A-Z][A-Za-z0-9_.]*[A-Za-z0-9_])(?:\s*,\s*as:\s*([A-Z][A-Za-z0-9_]*))?\s*$`)
	fallbackGroupAliasRe = regexp.MustCompile(
		`^\s*alias\s+([A-Z][A-Za-z0-9_.]*[A-Za-z0-9_])\.\{([^}]+)\}`)
)

// Fallback approximates Walk over raw text when parsing failed. Harvested
// call sites never carry arity, and no enclosing namespace is inferred.
// Best-effort by contract: it may under- or over-report.
func Fallback(text string) *Harvest {
	h := &Harvest{Calls: make(map[CallSite]struct{})}

	for _, line := range strings.Split(text, "\n") {
		if m := fallbackGroupAliasRe.FindStringSubmatch(line); m != nil {
			base := m[1]
			for _, member := range strings.Split(m[2], ",") {
				member = strings.TrimSpace(member)
				if member == "" {
					continue
				}
				h.Bindings = append(h.Bindings, resolve.Binding{
					Short: lastSegment(member),
					Full:  base + "." + member,
				})
			}
			continue
		}
		if m := fallbackAliasRe.FindStringSubmatch(line); m != nil {
			full := m[1]
			short := lastSegment(full)
			if m[2] != "" {
				short = m[2]
			}
			h.Bindings = append(h.Bindings, resolve.Binding{Short: short, Full: full})
		}
	}

	for _, m := range fallbackCallRe.FindAllStringSubmatch(text, -1) {
		h.Calls[CallSite{Prefix: m[1], Fun: m[2]}] = struct{}{}
	}

	return h
}
