// Package docgen produces a categorized markdown overview of a project's
// modules, using the compiled program's documentation chunks as the source
// of truth.
package docgen

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// ModuleInfo describes one module as reported by introspection.
type ModuleInfo struct {
	Module      string
	Description string
	Signatures  []string
}

// Category is one documentation section. Modules are assigned to the first
// category whose pattern matches their fully-qualified name, in the order
// categories were configured.
type Category struct {
	Name        string
	Description string
	Pattern     *regexp.Regexp
}

// Lister enumerates the modules of the compiled program.
type Lister interface {
	Modules(ctx context.Context) ([]ModuleInfo, error)
}

// StaticLister serves a fixed module list; the test double.
type StaticLister []ModuleInfo

// Modules implements Lister.
func (l StaticLister) Modules(context.Context) ([]ModuleInfo, error) {
	return []ModuleInfo(l), nil
}

// uncategorized collects modules no category pattern claims.
const uncategorized = "Uncategorized"

// Generate writes the categorized module document. Categories appear in
// configured order, modules sorted by name inside each; an Uncategorized
// section trails when needed. Modules with no description get a placeholder
// line so every entry has the same shape.
func Generate(w io.Writer, categories []Category, mods []ModuleInfo) error {
	sorted := make([]ModuleInfo, len(mods))
	copy(sorted, mods)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Module < sorted[j].Module })

	grouped := make(map[string][]ModuleInfo)
	for _, mod := range sorted {
		name := categoryFor(categories, mod.Module)
		grouped[name] = append(grouped[name], mod)
	}

	fmt.Fprintln(w, "# Module overview")

	order := make([]Category, 0, len(categories)+1)
	order = append(order, categories...)
	order = append(order, Category{Name: uncategorized})

	for _, cat := range order {
		members := grouped[cat.Name]
		if len(members) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "## %s\n", cat.Name)
		if cat.Description != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, cat.Description)
		}
		for _, mod := range members {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "### %s\n", mod.Module)
			fmt.Fprintln(w)
			desc := strings.TrimSpace(mod.Description)
			if desc == "" {
				desc = "_No documentation._"
			}
			fmt.Fprintln(w, desc)
			if len(mod.Signatures) > 0 {
				fmt.Fprintln(w)
				fmt.Fprintln(w, "```elixir")
				for _, sig := range mod.Signatures {
					fmt.Fprintln(w, sig)
				}
				fmt.Fprintln(w, "```")
			}
		}
	}

	return nil
}

func categoryFor(categories []Category, module string) string {
	for _, cat := range categories {
		if cat.Pattern != nil && cat.Pattern.MatchString(module) {
			return cat.Name
		}
	}
	return uncategorized
}
