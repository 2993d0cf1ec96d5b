// Package resolve turns literal module references into the fully-qualified
// names the Elixir compiler would use, honoring per-file alias bindings and
// the implicit aliasing of nested module definitions.
package resolve

import "strings"

// Binding maps a short name to the fully-qualified module it aliases.
// Aliasing is one level deep: the bound value is always a literal
// fully-qualified name, never another alias.
type Binding struct {
	Short string
	Full  string
}

// Table holds one file's alias bindings plus the optional enclosing
// namespace implied by the file's nested module definitions. Built once per
// file and read-only afterwards.
type Table struct {
	aliases map[string]string

	// Namespace is the dotted path of the module enclosing nested module
	// definitions, or "" when the file declares none. Kept as a dedicated
	// field rather than a sentinel key so a real module can never collide
	// with it.
	Namespace string
}

// NewTable builds a Table from bindings in source order. A later binding for
// the same short name overwrites an earlier one, matching sequential scope
// semantics.
func NewTable(bindings []Binding) *Table {
	t := &Table{aliases: make(map[string]string, len(bindings))}
	for _, b := range bindings {
		t.aliases[b.Short] = b.Full
	}
	return t
}

// Resolve computes the fully-qualified form of a literal module reference.
//
// Precedence, highest first:
//  1. The first segment carries an explicit alias binding: substitute it and
//     keep the remaining segments.
//  2. The reference is a single non-reserved segment and the file has an
//     enclosing namespace: the compiler resolves it as a sibling of the
//     nested modules, so prepend the namespace. Standard-library names are
//     exempt; they always mean the top-level module.
//  3. Otherwise the reference is already fully qualified (or unresolvable
//     here) and is returned unchanged.
func (t *Table) Resolve(literal string) string {
	first, rest, qualified := strings.Cut(literal, ".")

	if full, ok := t.aliases[first]; ok {
		if qualified {
			return full + "." + rest
		}
		return full
	}

	if !qualified && t.Namespace != "" && !Reserved(literal) {
		return t.Namespace + "." + literal
	}

	return literal
}
