// Package extract harvests alias bindings and qualified call sites from
// parsed Elixir source. A regex fallback covers sources the parser rejects.
package extract

import (
	"strconv"
	"strings"

	"github.com/jward/apiscope/internal/resolve"
	"github.com/jward/apiscope/internal/syntax"
)

// CallSite is one syntactic occurrence of Module.function. Prefix is the
// literal, un-resolved module text from source; resolution happens
// downstream against an alias table, never in place. Arity is meaningful
// only when HasArity is set: a reference captured as a value has no
// syntactic arity.
type CallSite struct {
	Prefix   string
	Fun      string
	Arity    int
	HasArity bool
}

// Harvest is the outcome of one extraction pass over a file.
type Harvest struct {
	// Bindings in source order; a later binding for a short name is meant
	// to overwrite an earlier one.
	Bindings []resolve.Binding

	// Calls deduplicates identical call sites.
	Calls map[CallSite]struct{}

	// Namespace is the dotted name of the module enclosing nested module
	// definitions, or "" when the file has no nesting.
	Namespace string
}

// Walk traverses a parsed tree and harvests alias bindings, qualified call
// sites, and the enclosing namespace. Traversal order does not affect the
// result beyond the last-binding-wins rule.
func Walk(tree *syntax.Tree) *Harvest {
	w := &walker{harvest: &Harvest{Calls: make(map[CallSite]struct{})}}
	w.walk(tree.Root)
	return w.harvest
}

type walker struct {
	harvest *Harvest

	// moduleStack tracks enclosing defmodule names during traversal.
	moduleStack []string
}

func (w *walker) walk(n *syntax.Node) {
	if n == nil {
		return
	}

	switch {
	// Alias statements are checked before generic dotted-access matching:
	// `alias A.B.C` textually resembles a dotted access but must never be
	// recorded as a call.
	case isInvocationOf(n, "alias"):
		w.handleAlias(n)
		return

	case isInvocationOf(n, "defmodule"):
		w.handleDefmodule(n)
		return

	case n.Kind == syntax.KindCall && isQualifiedAccess(n.Target):
		w.record(CallSite{
			Prefix:   n.Target.Left.Text,
			Fun:      n.Target.Right.Text,
			Arity:    len(n.Children),
			HasArity: true,
		})
		// Arguments may contain further calls; the target is consumed.
		for _, child := range n.Children {
			w.walk(child)
		}
		return

	case isQualifiedAccess(n):
		// Bare Module.function in value position: no argument list, so no
		// arity to record.
		w.record(CallSite{Prefix: n.Left.Text, Fun: n.Right.Text})
		return

	case n.Kind == syntax.KindUnaryOp && n.Operator == "&":
		if cs, ok := captureCallSite(n.Operand); ok {
			w.record(cs)
			return
		}
	}

	w.walk(n.Target)
	w.walk(n.Left)
	w.walk(n.Right)
	w.walk(n.Operand)
	for _, child := range n.Children {
		w.walk(child)
	}
}

func (w *walker) record(cs CallSite) {
	w.harvest.Calls[cs] = struct{}{}
}

func (w *walker) bind(short, full string) {
	w.harvest.Bindings = append(w.harvest.Bindings, resolve.Binding{Short: short, Full: full})
}

// isInvocationOf reports whether n is a call whose target is the given bare
// identifier, e.g. an `alias ...` or `defmodule ...` statement.
func isInvocationOf(n *syntax.Node, name string) bool {
	return n != nil && n.Kind == syntax.KindCall &&
		n.Target != nil && n.Target.Kind == syntax.KindIdentifier && n.Target.Text == name
}

// isQualifiedAccess reports whether n is a dotted access with a literal
// module path on the left and a function identifier on the right. Accesses
// through variables, atoms or expressions do not qualify.
func isQualifiedAccess(n *syntax.Node) bool {
	return n != nil && n.Kind == syntax.KindDot &&
		n.Left != nil && n.Left.Kind == syntax.KindModuleName &&
		n.Right != nil && n.Right.Kind == syntax.KindIdentifier
}

// captureCallSite matches the operand of a capture expression:
// `&Mod.fun/2` carries its arity in the right operand of the `/`.
// The dotted part appears either as a bare dot or as a zero-argument call,
// depending on surrounding syntax.
func captureCallSite(n *syntax.Node) (CallSite, bool) {
	if n == nil || n.Kind != syntax.KindBinaryOp || n.Operator != "/" {
		return CallSite{}, false
	}
	if n.Right == nil || n.Right.Kind != syntax.KindInteger {
		return CallSite{}, false
	}

	target := n.Left
	if target != nil && target.Kind == syntax.KindCall && len(target.Children) == 0 {
		target = target.Target
	}
	if !isQualifiedAccess(target) {
		return CallSite{}, false
	}

	arity, err := strconv.Atoi(n.Right.Text)
	if err != nil || arity < 0 {
		return CallSite{}, false
	}
	return CallSite{
		Prefix:   target.Left.Text,
		Fun:      target.Right.Text,
		Arity:    arity,
		HasArity: true,
	}, true
}

// handleDefmodule records nesting for namespace inference and descends into
// the module body. The first time a defmodule is seen inside another, the
// outermost module's name becomes the file's enclosing namespace.
func (w *walker) handleDefmodule(n *syntax.Node) {
	var name string
	for _, child := range n.Children {
		if child.Kind == syntax.KindModuleName {
			name = child.Text
			break
		}
	}
	if name == "" {
		// Dynamic module name (defmodule unquote(...) etc): nothing to
		// track, but the body still holds calls.
		for _, child := range n.Children {
			w.walk(child)
		}
		return
	}

	if len(w.moduleStack) > 0 && w.harvest.Namespace == "" {
		w.harvest.Namespace = w.moduleStack[0]
	}

	w.moduleStack = append(w.moduleStack, name)
	skippedName := false
	for _, child := range n.Children {
		if !skippedName && child.Kind == syntax.KindModuleName && child.Text == name {
			skippedName = true
			continue
		}
		w.walk(child)
	}
	w.moduleStack = w.moduleStack[:len(w.moduleStack)-1]
}

// handleAlias turns one alias statement into bindings. Three forms:
//
//	alias A.B.C            C → A.B.C
//	alias A.B.C, as: D     D → A.B.C
//	alias A.B.{X, Y}       X → A.B.X, Y → A.B.Y
func (w *walker) handleAlias(n *syntax.Node) {
	if len(n.Children) == 0 {
		return
	}

	first := n.Children[0]
	if first.Kind == syntax.KindModuleName {
		full := first.Text
		short := lastSegment(full)
		if as, ok := asOption(n.Children[1:]); ok {
			short = as
		}
		w.bind(short, full)
		return
	}

	// Group form: the argument is a dot whose right side is the brace
	// group. Depending on context it may arrive wrapped in a call node.
	if first.Kind == syntax.KindCall && first.Target != nil {
		first = first.Target
	}
	if first.Kind == syntax.KindDot &&
		first.Left != nil && first.Left.Kind == syntax.KindModuleName &&
		first.Right != nil && first.Right.Kind == syntax.KindTuple {
		base := first.Left.Text
		for _, member := range first.Right.Children {
			if member.Kind != syntax.KindModuleName {
				continue
			}
			w.bind(lastSegment(member.Text), base+"."+member.Text)
		}
	}
}

// asOption finds an `as: Name` keyword among alias arguments.
func asOption(args []*syntax.Node) (string, bool) {
	for _, arg := range args {
		if arg.Kind != syntax.KindKeywords {
			continue
		}
		for _, pair := range arg.Children {
			if pair.Kind != syntax.KindPair || len(pair.Children) < 2 {
				continue
			}
			key := pair.Children[0]
			val := pair.Children[1]
			if key.Kind == syntax.KindKeyword &&
				strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(key.Text), ":")) == "as" &&
				val.Kind == syntax.KindModuleName {
				return val.Text, true
			}
		}
	}
	return "", false
}

func lastSegment(dotted string) string {
	if i := strings.LastIndex(dotted, "."); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}
