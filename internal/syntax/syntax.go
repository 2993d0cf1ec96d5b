// Package syntax parses Elixir source text with tree-sitter and folds the
// concrete syntax tree into a small tagged node tree. Downstream extraction
// matches on Node.Kind instead of raw grammar node types, so the grammar's
// shape is confined to this package.
package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/elixir"
)

// Kind tags the node variants the extraction walk distinguishes.
type Kind int

const (
	// KindOther covers every construct extraction does not match on; its
	// children are preserved so traversal continues through it.
	KindOther Kind = iota
	KindCall
	KindDot
	KindModuleName // dotted uppercase literal, e.g. A.B.C
	KindIdentifier
	KindTuple
	KindKeywords
	KindPair
	KindKeyword
	KindUnaryOp
	KindBinaryOp
	KindInteger
)

// Node is one vertex of the folded tree.
//
// Structural operands (Target, Left, Right, Operand) are populated from the
// grammar's named fields where the kind has them, and are nil otherwise.
// Children holds the remaining named children in source order; for a
// KindCall node these are the call's arguments.
type Node struct {
	Kind     Kind
	Text     string // source text for leaf kinds and operators
	Operator string // operator token for unary/binary operator nodes
	Target   *Node  // call target
	Left     *Node  // dot / binary operator left operand
	Right    *Node  // dot / binary operator right operand
	Operand  *Node  // unary operator operand
	Children []*Node
	Line     int // 1-based source line
}

// Tree is a parsed Elixir source file.
type Tree struct {
	Root *Node
}

// ParseError reports that tree-sitter could not produce a coherent tree.
// tree-sitter itself never fails outright; a tree containing ERROR nodes is
// what "parse failure" means here.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
}

// Parse parses Elixir source text. Sources that tree-sitter cannot make
// structural sense of (intentional fragments, templates) return a *ParseError
// so the caller can fall back to pattern scanning.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(elixir.GetLanguage())

	cst, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseError{Line: 1, Message: err.Error()}
	}
	defer cst.Close()

	root := cst.RootNode()
	if root.HasError() {
		line := 1
		if errNode := firstErrorNode(root); errNode != nil {
			line = int(errNode.StartPoint().Row) + 1
		}
		return nil, &ParseError{Line: line, Message: "source is not well-formed Elixir"}
	}

	return &Tree{Root: convert(root, src)}, nil
}

// firstErrorNode finds the shallowest ERROR node in document order.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.HasError() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

// convert folds one CST node. Grammar node types map onto Kind values; any
// unrecognized type becomes KindOther with its named children converted.
func convert(n *sitter.Node, src []byte) *Node {
	out := &Node{Line: int(n.StartPoint().Row) + 1}

	switch n.Type() {
	case "call":
		out.Kind = KindCall
		if target := n.ChildByFieldName("target"); target != nil {
			out.Target = convert(target, src)
		}
		// A call's arguments live under a child of type "arguments"; the
		// do-block, when present, is a further named child. Both flatten
		// into Children, arguments first.
		target := n.ChildByFieldName("target")
		sawArguments := false
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if target != nil && child.StartByte() == target.StartByte() && child.EndByte() == target.EndByte() {
				continue
			}
			if child.Type() == "arguments" {
				sawArguments = true
				for j := 0; j < int(child.NamedChildCount()); j++ {
					out.Children = append(out.Children, convert(child.NamedChild(j), src))
				}
				continue
			}
			out.Children = append(out.Children, convert(child, src))
		}
		// The grammar wraps a parenless `Mod.fun` reference in a call node
		// with no arguments child. That is a reference, not an invocation:
		// a zero-argument invocation `Mod.fun()` carries an empty arguments
		// child and stays a call. Fold the reference down to its dot.
		if !sawArguments && len(out.Children) == 0 &&
			out.Target != nil && out.Target.Kind == KindDot {
			return out.Target
		}
	case "dot":
		out.Kind = KindDot
		if left := n.ChildByFieldName("left"); left != nil {
			out.Left = convert(left, src)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			out.Right = convert(right, src)
		}
	case "alias":
		out.Kind = KindModuleName
		out.Text = n.Content(src)
	case "identifier":
		out.Kind = KindIdentifier
		out.Text = n.Content(src)
	case "tuple":
		out.Kind = KindTuple
		convertNamedChildren(n, src, out)
	case "keywords":
		out.Kind = KindKeywords
		convertNamedChildren(n, src, out)
	case "pair":
		out.Kind = KindPair
		convertNamedChildren(n, src, out)
	case "keyword":
		out.Kind = KindKeyword
		out.Text = n.Content(src)
	case "unary_operator":
		out.Kind = KindUnaryOp
		if op := n.ChildByFieldName("operator"); op != nil {
			out.Operator = op.Content(src)
		}
		if operand := n.ChildByFieldName("operand"); operand != nil {
			out.Operand = convert(operand, src)
		}
	case "binary_operator":
		out.Kind = KindBinaryOp
		if op := n.ChildByFieldName("operator"); op != nil {
			out.Operator = op.Content(src)
		}
		if left := n.ChildByFieldName("left"); left != nil {
			out.Left = convert(left, src)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			out.Right = convert(right, src)
		}
	case "integer":
		out.Kind = KindInteger
		out.Text = n.Content(src)
	default:
		out.Kind = KindOther
		convertNamedChildren(n, src, out)
	}

	return out
}

func convertNamedChildren(n *sitter.Node, src []byte, out *Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out.Children = append(out.Children, convert(n.NamedChild(i), src))
	}
}
