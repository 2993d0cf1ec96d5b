package extract

import (
	"context"
	"testing"

	"github.com/jward/apiscope/internal/resolve"
	"github.com/jward/apiscope/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Node constructors for hand-built trees. Walker behavior is defined over
// the folded node shapes, so tests build those shapes directly.

func ident(text string) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindIdentifier, Text: text}
}

func modname(text string) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindModuleName, Text: text}
}

func dot(left, right *syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindDot, Left: left, Right: right}
}

func call(target *syntax.Node, args ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindCall, Target: target, Children: args}
}

func tuple(members ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindTuple, Children: members}
}

func kwpair(key string, value *syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindKeywords, Children: []*syntax.Node{
		{Kind: syntax.KindPair, Children: []*syntax.Node{
			{Kind: syntax.KindKeyword, Text: key + ": "},
			value,
		}},
	}}
}

func root(children ...*syntax.Node) *syntax.Tree {
	return &syntax.Tree{Root: &syntax.Node{Kind: syntax.KindOther, Children: children}}
}

func TestWalk_SingleAlias(t *testing.T) {
	tree := root(call(ident("alias"), modname("A.B.C")))

	h := Walk(tree)
	require.Len(t, h.Bindings, 1)
	assert.Equal(t, resolve.Binding{Short: "C", Full: "A.B.C"}, h.Bindings[0])
	assert.Empty(t, h.Calls, "alias statements must not count as calls")
}

func TestWalk_RenamedAlias(t *testing.T) {
	tree := root(call(ident("alias"), modname("A.B.C"), kwpair("as", modname("D"))))

	h := Walk(tree)
	require.Len(t, h.Bindings, 1)
	assert.Equal(t, resolve.Binding{Short: "D", Full: "A.B.C"}, h.Bindings[0])
}

func TestWalk_GroupAliasExpandsAllMembers(t *testing.T) {
	tree := root(call(ident("alias"), dot(modname("A.B"), tuple(modname("X"), modname("Y")))))

	h := Walk(tree)
	assert.Equal(t, []resolve.Binding{
		{Short: "X", Full: "A.B.X"},
		{Short: "Y", Full: "A.B.Y"},
	}, h.Bindings)
	assert.Empty(t, h.Calls, "group alias must yield zero call sites")
}

func TestWalk_QualifiedCallWithArity(t *testing.T) {
	tree := root(call(dot(modname("A.B"), ident("f")), ident("x"), ident("y")))

	h := Walk(tree)
	assert.Contains(t, h.Calls, CallSite{Prefix: "A.B", Fun: "f", Arity: 2, HasArity: true})
	assert.Len(t, h.Calls, 1)
}

func TestWalk_BareReferenceHasNoArity(t *testing.T) {
	tree := root(dot(modname("Mod"), ident("fun")))

	h := Walk(tree)
	assert.Contains(t, h.Calls, CallSite{Prefix: "Mod", Fun: "fun"})
}

func TestWalk_CaptureCarriesArity(t *testing.T) {
	capture := &syntax.Node{
		Kind:     syntax.KindUnaryOp,
		Operator: "&",
		Operand: &syntax.Node{
			Kind:     syntax.KindBinaryOp,
			Operator: "/",
			Left:     dot(modname("Mod"), ident("fun")),
			Right:    &syntax.Node{Kind: syntax.KindInteger, Text: "2"},
		},
	}

	h := Walk(root(capture))
	assert.Contains(t, h.Calls, CallSite{Prefix: "Mod", Fun: "fun", Arity: 2, HasArity: true})
}

func TestWalk_NestedCallsInArguments(t *testing.T) {
	inner := call(dot(modname("Inner"), ident("g")))
	tree := root(call(dot(modname("Outer"), ident("f")), inner))

	h := Walk(tree)
	assert.Contains(t, h.Calls, CallSite{Prefix: "Outer", Fun: "f", Arity: 1, HasArity: true})
	assert.Contains(t, h.Calls, CallSite{Prefix: "Inner", Fun: "g", Arity: 0, HasArity: true})
}

func TestWalk_DotThroughVariableIgnored(t *testing.T) {
	tree := root(call(dot(ident("mod"), ident("f"))))

	h := Walk(tree)
	assert.Empty(t, h.Calls)
}

func TestWalk_DuplicateCallSitesCollapse(t *testing.T) {
	site := call(dot(modname("M"), ident("f")), ident("x"))
	tree := root(site, call(dot(modname("M"), ident("f")), ident("y")))

	h := Walk(tree)
	assert.Len(t, h.Calls, 1)
}

func TestWalk_LaterAliasOverwritesEarlier(t *testing.T) {
	tree := root(
		call(ident("alias"), modname("A.B.C")),
		call(ident("alias"), modname("X.Y.C")),
	)

	h := Walk(tree)
	table := resolve.NewTable(h.Bindings)
	assert.Equal(t, "X.Y.C", table.Resolve("C"))
}

func TestWalk_NestedDefmoduleSetsNamespace(t *testing.T) {
	inner := call(ident("defmodule"), modname("Inner"),
		&syntax.Node{Kind: syntax.KindOther})
	outer := call(ident("defmodule"), modname("A.B"),
		&syntax.Node{Kind: syntax.KindOther, Children: []*syntax.Node{inner}})

	h := Walk(root(outer))
	assert.Equal(t, "A.B", h.Namespace)
}

func TestWalk_FlatModuleHasNoNamespace(t *testing.T) {
	tree := root(call(ident("defmodule"), modname("A.B"),
		&syntax.Node{Kind: syntax.KindOther}))

	h := Walk(tree)
	assert.Empty(t, h.Namespace)
}

// Round-trip through the real parser: alias plus aliased call.
func TestWalkParsedSource_AliasResolveRoundTrip(t *testing.T) {
	src := "alias A.B.C\nC.f(1, 2)\n"
	tree, err := syntax.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	h := Walk(tree)
	require.Contains(t, h.Calls, CallSite{Prefix: "C", Fun: "f", Arity: 2, HasArity: true})
	require.Len(t, h.Calls, 1)

	table := resolve.NewTable(h.Bindings)
	assert.Equal(t, "A.B.C", table.Resolve("C"))
}

func TestWalkParsedSource_ModuleBody(t *testing.T) {
	src := `defmodule MyApp.Runner do
  alias MyApp.Jobs.Worker

  def go(items) do
    Worker.run(items, [])
    Enum.count(items)
  end
end
`
	tree, err := syntax.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	h := Walk(tree)
	assert.Contains(t, h.Calls, CallSite{Prefix: "Worker", Fun: "run", Arity: 2, HasArity: true})
	assert.Contains(t, h.Calls, CallSite{Prefix: "Enum", Fun: "count", Arity: 1, HasArity: true})
	require.Len(t, h.Bindings, 1)
	assert.Equal(t, resolve.Binding{Short: "Worker", Full: "MyApp.Jobs.Worker"}, h.Bindings[0])
}

func TestWalkParsedSource_GroupAlias(t *testing.T) {
	tree, err := syntax.Parse(context.Background(), []byte("alias MyApp.Jobs.{Worker, Queue}\n"))
	require.NoError(t, err)

	h := Walk(tree)
	assert.ElementsMatch(t, []resolve.Binding{
		{Short: "Worker", Full: "MyApp.Jobs.Worker"},
		{Short: "Queue", Full: "MyApp.Jobs.Queue"},
	}, h.Bindings)
	assert.Empty(t, h.Calls, "group alias must yield zero call sites")
}

func TestWalkParsedSource_RenamedAlias(t *testing.T) {
	src := "alias MyApp.Jobs.Worker, as: W\nW.run(1, 2)\n"
	tree, err := syntax.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	h := Walk(tree)
	require.Len(t, h.Bindings, 1)
	assert.Equal(t, resolve.Binding{Short: "W", Full: "MyApp.Jobs.Worker"}, h.Bindings[0])
	assert.Contains(t, h.Calls, CallSite{Prefix: "W", Fun: "run", Arity: 2, HasArity: true})
}

func TestWalkParsedSource_Capture(t *testing.T) {
	src := "Enum.map(items, &MyApp.Jobs.Worker.run/2)\n"
	tree, err := syntax.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	h := Walk(tree)
	assert.Contains(t, h.Calls, CallSite{Prefix: "MyApp.Jobs.Worker", Fun: "run", Arity: 2, HasArity: true})
	assert.Contains(t, h.Calls, CallSite{Prefix: "Enum", Fun: "map", Arity: 2, HasArity: true})
	assert.Len(t, h.Calls, 2)
}
