// Package apiscope statically checks the API surface used by a corpus of
// Elixir sources and Livebook notebooks: every qualified call is extracted,
// resolved through the file's alias bindings, and verified against the
// compiled program's own introspection facilities.
//
// # Pipeline
//
// For each file, the Engine runs:
//
//  1. Isolate: Livebook documents (.livemd) are reduced to their executable
//     ```elixir fences; blocks marked with the force_markdown directive are
//     illustrations and are dropped.
//  2. Parse: the executable text is parsed with tree-sitter's Elixir
//     grammar. Files tree-sitter cannot make structural sense of fall back
//     to a best-effort pattern scan instead of failing the run.
//  3. Extract: a single tree walk harvests alias bindings (including
//     renamed and brace-group forms) and every Module.function call site
//     with its arity, when syntactically present.
//  4. Resolve: each call's module prefix is rewritten to the
//     fully-qualified name the compiler would use: explicit alias first,
//     then the enclosing namespace of nested module definitions, with
//     standard-library names exempt from implicit qualification.
//  5. Check: a call is valid when its resolved module matches an allowed
//     prefix, or when the injected existence checker confirms the function
//     is exported under any arity.
//
// Files are processed concurrently; per-file failures become reported
// results rather than aborting the batch.
//
// # Usage
//
//	engine, err := apiscope.New(
//		apiscope.WithAllowedPrefixes("MyApp"),
//		apiscope.WithChecker(checker),
//	)
//	if err != nil { ... }
//	defer engine.Close()
//
//	results, err := engine.CheckDirectory(ctx, "path/to/project")
//
// Each [Result] carries the file's resolved call set, its invalid subset,
// and a validity flag; the result list is sorted by path for deterministic
// reporting.
package apiscope
