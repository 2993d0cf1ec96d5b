package apiscope

import "github.com/jward/apiscope/internal/introspect"

// Public type aliases for internal types used in the Engine API. These are
// Go type aliases (=), identical to the internal types at compile time, so
// external consumers can implement or construct them without conversion.

type Checker = introspect.Checker
type Fingerprinter = introspect.Fingerprinter
type ExecChecker = introspect.ExecChecker
type MapChecker = introspect.MapChecker

// NewExecChecker returns the existence checker backed by a live Elixir
// installation. See [introspect.NewExecChecker].
var NewExecChecker = introspect.NewExecChecker
