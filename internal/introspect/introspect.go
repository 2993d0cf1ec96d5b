// Package introspect answers whether a function is actually exported by a
// module in the compiled program. The real implementation asks the BEAM
// itself; a deterministic in-memory fake backs tests.
package introspect

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
)

// Checker reports whether a fully-qualified module exports a function under
// any arity. Implementations fail closed: any error, including the module
// never having been loaded, reads as "does not exist". Calls must be
// idempotent and side-effect-free from the caller's perspective.
type Checker interface {
	Exists(ctx context.Context, module, fun string) bool
}

// Fingerprinter is implemented by checkers whose answers depend on external
// configuration. The fingerprint participates in result-cache invalidation:
// cached verdicts are discarded when it changes.
type Fingerprinter interface {
	Fingerprint() string
}

// moduleRe and funRe validate names before they are interpolated into code
// handed to the BEAM. Anything else is unresolvable and reads as false.
var (
	moduleRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*(\.[A-Z][A-Za-z0-9_]*)*$`)
	funRe    = regexp.MustCompile(`^[a-z_][A-Za-z0-9_]*[?!]?$`)
)

// ExecChecker queries a live Elixir installation via `elixir -e`, or via
// `mix run` inside a project directory so the project's own modules are
// loadable. Results are cached: an existence check may trigger lazy loading
// of a module and is the one expensive step in a validation run.
type ExecChecker struct {
	// Dir is the working directory for the spawned process. When
	// MixProject is set, this should be the project root.
	Dir string

	// MixProject selects `mix run --no-start -e` over plain `elixir -e`.
	MixProject bool

	mu    sync.Mutex
	cache map[string]bool
}

// NewExecChecker returns a Checker backed by the Elixir runtime found on
// PATH, rooted at dir. mixProject selects project-aware loading.
func NewExecChecker(dir string, mixProject bool) *ExecChecker {
	return &ExecChecker{Dir: dir, MixProject: mixProject, cache: make(map[string]bool)}
}

// Fingerprint implements Fingerprinter. Dir and MixProject change which
// modules are loadable, so either difference must invalidate cached results.
func (c *ExecChecker) Fingerprint() string {
	return fmt.Sprintf("exec:dir=%s:mix=%t", c.Dir, c.MixProject)
}

// Exists implements Checker.
func (c *ExecChecker) Exists(ctx context.Context, module, fun string) bool {
	if !moduleRe.MatchString(module) || !funRe.MatchString(fun) {
		return false
	}

	key := module + "." + fun
	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	exists := c.query(ctx, module, fun)

	c.mu.Lock()
	c.cache[key] = exists
	c.mu.Unlock()
	return exists
}

// query spawns the BEAM and prints "true" or "false". The snippet searches
// the export table across every arity: default-valued parameters and partial
// application make literal arity an unreliable signal, so any arity counts.
func (c *ExecChecker) query(ctx context.Context, module, fun string) bool {
	code := fmt.Sprintf(
		`mod = :"Elixir.%s"
fun = :%q
exists = Code.ensure_loaded?(mod) and Enum.any?(mod.module_info(:exports), fn {name, _} -> name == fun end)
IO.write(if exists, do: "true", else: "false")`,
		module, fun,
	)

	var cmd *exec.Cmd
	if c.MixProject {
		cmd = exec.CommandContext(ctx, "mix", "run", "--no-start", "--no-compile", "-e", code)
	} else {
		cmd = exec.CommandContext(ctx, "elixir", "-e", code)
	}
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return false
	}
	return strings.TrimSpace(stdout.String()) == "true"
}

// MapChecker is the deterministic fake: a fixed map of module name to
// exported function arities.
type MapChecker struct {
	// Exports maps module → function → arities. The arity list exists so
	// fixtures read like real export tables; Exists ignores it.
	Exports map[string]map[string][]int
}

// Exists implements Checker. Any recorded arity counts.
func (c *MapChecker) Exists(_ context.Context, module, fun string) bool {
	funs, ok := c.Exports[module]
	if !ok {
		return false
	}
	arities, ok := funs[fun]
	return ok && len(arities) > 0
}
