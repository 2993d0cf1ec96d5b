package apiscope

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jward/apiscope/internal/discover"
	"github.com/jward/apiscope/internal/extract"
	"github.com/jward/apiscope/internal/introspect"
	"github.com/jward/apiscope/internal/notebook"
	"github.com/jward/apiscope/internal/resolve"
	"github.com/jward/apiscope/internal/store"
	"github.com/jward/apiscope/internal/syntax"
)

// Engine orchestrates the validation pipeline: file discovery, notebook
// isolation, parsing, alias/call extraction, resolution, and the existence
// check against the compiled program.
type Engine struct {
	checker      introspect.Checker
	prefixes     []string
	workers      int
	excludeDirs  []string
	excludeFiles []string

	cachePath string
	cache     *store.Store
}

// Result is one file's validation outcome. Calls and InvalidCalls hold
// rendered call strings (`Module.fun` or `Module.fun/arity`), sorted. For a
// checked file, Valid is true exactly when InvalidCalls is empty. Err is set
// only for files that could not be read at all; such entries carry no calls
// and count as failures.
type Result struct {
	Path         string   `json:"path"`
	Calls        []string `json:"calls"`
	InvalidCalls []string `json:"invalid_calls"`
	Valid        bool     `json:"valid"`
	Err          string   `json:"error,omitempty"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithChecker injects the existence-check collaborator. Defaults to an
// ExecChecker against the Elixir installation on PATH.
func WithChecker(c introspect.Checker) Option {
	return func(e *Engine) { e.checker = c }
}

// WithAllowedPrefixes sets module-name prefixes that are valid without an
// existence check.
func WithAllowedPrefixes(prefixes ...string) Option {
	return func(e *Engine) { e.prefixes = prefixes }
}

// WithWorkers bounds the number of files checked concurrently.
// Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithExcludes sets discovery exclusion globs, matched against base names.
func WithExcludes(dirs, files []string) Option {
	return func(e *Engine) {
		e.excludeDirs = dirs
		e.excludeFiles = files
	}
}

// WithCache enables the SQLite result cache at dbPath. Files whose content
// hash matches a cached entry are not re-checked.
func WithCache(dbPath string) Option {
	return func(e *Engine) { e.cachePath = dbPath }
}

// New creates an Engine. The returned Engine must be Closed when a cache is
// configured.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		checker: introspect.NewExecChecker("", false),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}

	if e.cachePath != "" {
		s, err := store.NewStore(e.cachePath)
		if err != nil {
			return nil, fmt.Errorf("apiscope: open cache: %w", err)
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, fmt.Errorf("apiscope: migrate cache: %w", err)
		}
		e.cache = s
		if err := e.invalidateStaleCache(); err != nil {
			s.Close()
			return nil, fmt.Errorf("apiscope: cache: %w", err)
		}
	}

	return e, nil
}

// Close releases the Engine's cache resources, if any.
func (e *Engine) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

// configHash fingerprints the settings that affect validation outcomes: the
// allowed prefixes and the identity of the existence checker. Cached results
// computed under a different configuration are unusable.
func (e *Engine) configHash() string {
	prefixes := make([]string, len(e.prefixes))
	copy(prefixes, e.prefixes)
	sort.Strings(prefixes)

	h := sha256.New()
	for _, p := range prefixes {
		fmt.Fprintf(h, "prefix:%s\n", p)
	}
	fmt.Fprintf(h, "checker:%s\n", checkerFingerprint(e.checker))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// checkerFingerprint describes a checker's configuration for cache
// invalidation. Checkers that don't self-describe fall back to their type:
// swapping checker implementations still invalidates, while two instances of
// the same non-describing type are assumed interchangeable.
func checkerFingerprint(c introspect.Checker) string {
	if f, ok := c.(introspect.Fingerprinter); ok {
		return f.Fingerprint()
	}
	return fmt.Sprintf("%T", c)
}

// invalidateStaleCache clears cached results when the stored configuration
// hash does not match the current one, then records the current hash.
func (e *Engine) invalidateStaleCache() error {
	current := e.configHash()
	stored, err := e.cache.GetMetadata("config_hash")
	if err != nil {
		return err
	}
	if stored != current {
		if err := e.cache.Clear(); err != nil {
			return err
		}
		if err := e.cache.SetMetadata("config_hash", current); err != nil {
			return err
		}
	}
	return nil
}

// CheckDirectory discovers supported files under root and checks them.
func (e *Engine) CheckDirectory(ctx context.Context, root string) ([]Result, error) {
	paths, err := discover.Files([]string{root}, e.excludeDirs, e.excludeFiles)
	if err != nil {
		return nil, err
	}
	return e.CheckFiles(ctx, paths)
}

// CheckFiles validates the given files concurrently. Each file's pipeline
// touches only its own text plus the shared read-only configuration, so
// files are independent; results come back sorted by path regardless of
// completion order. Per-file failures are demoted to Results and never
// abort the batch.
func (e *Engine) CheckFiles(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.checkFile(ctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// checkFile runs the full pipeline for one file.
func (e *Engine) checkFile(ctx context.Context, path string) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Sprintf("read file: %v", err)}
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	if e.cache != nil {
		cached, err := e.cache.ResultByPath(path)
		if err != nil {
			slog.Warn("cache lookup failed", "path", path, "error", err)
		} else if cached != nil && cached.Hash == hash {
			return Result{
				Path:         path,
				Calls:        cached.Calls,
				InvalidCalls: cached.InvalidCalls,
				Valid:        cached.Valid,
			}
		}
	}

	text := string(content)
	if discover.IsNotebook(path) {
		text = notebook.Isolate(text)
	}

	result := e.checkSource(ctx, path, text)

	if e.cache != nil && result.Err == "" {
		err := e.cache.UpsertResult(&store.CachedResult{
			Path:         path,
			Hash:         hash,
			Valid:        result.Valid,
			Calls:        result.Calls,
			InvalidCalls: result.InvalidCalls,
			CheckedAt:    time.Now(),
		})
		if err != nil {
			slog.Warn("cache write failed", "path", path, "error", err)
		}
	}

	return result
}

// checkSource extracts, resolves, and classifies the calls of one file's
// executable text.
func (e *Engine) checkSource(ctx context.Context, path, text string) Result {
	if strings.TrimSpace(text) == "" {
		// Notebook with no executable fences, or an empty source file.
		return Result{Path: path, Calls: []string{}, InvalidCalls: []string{}, Valid: true}
	}

	var harvest *extract.Harvest
	tree, err := syntax.Parse(ctx, []byte(text))
	if err != nil {
		var perr *syntax.ParseError
		if !errors.As(err, &perr) {
			return Result{Path: path, Err: fmt.Sprintf("parse: %v", err)}
		}
		// Degraded path: intentional fragments don't parse standalone.
		// Pattern scanning keeps the file in the run, minus arity fidelity.
		slog.Warn("structural parse failed, falling back to pattern scan",
			"path", path, "line", perr.Line)
		harvest = extract.Fallback(text)
	} else {
		harvest = extract.Walk(tree)
	}

	table := resolve.NewTable(harvest.Bindings)
	table.Namespace = harvest.Namespace

	callSet := make(map[string]struct{}, len(harvest.Calls))
	invalidSet := make(map[string]struct{})
	for cs := range harvest.Calls {
		module := table.Resolve(cs.Prefix)
		rendered := module + "." + cs.Fun
		if cs.HasArity {
			rendered += "/" + strconv.Itoa(cs.Arity)
		}
		callSet[rendered] = struct{}{}

		if !e.prefixAllowed(module) && !e.checker.Exists(ctx, module, cs.Fun) {
			invalidSet[rendered] = struct{}{}
		}
	}

	return Result{
		Path:         path,
		Calls:        sortedKeys(callSet),
		InvalidCalls: sortedKeys(invalidSet),
		Valid:        len(invalidSet) == 0,
	}
}

// prefixAllowed reports whether a resolved module name starts with any
// configured allowed prefix.
func (e *Engine) prefixAllowed(module string) bool {
	for _, p := range e.prefixes {
		if strings.HasPrefix(module, p) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
