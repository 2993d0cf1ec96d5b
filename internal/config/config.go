// Package config loads and validates apiscope.toml. Configuration problems
// are the one fatal error class: they surface before any file is processed.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

// Config is the full tool configuration.
type Config struct {
	// AllowedPrefixes short-circuits validation: a resolved call whose
	// module starts with any of these is valid without an existence check.
	AllowedPrefixes []string `toml:"allowed_prefixes"`

	Exclude Exclude `toml:"exclude"`
	Cache   Cache   `toml:"cache"`
	Runtime Runtime `toml:"runtime"`
	Docs    Docs    `toml:"docs"`
}

// Exclude holds glob patterns matched against base names during discovery.
type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// Cache configures the on-disk result cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Runtime configures how the existence checker reaches the BEAM.
type Runtime struct {
	// MixProject loads modules through `mix run` in the checked project
	// instead of a bare `elixir` invocation.
	MixProject bool `toml:"mix_project"`
}

// Docs configures documentation generation.
type Docs struct {
	Output     string     `toml:"output"`
	Categories []Category `toml:"categories"`
}

// Category assigns modules to a documentation section by regex. The first
// matching category in file order wins.
type Category struct {
	Name        string `toml:"name"`
	Pattern     string `toml:"pattern"`
	Description string `toml:"description"`
}

// Default returns the configuration used when no apiscope.toml exists.
func Default() *Config {
	return &Config{
		Cache: Cache{Path: ".apiscope/results.db"},
		Docs:  Docs{Output: "API.md"},
	}
}

// Load reads path and validates the result. A missing file yields Default()
// with no error; anything else wrong with the file is fatal.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, p := range c.AllowedPrefixes {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("allowed_prefixes: empty prefix")
		}
	}
	for _, p := range append(append([]string{}, c.Exclude.Dirs...), c.Exclude.Files...) {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("exclude pattern %q: %w", p, err)
		}
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache.path required when cache.enabled")
	}
	for _, cat := range c.Docs.Categories {
		if cat.Name == "" {
			return fmt.Errorf("docs category with empty name")
		}
		if _, err := regexp.Compile(cat.Pattern); err != nil {
			return fmt.Errorf("docs category %q pattern: %w", cat.Name, err)
		}
	}
	return nil
}

// CategoryPatterns compiles the category regexes in file order. Call after
// Load; patterns are already validated.
func (c *Config) CategoryPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(c.Docs.Categories))
	for i, cat := range c.Docs.Categories {
		out[i] = regexp.MustCompile(cat.Pattern)
	}
	return out
}
