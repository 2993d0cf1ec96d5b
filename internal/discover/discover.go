// Package discover lists the Elixir sources and Livebook notebooks under a
// set of roots, honoring glob-based exclusion patterns.
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// sourceExts are the extensions the checker understands. .livemd files go
// through notebook isolation before parsing.
var sourceExts = map[string]bool{
	".ex":     true,
	".exs":    true,
	".livemd": true,
}

// skipDirs are build and dependency directories excluded regardless of
// configuration.
var skipDirs = map[string]bool{
	"_build":       true,
	"deps":         true,
	"node_modules": true,
}

// IsNotebook reports whether path is a Livebook document.
func IsNotebook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".livemd")
}

// IsSource reports whether path has an extension the checker understands.
func IsSource(path string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(path))]
}

// Files walks roots and returns every supported file, sorted, excluding
// hidden directories, build output, and anything matching the exclusion
// globs (matched against path base names, as in `*_test.exs`).
// Invalid patterns are configuration errors and fail immediately.
func Files(roots []string, excludeDirs, excludeFiles []string) ([]string, error) {
	dirGlobs, err := compileGlobs(excludeDirs)
	if err != nil {
		return nil, fmt.Errorf("exclude dir pattern: %w", err)
	}
	fileGlobs, err := compileGlobs(excludeFiles)
	if err != nil {
		return nil, fmt.Errorf("exclude file pattern: %w", err)
	}

	seen := make(map[string]bool)
	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			base := filepath.Base(path)
			if d.IsDir() {
				if path != root && (strings.HasPrefix(base, ".") || skipDirs[base] || matchAny(dirGlobs, base)) {
					return filepath.SkipDir
				}
				return nil
			}
			if !IsSource(path) || matchAny(fileGlobs, base) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
