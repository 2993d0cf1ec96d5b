package apiscope

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_MixedProject runs the whole pipeline over a small project
// tree: plain sources, an aliased module, a notebook with a suppressed
// block, and one file with a call that resolves to nothing.
func TestIntegration_MixedProject(t *testing.T) {
	dir := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("lib/runner.ex", `defmodule Demo.Runner do
  alias Demo.Jobs.Worker

  def go(items) do
    Worker.run(items, [])
    Enum.map(items, &Demo.Jobs.Worker.run/2)
  end
end
`)
	write("lib/broken.ex", `defmodule Demo.Broken do
  def go do
    Demo.Gone.vanish(1)
  end
end
`)
	write("guides/intro.livemd", `# Intro

`+"```elixir"+`
Demo.Jobs.Worker.run([], [])
`+"```"+`

<!-- livebook:{"force_markdown":true} -->

`+"```elixir"+`
Demo.Imaginary.example(:x)
`+"```"+`
`)
	write("_build/gen.ex", "Totally.Ignored.call(1)\n")

	checker := &MapChecker{Exports: map[string]map[string][]int{
		"Demo.Jobs.Worker": {"run": {2}},
		"Enum":             {"map": {2}},
	}}

	engine, err := New(WithChecker(checker))
	require.NoError(t, err)
	defer engine.Close()

	results, err := engine.CheckDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 3, "build output must be excluded")

	byName := map[string]Result{}
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
	}

	runner := byName["runner.ex"]
	assert.True(t, runner.Valid)
	assert.Contains(t, runner.Calls, "Demo.Jobs.Worker.run/2")
	assert.Contains(t, runner.Calls, "Enum.map/2")

	broken := byName["broken.ex"]
	assert.False(t, broken.Valid)
	assert.Equal(t, []string{"Demo.Gone.vanish/1"}, broken.InvalidCalls)

	intro := byName["intro.livemd"]
	assert.True(t, intro.Valid, "suppressed notebook block must not be checked")
	assert.Equal(t, []string{"Demo.Jobs.Worker.run/2"}, intro.Calls)
}

// TestIntegration_TwoFilesOneInvalid is the minimal valid/invalid split: one
// file whose call exists, one whose call neither exists nor matches an
// allowed prefix.
func TestIntegration_TwoFilesOneInvalid(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ex")
	bad := filepath.Join(dir, "bad.ex")
	require.NoError(t, os.WriteFile(good, []byte("Known.Mod.here(1)\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("Unknown.Mod.gone(1)\n"), 0o644))

	checker := &MapChecker{Exports: map[string]map[string][]int{
		"Known.Mod": {"here": {1}},
	}}
	engine, err := New(WithChecker(checker))
	require.NoError(t, err)
	defer engine.Close()

	results, err := engine.CheckFiles(context.Background(), []string{good, bad})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Valid)
	assert.Equal(t, []string{"Unknown.Mod.gone/1"}, results[0].InvalidCalls)
	assert.True(t, results[1].Valid)
	assert.Empty(t, results[1].InvalidCalls)
}
