package docgen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// ExecLister enumerates an application's modules through the BEAM: it runs a
// snippet under `mix run` that walks the app's module list and prints each
// module's moduledoc and public function signatures in a line protocol
// ("==" module, "--" doc line, "++" signature).
type ExecLister struct {
	// Dir is the Mix project root.
	Dir string

	// App is the OTP application name (snake_case). Validated before being
	// interpolated into the snippet.
	App string
}

var appNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// listerScript prints one block per module. Modules without docs still get
// their "==" line so the signature listing survives.
const listerScript = `{:ok, mods} = :application.get_key(:%s, :modules)
for mod <- Enum.sort(mods) do
  IO.puts("== " <> inspect(mod))
  case Code.fetch_docs(mod) do
    {:docs_v1, _, :elixir, _, %%{"en" => moduledoc}, _, docs} ->
      moduledoc |> String.split("\n") |> Enum.take(3) |> Enum.each(&IO.puts("-- " <> &1))
      for {{:function, _name, _arity}, _, [sig | _], _, _} <- docs do
        IO.puts("++ " <> sig)
      end
    _ ->
      :ok
  end
end`

// Modules implements Lister.
func (l *ExecLister) Modules(ctx context.Context) ([]ModuleInfo, error) {
	if !appNameRe.MatchString(l.App) {
		return nil, fmt.Errorf("docgen: invalid application name %q", l.App)
	}

	code := fmt.Sprintf(listerScript, l.App)
	cmd := exec.CommandContext(ctx, "mix", "run", "--no-start", "-e", code)
	cmd.Dir = l.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("docgen: mix run: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseListing(stdout.String()), nil
}

// parseListing decodes the line protocol emitted by listerScript.
func parseListing(out string) []ModuleInfo {
	var mods []ModuleInfo
	var current *ModuleInfo

	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "== "):
			if current != nil {
				mods = append(mods, *current)
			}
			current = &ModuleInfo{Module: strings.TrimSpace(strings.TrimPrefix(line, "== "))}
		case strings.HasPrefix(line, "-- ") && current != nil:
			if current.Description != "" {
				current.Description += "\n"
			}
			current.Description += strings.TrimPrefix(line, "-- ")
		case strings.HasPrefix(line, "++ ") && current != nil:
			current.Signatures = append(current.Signatures, strings.TrimPrefix(line, "++ "))
		}
	}
	if current != nil {
		mods = append(mods, *current)
	}
	return mods
}
