package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/budeshi/budeshi/internal/config"
	"github.com/stretchr/testify/require"
)

// isolate keeps config discovery away from the developer's own files and
// BUDESHI_* environment.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, kv := range []string{"BUDESHI_LLM_API_KEY", "BUDESHI_STORE_BACKEND", "BUDESHI_RESOLUTION_MODE"} {
		t.Setenv(kv, "")
	}
}

// baseArgs selects an in-memory project store, a throwaway SQLite database
// and local resolution.
var baseArgs = []string{"--store", "memory", "--db", ":memory:", "--mode", "local", "--log-level", "error"}

// executeCmd runs a fresh root command against the production wiring.
func executeCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, Wire, stdin, args...)
}

func executeWith(t *testing.T, build Builder, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(build)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(append([]string{}, baseArgs...), args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// sharedApp wires one App and hands it to every command, so state written by
// one invocation is visible to the next.
func sharedApp(t *testing.T) Builder {
	t.Helper()
	var app *App
	return func(ctx context.Context, cfg *config.Config) (*App, error) {
		if app != nil {
			return app, nil
		}
		built, err := Wire(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if built.Close != nil {
			closeDB := built.Close
			t.Cleanup(func() { require.NoError(t, closeDB()) })
			built.Close = nil
		}
		app = built
		return app, nil
	}
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansi.ReplaceAllString(s, "")
}
