package eiffel

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func compileScriptWithConfig(t testing.TB, cfg Config, source string) *Script {
	t.Helper()
	engine := MustNewEngine(cfg)
	script, err := engine.Compile(source)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return script
}

func compileScriptDefault(t testing.TB, source string) *Script {
	t.Helper()
	return compileScriptWithConfig(t, Config{}, source)
}

func runScriptWithConfig(t testing.TB, cfg Config, source string) (string, error) {
	t.Helper()
	script := compileScriptWithConfig(t, cfg, source)
	var out bytes.Buffer
	err := script.Run(context.Background(), &out)
	return out.String(), err
}

// requireOutput runs source with the default config and fails on any error.
func requireOutput(t testing.TB, source, want string) {
	t.Helper()
	got, err := runScriptWithConfig(t, Config{}, source)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got != want {
		t.Fatalf("output mismatch\nwant: %q\n got: %q", want, got)
	}
}

func requireErrorContains(t testing.TB, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func requireRuntimeError(t testing.TB, err error, kind string) *RuntimeError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", kind)
	}
	rtErr, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if rtErr.Type != kind {
		t.Fatalf("expected %s, got %s: %v", kind, rtErr.Type, err)
	}
	return rtErr
}

const counterClass = `
class COUNTER
feature
  value: INTEGER

  inc
    do
      value := value + 1
    end
end
`

const pointClass = `
class POINT
feature
  x, y: INTEGER
  label: STRING
  scale: REAL

  make(ax, ay: INTEGER)
    do
      x := ax
      y := ay
    end
end
`
