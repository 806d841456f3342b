// internal/bootstrap/bootstrap_test.go
//
// End-to-end tests for the bootstrap pipeline.
//
// Context
// -------
// Each test lays out a sandbox under t.TempDir():
//
//	root/
//	  app/
//	  config/   environment, developerIps, *.yaml layers
//	  log/
//	  temp/
//
// and drives New → Resolve or Build with an explicit Request.  The tests
// cover the worked examples (unlisted caller in production, localhost in
// development), the three abort kinds, and the container hand-off.
//
// Run: go test ./internal/bootstrap -v

package bootstrap

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/yanizio/bootkit/internal/container"
	"github.com/yanizio/bootkit/internal/debugmode"
	"github.com/yanizio/bootkit/internal/environment"
	"github.com/yanizio/bootkit/internal/paths"
)

type sandbox struct {
	root string
	raw  map[string]string
}

func newSandbox(t *testing.T, env string) *sandbox {
	t.Helper()
	root := t.TempDir()
	s := &sandbox{
		root: root,
		raw: map[string]string{
			paths.App:    filepath.Join(root, "app"),
			paths.Config: filepath.Join(root, "config"),
			paths.Log:    filepath.Join(root, "log"),
			paths.Root:   root,
			paths.Temp:   filepath.Join(root, "temp"),
		},
	}
	for _, d := range []string{"app", "config"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if env != "" {
		s.write(t, environment.FileName, env+"\n")
	}
	s.write(t, "default.yaml", "app:\n  name: sandbox\n")
	return s
}

func (s *sandbox) write(t *testing.T, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(s.raw[paths.Config], name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (s *sandbox) cfg(name string) string { return filepath.Join(s.raw[paths.Config], name) }

func (s *sandbox) bootstrapper(t *testing.T) *Bootstrapper {
	t.Helper()
	b, err := New(s.raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.EnvPrefix = ""
	return b
}

func restoreGlobalLogger(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })
}

func TestResolve_UnlistedCallerInProduction(t *testing.T) {
	s := newSandbox(t, "production")
	s.write(t, "debug.yaml", "")
	s.write(t, "env.production.yaml", "")

	p, err := s.bootstrapper(t).Resolve(debugmode.Request{
		Caller: "10.0.0.5",
		Query:  url.Values{debugmode.Key: {"yes"}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Decision.Enabled || p.Decision.ExplicitlyDisabled {
		t.Fatalf("decision = %+v", p.Decision)
	}
	if p.Cookie != nil {
		t.Fatal("cookie written for unlisted caller")
	}
	want := []string{s.cfg("default.yaml"), s.cfg("env.production.yaml")}
	if strings.Join(p.Layers, ",") != strings.Join(want, ",") {
		t.Fatalf("layers = %v, want %v", p.Layers, want)
	}
	if p.State != ConfigLayersResolved {
		t.Fatalf("state = %v", p.State)
	}
}

func TestResolve_LocalhostInDevelopment(t *testing.T) {
	s := newSandbox(t, "development")
	s.write(t, "debug.yaml", "")

	p, err := s.bootstrapper(t).Resolve(debugmode.Request{Caller: "127.0.0.1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !p.Decision.Enabled || p.Decision.ExplicitlyDisabled {
		t.Fatalf("decision = %+v", p.Decision)
	}
	if p.Cookie == nil || p.Cookie.Value != "yes" {
		t.Fatalf("cookie = %+v", p.Cookie)
	}
	if len(p.Layers) != 2 || p.Layers[1] != s.cfg("debug.yaml") {
		t.Fatalf("layers = %v", p.Layers)
	}
}

func TestResolve_DeveloperIPsFile(t *testing.T) {
	s := newSandbox(t, "production")
	s.write(t, environment.DevelopersFileName, "10.0.0.5\n")

	p, err := s.bootstrapper(t).Resolve(debugmode.Request{
		Caller: "10.0.0.5",
		Query:  url.Values{debugmode.Key: {"yes"}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !p.Decision.Enabled || p.Cookie == nil {
		t.Fatalf("listed caller denied: %+v", p.Decision)
	}

	// 127.0.0.1 is no longer listed once the file exists.
	p, _ = s.bootstrapper(t).Resolve(debugmode.Request{Caller: "127.0.0.1"})
	if p.Decision.Enabled || p.Cookie != nil {
		t.Fatalf("default allowlist leaked: %+v", p.Decision)
	}
}

func TestResolve_ConsoleOverride(t *testing.T) {
	s := newSandbox(t, "development")
	b := s.bootstrapper(t)

	p, err := b.Resolve(b.ConsoleRequest())
	if err != nil || !p.Decision.Enabled {
		t.Fatalf("auto in development: %+v, %v", p, err)
	}

	if err := b.SetConsoleDebugMode(debugmode.ConsoleDisabled); err != nil {
		t.Fatal(err)
	}
	p, _ = b.Resolve(debugmode.ConsoleRequest(debugmode.ConsoleEnabled))
	if p.Decision.Enabled {
		t.Fatal("bootstrapper override ignored")
	}
	if p.Cookie != nil || p.Allowlist != nil {
		t.Fatal("console run consulted the allowlist or wrote a cookie")
	}

	if err := b.SetConsoleDebugMode(debugmode.ConsoleMode(9)); err == nil {
		t.Fatal("expected error for invalid console mode")
	}
}

func TestNew_MissingPathKeys(t *testing.T) {
	_, err := New(map[string]string{paths.App: "/app"})
	var abort *AbortError
	if !errors.As(err, &abort) || abort.Kind != MissingPathKeys {
		t.Fatalf("err = %v, want MissingPathKeys abort", err)
	}
	if !errors.Is(err, paths.ErrMissingKeys) {
		t.Fatal("cause not reachable through errors.Is")
	}
}

func TestResolve_MissingEnvironmentFile(t *testing.T) {
	s := newSandbox(t, "")

	p, err := s.bootstrapper(t).Resolve(debugmode.Request{Caller: "127.0.0.1"})
	if p != nil {
		t.Fatal("plan produced without an environment")
	}
	var abort *AbortError
	if !errors.As(err, &abort) || abort.Kind != MissingEnvironmentFile {
		t.Fatalf("err = %v, want MissingEnvironmentFile abort", err)
	}
	if abort.From != PathsValidated {
		t.Fatalf("aborted from %v", abort.From)
	}
	if !errors.Is(err, environment.ErrMissingEnvironmentFile) {
		t.Fatal("cause not reachable through errors.Is")
	}
	if !strings.HasPrefix(abort.Report(), environment.HaltMessage) {
		t.Fatalf("report = %q", abort.Report())
	}
}

func TestResolve_PathValidationFailure(t *testing.T) {
	s := newSandbox(t, "production")
	for _, f := range []string{s.raw[paths.Log], s.raw[paths.Temp]} {
		if err := os.WriteFile(f, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := s.bootstrapper(t).Resolve(debugmode.Request{Caller: "127.0.0.1"})
	var abort *AbortError
	if !errors.As(err, &abort) || abort.Kind != PathValidationFailure {
		t.Fatalf("err = %v, want PathValidationFailure abort", err)
	}
	if abort.State() != Aborted || abort.From != Start {
		t.Fatalf("state = %v, from = %v", abort.State(), abort.From)
	}

	lines := strings.Split(abort.Report(), "\n")
	if len(lines) != 3 {
		t.Fatalf("report should list every path:\n%s", abort.Report())
	}
	if lines[0] != abort.Message {
		t.Fatalf("first line = %q", lines[0])
	}
	for i, p := range []string{s.raw[paths.Log], s.raw[paths.Temp]} {
		if !strings.Contains(lines[i+1], p) {
			t.Fatalf("line %d = %q, want mention of %s", i+1, lines[i+1], p)
		}
	}

	var pe *paths.PathError
	if !errors.As(err, &pe) || pe.Key != paths.Log {
		t.Fatalf("PathError not reachable through errors.As: %v", pe)
	}
}

func TestBuild_HandsOffToContainer(t *testing.T) {
	restoreGlobalLogger(t)
	s := newSandbox(t, "stage")
	s.write(t, "local.yaml", "app:\n  name: local\n")

	b := s.bootstrapper(t)
	b.AddScanDirs(s.raw[paths.App])
	var prepared *container.Builder
	b.OnPrepared = append(b.OnPrepared, func(cb *container.Builder) {
		prepared = cb
		cb.AddParameters(map[string]any{"extra": "yes"})
	})

	res, err := b.Build(context.Background(), debugmode.Request{
		Caller: "::1",
		Query:  url.Values{debugmode.Key: {"no"}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if prepared == nil {
		t.Fatal("OnPrepared callback not called")
	}
	if res.State != HandoffToContainerBuilder {
		t.Fatalf("state = %v", res.State)
	}

	c := res.Container
	ps := c.Settings().Parameters
	if ps.Environment != "stage" || ps.DebugMode || !ps.DebugModeExplicitlyDisabled {
		t.Fatalf("parameters = %+v", ps)
	}
	if ps.AppDir != s.raw[paths.App] || ps.Paths[paths.Log] != s.raw[paths.Log] {
		t.Fatalf("paths not passed through: %+v", ps)
	}
	if c.Parameter("extra") != "yes" {
		t.Fatal("callback parameter lost")
	}
	if c.Settings().App.Name != "local" {
		t.Fatalf("local layer not applied: %q", c.Settings().App.Name)
	}

	if svc, err := c.Get(LoggerService); err != nil || svc != res.Log {
		t.Fatalf("logger service = %v, %v", svc, err)
	}
	if _, err := c.Get("database"); !errors.Is(err, ErrDatabaseNotConfigured) {
		t.Fatalf("database err = %v", err)
	}
	for _, d := range []string{"log", "temp/sessions", "temp/cache"} {
		if _, err := os.Stat(filepath.Join(s.root, d)); err != nil {
			t.Fatalf("%s missing: %v", d, err)
		}
	}
}

func TestBuild_AbortProducesNoContainer(t *testing.T) {
	s := newSandbox(t, "")
	res, err := s.bootstrapper(t).Build(context.Background(), debugmode.ConsoleRequest(debugmode.ConsoleAuto))
	if res != nil || err == nil {
		t.Fatalf("res = %v, err = %v", res, err)
	}
}

func TestBuild_MissingDefaultLayer(t *testing.T) {
	restoreGlobalLogger(t)
	s := newSandbox(t, "production")
	if err := os.Remove(s.cfg("default.yaml")); err != nil {
		t.Fatal(err)
	}
	_, err := s.bootstrapper(t).Build(context.Background(), debugmode.ConsoleRequest(debugmode.ConsoleAuto))
	if err == nil {
		t.Fatal("expected container builder error")
	}
	var abort *AbortError
	if errors.As(err, &abort) {
		t.Fatal("a missing base layer is the builder's error, not an abort")
	}
}
