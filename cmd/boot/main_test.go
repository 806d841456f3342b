package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func sandbox(t *testing.T, env string) string {
	t.Helper()
	root := t.TempDir()
	cfg := filepath.Join(root, "config")
	if err := os.MkdirAll(cfg, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "app"), 0o755); err != nil {
		t.Fatal(err)
	}
	if env != "" {
		if err := os.WriteFile(filepath.Join(cfg, "environment"), []byte(env), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(cfg, "default.yaml"), []byte("app:\n  name: cli\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestRun(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)
	t.Setenv("VAULT_ADDR", "")

	root := sandbox(t, "production")
	if code := run([]string{"--root", root, "--console-debug", "enabled"}); code != 0 {
		t.Fatalf("exit = %d", code)
	}
}

func TestRun_MissingEnvironment(t *testing.T) {
	root := sandbox(t, "")
	if code := run([]string{"--root", root}); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
}

func TestRun_BadFlag(t *testing.T) {
	if code := run([]string{"--console-debug", "sometimes"}); code != 2 {
		t.Fatalf("exit = %d, want 2", code)
	}
}
