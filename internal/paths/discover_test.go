package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverRoot_Env(t *testing.T) {
	t.Setenv(RootEnv, "/srv/app")
	if got := DiscoverRoot(); got != "/srv/app" {
		t.Fatalf("root = %q", got)
	}
}

func TestDiscoverRoot_ClimbsToEnvironmentFile(t *testing.T) {
	t.Setenv(RootEnv, "")
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "config", "environment"), []byte("stage"), 0o644); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "app", "module")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(deep)

	if got := DiscoverRoot(); got != root {
		t.Fatalf("root = %q, want %q", got, root)
	}
}

func TestDefaults_SatisfyNew(t *testing.T) {
	if _, err := New(Defaults("/srv/app")); err != nil {
		t.Fatalf("New(Defaults) = %v", err)
	}
}
