package paths

import (
	"os"
	"path/filepath"
)

// RootEnv overrides root discovery.
const RootEnv = "BOOTKIT_ROOT"

// DiscoverRoot resolves BOOTKIT_ROOT, or climbs from the working directory
// until a directory holding config/environment is found.  Falls back to the
// parent of a `bin` executable directory, then to the working directory.
func DiscoverRoot() string {
	if r := os.Getenv(RootEnv); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "config", "environment")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	if exe, err := os.Executable(); err == nil && filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

// Defaults lays the five required keys out under root.
func Defaults(root string) map[string]string {
	return map[string]string{
		App:    filepath.Join(root, "app"),
		Config: filepath.Join(root, "config"),
		Log:    filepath.Join(root, "log"),
		Root:   root,
		Temp:   filepath.Join(root, "temp"),
	}
}
