// internal/config/layers.go
//
// Configuration layer plan.
//
// Context
// -------
// Plan lists the files the container builder merges, lowest precedence
// first:
//
//  1. default.<ext>            always, the builder fails if it is absent.
//  2. debug.<ext>              only in debug mode, only if present.
//  3. env.<environment>.<ext>  only if present.
//  4. local.<ext>              only if present.
//
// Optional layers that are missing are skipped silently, so deployments can
// omit tier or machine overlays.  The order is fixed.
package config

import (
	"os"
	"path/filepath"

	"github.com/yanizio/bootkit/internal/environment"
)

// DefaultExt is the layer file extension koanf's YAML parser reads.
const DefaultExt = "yaml"

// Layers is an ordered list of config file paths.
type Layers []string

// Plan builds the layer list for one bootstrap.  An empty ext means
// DefaultExt.
func Plan(configDir string, env environment.Environment, debug bool, ext string) Layers {
	if ext == "" {
		ext = DefaultExt
	}
	name := func(base string) string {
		return filepath.Join(configDir, base+"."+ext)
	}

	plan := Layers{name("default")}
	if f := name("debug"); debug && exists(f) {
		plan = append(plan, f)
	}
	if f := name("env." + string(env)); exists(f) {
		plan = append(plan, f)
	}
	if f := name("local"); exists(f) {
		plan = append(plan, f)
	}
	return plan
}

func exists(f string) bool {
	_, err := os.Stat(f)
	return err == nil
}
