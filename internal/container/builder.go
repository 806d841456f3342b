// internal/container/builder.go
//
// Container builder: the hand-off target of the bootstrap pipeline.
//
/*
Context
--------
The bootstrapper fills a Builder with everything it resolved:

  • TempDir   – where the merged snapshot is cached in debug mode.
  • Debug     – the process debug posture.
  • Files     – the ordered config layers.
  • ScanDirs  – directories indexed for Locate.
  • Params    – runtime parameters (environment, paths, debug flags).

`OnPrepared` callbacks may adjust the Builder before `Build` merges the
layers through internal/config and returns a ready Container.  Services
are registered as factories and built lazily on first Get.

Notes
-----
  • A missing base layer is this package's error, not the policy's.
  • Oxford commas, two spaces after periods.
*/
package container

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/bootkit/internal/config"
)

// SnapshotName is the merged-config dump written under `{temp}/cache`.
const SnapshotName = "config.yaml"

// Factory builds one service.  It may Get other services through c, but
// not itself; cycles fail with ErrServiceCycle.
type Factory func(c *Container) (any, error)

// Builder collects configuration for one Container.  Not safe for
// concurrent use.
type Builder struct {
	TempDir   string
	Debug     bool
	Files     config.Layers
	ScanDirs  []string
	Params    map[string]any
	EnvPrefix string
	Secrets   config.SecretResolver
	Log       *zap.SugaredLogger

	factories map[string]Factory
}

// NewBuilder returns an empty Builder rooted at tempDir.
func NewBuilder(tempDir string, debug bool) *Builder {
	return &Builder{
		TempDir:   tempDir,
		Debug:     debug,
		Params:    map[string]any{},
		factories: map[string]Factory{},
	}
}

// AddConfig appends a layer after the existing ones.
func (b *Builder) AddConfig(file string) *Builder {
	b.Files = append(b.Files, file)
	return b
}

// AddParameters merges flattened parameter keys; later calls win.
func (b *Builder) AddParameters(p map[string]any) *Builder {
	if b.Params == nil {
		b.Params = map[string]any{}
	}
	for k, v := range p {
		b.Params[k] = v
	}
	return b
}

// AddScanDirs appends directories for Locate.  Earlier directories win.
func (b *Builder) AddScanDirs(dirs ...string) *Builder {
	b.ScanDirs = append(b.ScanDirs, dirs...)
	return b
}

// Register installs a service factory, replacing any previous one.
func (b *Builder) Register(name string, f Factory) *Builder {
	if b.factories == nil {
		b.factories = map[string]Factory{}
	}
	b.factories[name] = f
	return b
}

// Build merges the layers and returns the Container.
func (b *Builder) Build(ctx context.Context) (*Container, error) {
	log := b.Log
	if log == nil {
		log = zap.S()
	}

	k, settings, err := config.Load(ctx, config.Options{
		Files:     b.Files,
		Params:    b.Params,
		EnvPrefix: b.EnvPrefix,
		Secrets:   b.Secrets,
	})
	if err != nil {
		return nil, fmt.Errorf("container config: %w", err)
	}

	index, err := indexScanDirs(b.ScanDirs)
	if err != nil {
		return nil, fmt.Errorf("container scan: %w", err)
	}

	if b.Debug {
		if err := writeSnapshot(b.TempDir, k); err != nil {
			log.Warnw("config snapshot not written", "dir", b.TempDir, "err", err)
		}
	}

	factories := make(map[string]Factory, len(b.factories))
	for n, f := range b.factories {
		factories[n] = f
	}

	log.Infow("container built",
		"layers", len(b.Files),
		"scan_dirs", len(b.ScanDirs),
		"indexed_files", len(index),
		"services", len(factories),
		"debug", b.Debug,
	)
	return newContainer(k, settings, b.Debug, index, factories), nil
}

//
// Helpers
//

// indexScanDirs maps slash-separated relative names to absolute paths.
// The first directory that holds a name wins.
func indexScanDirs(dirs []string) (map[string]string, error) {
	index := map[string]string{}
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if _, seen := index[rel]; !seen {
				index[rel] = p
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return index, nil
}

// writeSnapshot dumps the merged tree to `{temp}/cache/config.yaml`.  Only
// called in debug mode since the tree may hold resolved secrets.
func writeSnapshot(tempDir string, k *koanf.Koanf) error {
	if tempDir == "" {
		return nil
	}
	raw, err := k.Marshal(yaml.Parser())
	if err != nil {
		return err
	}
	dir := filepath.Join(tempDir, "cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, SnapshotName), raw, 0o600)
}
