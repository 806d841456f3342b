// internal/config/loader.go
//
// Layered configuration loader.
//
/*
Context
--------
`Load()` merges one configuration tree from these sources (highest
precedence last):

  1. Built-in defaults.
  2. The planned layer files, in plan order.  The first is mandatory.
  3. Runtime parameters from the bootstrapper, under `parameters.`.
  4. Environment variables with the given prefix, where `__` maps to “.”
     (e.g., `BOOTKIT_HTTP__LISTEN_ADDR → http.listen_addr`).

String values of the form `vault:<mount/path>#<key>` are then replaced
through the SecretResolver, and the tree is unmarshalled into Settings and
validated.

Instrumentation
---------------
  • DEBUG spans: each layer read, env overlay.
  • ERROR spans: layer parse, secret lookup, unmarshal, validation.
  • Logs use the global sugared logger (`zap.S()`) because the file logger
    may not exist yet.

Notes
-----
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// VaultPrefix marks a value that must be fetched from the secret store.
const VaultPrefix = "vault:"

// SecretResolver fetches `<mount/path>#<key>` references.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Options controls one Load.
type Options struct {
	Files     Layers
	Params    map[string]any // flattened keys, stored under "parameters."
	EnvPrefix string         // empty disables the env overlay
	Secrets   SecretResolver // may be nil when no vault: values are used
}

var defaults = map[string]any{
	"http.listen_addr":  ":8080",
	"diagnostics.route": "/_diagnostics",
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load merges, resolves, unmarshals, and validates.  The returned Koanf is
// the raw merged tree for callers that need keys outside Settings.
func Load(ctx context.Context, opts Options) (*koanf.Koanf, *Settings, error) {
	if len(opts.Files) == 0 {
		return nil, nil, fmt.Errorf("config: no layers to load")
	}

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, nil, err
		}
	}

	for _, f := range opts.Files {
		if err := k.Load(file.Provider(f), yaml.Parser()); err != nil {
			zap.S().Errorw("config layer load failed", "file", f, "err", err)
			return nil, nil, fmt.Errorf("load layer %s: %w", f, err)
		}
		zap.S().Debugw("config layer loaded", "file", f)
	}

	for _, key := range sortedKeys(opts.Params) {
		if err := k.Set("parameters."+key, opts.Params[key]); err != nil {
			return nil, nil, fmt.Errorf("set parameter %s: %w", key, err)
		}
	}

	if opts.EnvPrefix != "" {
		prefix := opts.EnvPrefix
		if err := k.Load(env.Provider(prefix, ".", func(s string) string {
			return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, prefix), "__", "."))
		}), nil); err != nil {
			zap.S().Errorw("config env overlay failed", "err", err)
			return nil, nil, err
		}
		zap.S().Debugw("config env overlay applied", "prefix", prefix)
	}

	if err := resolveSecrets(ctx, k, opts.Secrets); err != nil {
		zap.S().Errorw("config secret lookup failed", "err", err)
		return nil, nil, err
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validateStruct(&s); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}
	return k, &s, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// resolveSecrets swaps every vault: value for the secret it names.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, sr SecretResolver) error {
	all := k.All()
	for _, key := range sortedKeys(all) {
		s, ok := all[key].(string)
		if !ok || !strings.HasPrefix(s, VaultPrefix) {
			continue
		}
		if sr == nil {
			return fmt.Errorf("%s references %q but no secret resolver is configured", key, s)
		}
		val, err := sr.Resolve(ctx, strings.TrimPrefix(s, VaultPrefix))
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
