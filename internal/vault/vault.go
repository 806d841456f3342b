// internal/vault/vault.go
//
// Vault client wrapper used to resolve `vault:` configuration values.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK with KV-v2 lookups and a per-key
//     TTL cache.
//   - Implements config.SecretResolver, so layer files may carry
//     `vault:<mount/path>#<key>` instead of plain secrets.
//   - Oxford commas, two spaces after periods.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(zap.S())                    // only when VAULT_ADDR is set.
//  2. val, err := cli.Resolve(ctx, "secret/app#dsn")    // via config.Load.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// DefaultTTL caches resolved configuration secrets for one bootstrap.
const DefaultTTL = 5 * time.Minute

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
	log *zap.SugaredLogger

	cacheMu sync.RWMutex
	cache   map[string]cached // path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// Enabled reports whether the environment names a Vault server.
func Enabled() bool { return os.Getenv("VAULT_ADDR") != "" }

// New constructs a client from VAULT_ADDR and VAULT_TOKEN.
func New(log *zap.SugaredLogger) (*Client, error) {
	if log == nil {
		log = zap.S()
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	return &Client{
		api:   apiCli,
		log:   log,
		cache: make(map[string]cached),
	}, nil
}

// Resolve implements config.SecretResolver for `<mount/path>#<key>`.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	secretPath, key, err := splitRef(ref)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, secretPath, key, DefaultTTL)
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		cv, ok := c.cache[canonical]
		c.cacheMu.RUnlock()
		if ok && time.Now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	c.log.Debugw("vault secret resolved", "path", secretPath, "key", key)
	return sval, nil
}

//
// Helpers
//

// splitRef parses "mount/path#key".
func splitRef(ref string) (secretPath, key string, err error) {
	i := strings.LastIndexByte(ref, '#')
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("vault reference %q must look like mount/path#key", ref)
	}
	return ref[:i], ref[i+1:], nil
}

func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
