package container

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	koanf "github.com/knadh/koanf/v2"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/bootkit/internal/config"
)

// ErrUnknownService is returned by Get for names nobody registered.
var ErrUnknownService = errors.New("unknown service")

// ErrServiceCycle is returned when a factory needs, directly or through
// other factories, the service it is building.
var ErrServiceCycle = errors.New("service dependency cycle")

// Container is the ready service container.  Safe for concurrent use.
type Container struct {
	*registry
	chain []string // services being built on this call path
}

type registry struct {
	k        *koanf.Koanf
	settings *config.Settings
	debug    bool
	index    map[string]string

	factories map[string]Factory
	group     singleflight.Group

	mu        sync.RWMutex
	instances map[string]any
}

func newContainer(k *koanf.Koanf, s *config.Settings, debug bool, index map[string]string, f map[string]Factory) *Container {
	return &Container{registry: &registry{
		k:         k,
		settings:  s,
		debug:     debug,
		index:     index,
		factories: f,
		instances: map[string]any{},
	}}
}

// Settings returns the typed configuration.
func (c *Container) Settings() *config.Settings { return c.settings }

// Config returns the raw merged tree.
func (c *Container) Config() *koanf.Koanf { return c.k }

// Debug reports the process debug posture.
func (c *Container) Debug() bool { return c.debug }

// Parameter returns a runtime parameter by flattened key.
func (c *Container) Parameter(key string) any { return c.k.Get("parameters." + key) }

// Locate resolves a slash-separated name against the scan directories.
func (c *Container) Locate(name string) (string, bool) {
	p, ok := c.index[name]
	return p, ok
}

// Services lists registered service names.
func (c *Container) Services() []string {
	names := make([]string, 0, len(c.factories))
	for n := range c.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (c *Container) Has(name string) bool {
	_, ok := c.factories[name]
	return ok
}

// Get returns the service, building it on first use.  Concurrent first
// calls share one build.  A failed build is not cached.  A factory that
// asks for a service already on its own build path gets ErrServiceCycle.
func (c *Container) Get(name string) (any, error) {
	if slices.Contains(c.chain, name) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrServiceCycle, strings.Join(c.chain, " -> "), name)
	}

	c.mu.RLock()
	svc, ok := c.instances[name]
	c.mu.RUnlock()
	if ok {
		return svc, nil
	}

	f, ok := c.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownService, name)
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.RLock()
		svc, ok := c.instances[name]
		c.mu.RUnlock()
		if ok {
			return svc, nil
		}

		scoped := &Container{registry: c.registry, chain: append(slices.Clone(c.chain), name)}
		svc, err := f(scoped)
		if err != nil {
			return nil, fmt.Errorf("build service %s: %w", name, err)
		}
		c.mu.Lock()
		c.instances[name] = svc
		c.mu.Unlock()
		return svc, nil
	})
	return v, err
}
