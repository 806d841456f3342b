// internal/paths/paths.go
//
// Immutable path set handed to the bootstrapper.
//
// Context
// -------
// Every bootstrap starts from five absolute directories: `app`, `config`,
// `log`, `root`, and `temp`.  `New` rejects a map that lacks any of them and
// normalises the rest, so later stages can join paths without re-checking.
//
// Required keys are declared as struct tags and checked with
// go-playground/validator, the same way internal/config validates the
// settings tree.
//
// Notes
// -----
//   - Extra keys are kept and reachable through Get.
//   - Oxford commas, two spaces after periods.
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Required path keys.
const (
	App    = "app"
	Config = "config"
	Log    = "log"
	Root   = "root"
	Temp   = "temp"
)

// ErrMissingKeys is returned (wrapped) by New when required keys are absent.
var ErrMissingKeys = errors.New("missing paths")

// required mirrors the five mandatory keys for validation.
type required struct {
	App    string `key:"app"    validate:"required"`
	Config string `key:"config" validate:"required"`
	Log    string `key:"log"    validate:"required"`
	Root   string `key:"root"   validate:"required"`
	Temp   string `key:"temp"   validate:"required"`
}

var v = func() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string { return f.Tag.Get("key") })
	return val
}()

// Set is an immutable key → absolute directory mapping.  The zero value is
// invalid; use New.
type Set struct {
	m map[string]string
}

// New validates and normalises raw.  Missing keys are reported together.
func New(raw map[string]string) (Set, error) {
	req := required{
		App:    raw[App],
		Config: raw[Config],
		Log:    raw[Log],
		Root:   raw[Root],
		Temp:   raw[Temp],
	}
	if err := v.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return Set{}, err
		}
		missing := make([]string, 0, len(ve))
		for _, fe := range ve {
			missing = append(missing, fe.Field())
		}
		sort.Strings(missing)
		return Set{}, fmt.Errorf("%w: %s", ErrMissingKeys, strings.Join(missing, ","))
	}

	m := make(map[string]string, len(raw))
	for k, p := range raw {
		abs, err := filepath.Abs(p)
		if err != nil {
			return Set{}, fmt.Errorf("path %s: %w", k, err)
		}
		m[k] = abs
	}
	return Set{m: m}, nil
}

// Get returns the path stored under key.
func (s Set) Get(key string) (string, bool) {
	p, ok := s.m[key]
	return p, ok
}

func (s Set) App() string    { return s.m[App] }
func (s Set) Config() string { return s.m[Config] }
func (s Set) Log() string    { return s.m[Log] }
func (s Set) Root() string   { return s.m[Root] }
func (s Set) Temp() string   { return s.m[Temp] }

// All returns a copy of the mapping.
func (s Set) All() map[string]string {
	out := make(map[string]string, len(s.m))
	for k, p := range s.m {
		out[k] = p
	}
	return out
}

// Keys returns the keys in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
