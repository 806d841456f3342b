// internal/environment/environment.go
//
// Deployment-tier detection.
//
// Context
// -------
// The tier is read once per process from `{config}/environment`, a plain
// text file holding `development`, `stage`, or `production`.  There is no
// default.  A missing or blank file means the host was never provisioned
// and bootstrap must stop before any container is built.
//
// Notes
// -----
//   - Unknown names are accepted and logged; they still select an
//     `env.<name>` layer.
//   - Oxford commas, two spaces after periods.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Environment is a deployment tier name.
type Environment string

const (
	Development Environment = "development"
	Stage       Environment = "stage"
	Production  Environment = "production"
)

// FileName is the tier file inside the config directory.
const FileName = "environment"

// HaltMessage is shown to operators when the tier file is absent.
const HaltMessage = "The application is not configured to run in this environment - no environment file found."

// ErrMissingEnvironmentFile means `{config}/environment` is absent or blank.
var ErrMissingEnvironmentFile = errors.New("environment file not found")

// Known reports whether e is one of the three standard tiers.
func (e Environment) Known() bool {
	switch e {
	case Development, Stage, Production:
		return true
	}
	return false
}

func (e Environment) String() string { return string(e) }

// Resolve reads and trims `{configDir}/environment`.
func Resolve(configDir string) (Environment, error) {
	f := filepath.Join(configDir, FileName)
	raw, err := os.ReadFile(f)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrMissingEnvironmentFile, f)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f, err)
	}

	env := Environment(strings.TrimSpace(string(raw)))
	if env == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingEnvironmentFile, f)
	}
	if !env.Known() {
		zap.S().Warnw("unknown environment name", "environment", env, "file", f)
	}
	return env, nil
}
