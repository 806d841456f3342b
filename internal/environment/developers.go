package environment

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DevelopersFileName lists callers allowed to negotiate debug mode.
const DevelopersFileName = "developerIps"

// DefaultDevelopers applies when the allowlist file is absent.
var DefaultDevelopers = Allowlist{"127.0.0.1", "::1"}

// Allowlist is an ordered set of IP addresses or host names.
type Allowlist []string

// Contains is exact, case-sensitive membership.
func (a Allowlist) Contains(caller string) bool {
	for _, s := range a {
		if s == caller {
			return true
		}
	}
	return false
}

// ReadDeveloperIPs loads `{configDir}/developerIps`, one entry per line.
// Lines are trimmed and blank lines skipped.  A missing or unreadable file
// yields DefaultDevelopers.
func ReadDeveloperIPs(configDir string) Allowlist {
	f := filepath.Join(configDir, DevelopersFileName)
	raw, err := os.ReadFile(f)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.S().Warnw("developer allowlist unreadable, using defaults", "file", f, "err", err)
		}
		return append(Allowlist(nil), DefaultDevelopers...)
	}

	var out Allowlist
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	zap.S().Debugw("developer allowlist loaded", "file", f, "entries", len(out))
	return out
}
