// internal/paths/validate.go
//
// Writable-directory checks run before any configuration is read.
//
// Context
// -------
// The log directory and the session and cache folders under temp must
// exist before the container builder runs.  Validate walks each target
// from its base key outward, creating missing segments, and collects every
// directory that still cannot be used.  Callers abort on a non-empty
// result and print the whole list, not just the first entry.
//
// Creation is idempotent.  Two processes racing on the same tree are fine
// because a failed MkdirAll only counts when the directory is still absent
// afterwards.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

// target is a base key plus the sub-directories below it.
type target struct {
	key  string
	segs []string
}

// writable lists the directories bootstrap needs.
var writable = []target{
	{key: Log},
	{key: Temp, segs: []string{"sessions"}},
	{key: Temp, segs: []string{"cache"}},
}

// PathError describes one directory that neither exists nor can be created.
type PathError struct {
	Key  string // base key the directory hangs off
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("directory %s (%s) does not exist and cannot be created: %v",
		e.Path, e.Key, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// Validate ensures every writable directory exists.  A failing segment ends
// its own chain, and each failing directory is reported once.
func Validate(s Set) []*PathError {
	var (
		errs   []*PathError
		failed = map[string]bool{}
	)
	for _, t := range writable {
		dir := s.m[t.key]
		chain := append([]string{dir}, t.segs...)
		for i := range chain {
			if i > 0 {
				dir = filepath.Join(dir, chain[i])
			}
			if failed[dir] {
				break
			}
			if err := ensureDir(dir); err != nil {
				failed[dir] = true
				errs = append(errs, &PathError{Key: t.key, Path: dir, Err: err})
				break
			}
		}
	}
	return errs
}

// ensureDir creates dir when missing and confirms it is a directory.
func ensureDir(dir string) error {
	mkErr := os.MkdirAll(dir, 0o755)
	fi, err := os.Stat(dir)
	if err != nil {
		if mkErr != nil {
			return mkErr
		}
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Combine folds path errors into one error, nil when errs is empty.
func Combine(errs []*PathError) error {
	var out error
	for _, e := range errs {
		out = multierr.Append(out, e)
	}
	return out
}

// Report renders every error in err on its own line.
func Report(err error) string {
	all := multierr.Errors(err)
	lines := make([]string, 0, len(all))
	for _, e := range all {
		lines = append(lines, e.Error())
	}
	return strings.Join(lines, "\n")
}
