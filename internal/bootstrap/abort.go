package bootstrap

import (
	"strings"

	"github.com/yanizio/bootkit/internal/paths"
)

// State is a step of the bootstrap pipeline.  The pipeline runs forward
// once; any failure jumps to Aborted.
type State int

const (
	Start State = iota
	PathsValidated
	EnvironmentResolved
	DebugModeResolved
	ConfigLayersResolved
	HandoffToContainerBuilder
	Aborted
)

var stateNames = [...]string{
	"start",
	"paths-validated",
	"environment-resolved",
	"debug-mode-resolved",
	"config-layers-resolved",
	"handoff",
	"aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Kind classifies a fatal bootstrap failure.
type Kind int

const (
	MissingPathKeys Kind = iota + 1
	MissingEnvironmentFile
	PathValidationFailure
)

func (k Kind) String() string {
	switch k {
	case MissingPathKeys:
		return "missing_path_keys"
	case MissingEnvironmentFile:
		return "missing_environment_file"
	case PathValidationFailure:
		return "path_validation_failure"
	}
	return "unknown"
}

// AbortError halts bootstrapping.  No container is produced.  The caller
// decides how to surface it; Report gives the operator text.
type AbortError struct {
	Kind    Kind
	From    State // last state reached before aborting
	Message string
	Errs    []error
}

func (e *AbortError) Error() string {
	if len(e.Errs) == 0 {
		return "bootstrap aborted: " + e.Message
	}
	return "bootstrap aborted: " + e.Message + ": " + e.Errs[0].Error()
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *AbortError) Unwrap() []error { return e.Errs }

// State is always Aborted; From holds the last state reached.
func (e *AbortError) State() State { return Aborted }

// Report is the operator-facing text: the message, then one line per
// collected error.  Combined path errors get one line each.
func (e *AbortError) Report() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, err := range e.Errs {
		b.WriteString("\n")
		b.WriteString(paths.Report(err))
	}
	return b.String()
}
