// internal/diagnostics/diagnostics.go
//
// Debug posture and the diagnostics panel.
//
// Context
// -------
// `Enable` starts the file logger in the log directory, switching it to the
// verbose debug posture when debug mode is on.  `Handler` serves a JSON
// panel describing the bootstrap: environment, config layers, the process
// decision, and this request's decision.  The panel answers 404 unless the
// per-request decision (from debugmode.Middleware) is enabled, so unlisted
// callers cannot even learn it exists.
//
// Each decision carries its own `explicitly_disabled` flag and source.
package diagnostics

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/bootkit/internal/debugmode"
	"github.com/yanizio/bootkit/internal/logger"
	"github.com/yanizio/bootkit/internal/requestinfo"
)

// Enable returns the process logger for logDir.
func Enable(logDir string, debug, tee bool) (*zap.SugaredLogger, error) {
	log, err := logger.New(logDir, logger.Options{Tee: tee, Debug: debug})
	if err != nil {
		return nil, err
	}
	if debug {
		log.Debugw("diagnostics enabled", "log_dir", logDir)
	}
	return log, nil
}

// Info is the static part of the panel, fixed at bootstrap.
type Info struct {
	App         string             `json:"app,omitempty"`
	Environment string             `json:"environment"`
	Layers      []string           `json:"layers"`
	Process     debugmode.Decision `json:"process"`
	Services    []string           `json:"services"`
}

type panel struct {
	Info
	Request debugmode.Decision `json:"request"`
	Caller  requestinfo.Caller `json:"caller"`
}

// Handler serves the panel for requests whose decision is enabled.
func Handler(info Info) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, ok := debugmode.FromContext(r.Context())
		if !ok || !d.Enabled {
			http.NotFound(w, r)
			return
		}

		out := panel{
			Info:    info,
			Request: d,
			Caller:  requestinfo.Describe(r),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	})
}
