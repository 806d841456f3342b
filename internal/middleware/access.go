// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/bootkit/internal/debugmode"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// AccessLog writes one INFO line per request.  It must run inside
// debugmode.Middleware to record the request's debug decision.
func AccessLog(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			d, _ := debugmode.FromContext(r.Context())
			log.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"debug", d.Enabled,
				"took", time.Since(start),
			)
		})
	}
}
