// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
//   • ReadHeaderTimeout – abort slow-loris headers (5 s)
//   • ReadTimeout       – cap request read (10 s)
//   • WriteTimeout      – cap total response time (15 s)
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//
// ErrorLog is routed through zap so net/http's own messages reach the
// bootstrap log.
//

package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// New constructs an *http.Server for addr.
func New(addr string, handler http.Handler, log *zap.SugaredLogger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if log != nil {
		if el, err := zap.NewStdLogAt(log.Desugar(), zap.WarnLevel); err == nil {
			srv.ErrorLog = el
		}
	}
	return srv
}
