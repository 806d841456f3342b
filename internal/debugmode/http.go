package debugmode

import (
	"context"
	"net"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/yanizio/bootkit/internal/metrics"
)

// hostname is swapped in tests.
var hostname = os.Hostname

// FromHTTP builds an interactive Request from r.  The caller is the host
// part of r.RemoteAddr.  Forwarding headers are ignored because they are
// client-controlled and this value gates diagnostics.  When RemoteAddr is
// empty the local host name stands in, which covers single-machine tests.
func FromHTTP(r *http.Request) Request {
	req := Request{
		Caller: callerIdentity(r.RemoteAddr),
		Query:  r.URL.Query(),
	}
	if c, err := r.Cookie(Key); err == nil {
		req.Cookie = c
	}
	return req
}

func callerIdentity(remoteAddr string) string {
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			return host
		}
		return remoteAddr
	}
	h, _ := hostname()
	return h
}

type ctxKey struct{}

// WithDecision stores d in ctx.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, ctxKey{}, d)
}

// FromContext returns the decision stored by Middleware.  ok is false when
// the middleware has not run.
func FromContext(ctx context.Context) (d Decision, ok bool) {
	d, ok = ctx.Value(ctxKey{}).(Decision)
	return d, ok
}

// Middleware resolves debug mode for every request, writes the cookie when
// the policy asks for one, and forwards with the Decision in the context.
func Middleware(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := FromHTTP(r)
			d, cookie := p.Resolve(req)
			if cookie != nil {
				http.SetCookie(w, cookie)
			}

			metrics.ObserveDecision(string(d.Source), d.Enabled)
			zap.S().Debugw("debug mode resolved",
				"caller", req.Caller,
				"source", d.Source,
				"enabled", d.Enabled,
				"explicitly_disabled", d.ExplicitlyDisabled,
			)

			next.ServeHTTP(w, r.WithContext(WithDecision(r.Context(), d)))
		})
	}
}
