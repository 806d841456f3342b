// internal/debugmode/debugmode.go
//
// Debug-mode negotiation.
//
/*
Context
--------
Debug mode is decided once per bootstrap from an explicit Request value.
Nothing here reads process-global state, so the policy is testable without
a server.

Console runs take the ConsoleMode literally, or follow the environment when
it is ConsoleAuto.

Interactive runs are gated by the developer allowlist first.  A caller that
is not listed always gets debug mode off, and no cookie is written.  A
listed caller resolves by precedence:

  1. query `debugMode`   ("yes" → on, any other value → off, explicit)
  2. cookie `debugMode`  (same values, explicit)
  3. environment default (on only in development)

The result is echoed back as a one-day `debugMode=yes|no` cookie so later
requests from the same developer stay stable.

Notes
-----
  • ExplicitlyDisabled is only tracked for interactive callers.
  • Oxford commas, two spaces after periods.
*/
package debugmode

import (
	"net/http"
	"net/url"
	"time"

	"github.com/yanizio/bootkit/internal/environment"
)

// Key names both the query parameter and the cookie.
const Key = "debugMode"

// CookieLifetime is how long the echoed cookie lives.
const CookieLifetime = 24 * time.Hour

// Source names what settled a Decision.
type Source string

const (
	SourceConsole Source = "console"
	SourceDenied  Source = "denied"
	SourceQuery   Source = "query"
	SourceCookie  Source = "cookie"
	SourceDefault Source = "default"
)

// Decision is the resolved debug posture.
type Decision struct {
	Enabled bool `json:"enabled"`
	// ExplicitlyDisabled is true only when a query or cookie override set
	// debug mode to off, as opposed to off by default.
	ExplicitlyDisabled bool   `json:"explicitly_disabled"`
	Source             Source `json:"source"`
}

// Request carries everything the policy may consult.
type Request struct {
	Console     bool
	ConsoleMode ConsoleMode
	Caller      string       // remote address, or local host name when none
	Query       url.Values   // may be nil
	Cookie      *http.Cookie // the debugMode cookie, nil when absent
}

// ConsoleRequest is the Request for a non-interactive run.
func ConsoleRequest(m ConsoleMode) Request {
	return Request{Console: true, ConsoleMode: m}
}

// Policy resolves Requests against one environment and allowlist.
type Policy struct {
	Environment environment.Environment
	Allowlist   environment.Allowlist
	Now         func() time.Time // nil means time.Now
}

// Resolve returns the decision and, for allowlisted interactive callers
// only, the cookie to write back.
func (p Policy) Resolve(r Request) (Decision, *http.Cookie) {
	if r.Console {
		switch r.ConsoleMode {
		case ConsoleEnabled:
			return Decision{Enabled: true, Source: SourceConsole}, nil
		case ConsoleDisabled:
			return Decision{Enabled: false, Source: SourceConsole}, nil
		default:
			return Decision{Enabled: p.isDevelopment(), Source: SourceConsole}, nil
		}
	}

	if !p.Allowlist.Contains(r.Caller) {
		return Decision{Source: SourceDenied}, nil
	}

	var d Decision
	switch {
	case r.Query != nil && r.Query.Has(Key):
		on := r.Query.Get(Key) == "yes"
		d = Decision{Enabled: on, ExplicitlyDisabled: !on, Source: SourceQuery}
	case r.Cookie != nil:
		on := r.Cookie.Value == "yes"
		d = Decision{Enabled: on, ExplicitlyDisabled: !on, Source: SourceCookie}
	default:
		d = Decision{Enabled: p.isDevelopment(), Source: SourceDefault}
	}
	return d, p.cookie(d.Enabled)
}

func (p Policy) isDevelopment() bool {
	return p.Environment == environment.Development
}

func (p Policy) cookie(on bool) *http.Cookie {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	val := "no"
	if on {
		val = "yes"
	}
	return &http.Cookie{
		Name:     Key,
		Value:    val,
		Path:     "/",
		Expires:  now().Add(CookieLifetime),
		MaxAge:   int(CookieLifetime / time.Second),
		HttpOnly: true,
		Secure:   false,
	}
}
