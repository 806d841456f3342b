// internal/bootstrap/bootstrap.go
//
// Application bootstrapper.
//
/*
Context
--------
A process calls Build exactly once at start-up.  The pipeline runs forward
without loops:

  Start → PathsValidated → EnvironmentResolved → DebugModeResolved →
  ConfigLayersResolved → HandoffToContainerBuilder

Resolve performs the first four steps and touches nothing beyond directory
creation.  Build adds the hand-off: it starts the logger in the log path,
fills a container.Builder with the plan and runtime parameters, runs the
OnPrepared callbacks, and builds the Container.

Any failure in Resolve returns *AbortError and no container.  The binaries
in cmd/ print AbortError.Report and exit.

Instrumentation
---------------
  • metrics.BootstrapRuns{outcome}, metrics.PathErrors, metrics.ConfigLayers.
  • INFO span “bootstrap complete” with environment, debug, and layers.

Notes
-----
  • Oxford commas, two spaces after periods.
*/
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/bootkit/internal/config"
	"github.com/yanizio/bootkit/internal/container"
	"github.com/yanizio/bootkit/internal/database"
	"github.com/yanizio/bootkit/internal/debugmode"
	"github.com/yanizio/bootkit/internal/diagnostics"
	"github.com/yanizio/bootkit/internal/environment"
	"github.com/yanizio/bootkit/internal/metrics"
	"github.com/yanizio/bootkit/internal/paths"
)

// DefaultEnvPrefix selects environment overrides for the merged config.
const DefaultEnvPrefix = "BOOTKIT_"

// LoggerService is the container key of the process logger.
const LoggerService = "logger"

// ErrDatabaseNotConfigured is returned by the database service when
// `database.dsn` is empty.
var ErrDatabaseNotConfigured = errors.New("database.dsn is not configured")

// Bootstrapper turns a path set into a ready Container.
type Bootstrapper struct {
	paths       paths.Set
	scanDirs    []string
	consoleMode debugmode.ConsoleMode

	// Ext is the layer file extension, config.DefaultExt when empty.
	Ext string
	// EnvPrefix selects env overrides; set to "" to disable them.
	EnvPrefix string
	// Secrets resolves vault: values, nil when no secret store is used.
	Secrets config.SecretResolver
	// Tee mirrors the file log to stdout.
	Tee bool
	// OnPrepared runs on the prepared Builder right before Build.
	OnPrepared []func(*container.Builder)
}

// New validates raw (keys app, config, log, root, temp).  A missing key is
// an *AbortError of kind MissingPathKeys.
func New(raw map[string]string) (*Bootstrapper, error) {
	ps, err := paths.New(raw)
	if err != nil {
		metrics.BootstrapRuns.WithLabelValues(MissingPathKeys.String()).Inc()
		return nil, &AbortError{
			Kind:    MissingPathKeys,
			From:    Start,
			Message: "invalid path set",
			Errs:    []error{err},
		}
	}
	return &Bootstrapper{paths: ps, EnvPrefix: DefaultEnvPrefix}, nil
}

// Paths returns the validated path set.
func (b *Bootstrapper) Paths() paths.Set { return b.paths }

// AddScanDirs registers directories the container indexes for Locate.
func (b *Bootstrapper) AddScanDirs(dirs ...string) *Bootstrapper {
	b.scanDirs = append(b.scanDirs, dirs...)
	return b
}

// SetConsoleDebugMode sets the override used for console requests.
func (b *Bootstrapper) SetConsoleDebugMode(m debugmode.ConsoleMode) error {
	if !m.Valid() {
		return fmt.Errorf("invalid console debug mode %d", m)
	}
	b.consoleMode = m
	return nil
}

// ConsoleRequest is a console Request carrying the configured override.
func (b *Bootstrapper) ConsoleRequest() debugmode.Request {
	return debugmode.ConsoleRequest(b.consoleMode)
}

// Plan is the outcome of Resolve.
type Plan struct {
	Paths       paths.Set
	Environment environment.Environment
	Allowlist   environment.Allowlist // nil for console requests
	Decision    debugmode.Decision
	Cookie      *http.Cookie // to write back, nil unless the policy asked
	Layers      config.Layers
	State       State
}

// Result is the outcome of Build.
type Result struct {
	*Plan
	Container *container.Container
	Log       *zap.SugaredLogger
}

/*──────────────────────────── resolve ─────────────────────────────────────*/

// Resolve runs the decision pipeline up to ConfigLayersResolved.
func (b *Bootstrapper) Resolve(req debugmode.Request) (*Plan, error) {
	p := &Plan{Paths: b.paths, State: Start}

	if errs := paths.Validate(b.paths); len(errs) > 0 {
		metrics.PathErrors.Add(float64(len(errs)))
		return nil, b.abort(&AbortError{
			Kind:    PathValidationFailure,
			From:    p.State,
			Message: "required directories are missing and cannot be created",
			Errs:    []error{paths.Combine(errs)},
		})
	}
	p.State = PathsValidated

	env, err := environment.Resolve(b.paths.Config())
	if err != nil {
		// An unreadable file leaves the tier as undefined as a missing one.
		return nil, b.abort(&AbortError{
			Kind:    MissingEnvironmentFile,
			From:    p.State,
			Message: environment.HaltMessage,
			Errs:    []error{err},
		})
	}
	p.Environment = env
	p.State = EnvironmentResolved

	if req.Console {
		req.ConsoleMode = b.consoleMode
	} else {
		p.Allowlist = environment.ReadDeveloperIPs(b.paths.Config())
	}
	policy := debugmode.Policy{Environment: env, Allowlist: p.Allowlist}
	p.Decision, p.Cookie = policy.Resolve(req)
	metrics.ObserveDecision(string(p.Decision.Source), p.Decision.Enabled)
	p.State = DebugModeResolved

	p.Layers = config.Plan(b.paths.Config(), env, p.Decision.Enabled, b.Ext)
	metrics.ConfigLayers.Set(float64(len(p.Layers)))
	p.State = ConfigLayersResolved

	zap.S().Debugw("bootstrap resolved",
		"environment", p.Environment,
		"debug", p.Decision.Enabled,
		"source", p.Decision.Source,
		"layers", p.Layers,
	)
	return p, nil
}

func (b *Bootstrapper) abort(e *AbortError) error {
	metrics.BootstrapRuns.WithLabelValues(e.Kind.String()).Inc()
	zap.S().Errorw("bootstrap aborted", "kind", e.Kind, "from", e.From, "errors", len(e.Errs))
	return e
}

/*──────────────────────────── build ───────────────────────────────────────*/

// Build resolves the plan and hands it to the container builder.
func (b *Bootstrapper) Build(ctx context.Context, req debugmode.Request) (*Result, error) {
	plan, err := b.Resolve(req)
	if err != nil {
		return nil, err
	}

	log, err := diagnostics.Enable(b.paths.Log(), plan.Decision.Enabled, b.Tee)
	if err != nil {
		metrics.BootstrapRuns.WithLabelValues("logger_error").Inc()
		return nil, fmt.Errorf("start logger: %w", err)
	}

	builder := b.prepare(plan, log)
	for _, cb := range b.OnPrepared {
		cb(builder)
	}
	plan.State = HandoffToContainerBuilder

	c, err := builder.Build(ctx)
	if err != nil {
		metrics.BootstrapRuns.WithLabelValues("container_error").Inc()
		log.Errorw("container build failed", "err", err)
		return nil, err
	}

	metrics.BootstrapRuns.WithLabelValues("ok").Inc()
	log.Infow("bootstrap complete",
		"environment", plan.Environment,
		"debug", plan.Decision.Enabled,
		"explicitly_disabled", plan.Decision.ExplicitlyDisabled,
		"layers", plan.Layers,
	)
	return &Result{Plan: plan, Container: c, Log: log}, nil
}

// prepare fills a Builder from plan.
func (b *Bootstrapper) prepare(plan *Plan, log *zap.SugaredLogger) *container.Builder {
	builder := container.NewBuilder(b.paths.Temp(), plan.Decision.Enabled)
	builder.Files = append(config.Layers(nil), plan.Layers...)
	builder.AddScanDirs(b.scanDirs...)
	builder.EnvPrefix = b.EnvPrefix
	builder.Secrets = b.Secrets
	builder.Log = log

	params := map[string]any{
		"appDir":                      b.paths.App(),
		"environment":                 string(plan.Environment),
		"debugMode":                   plan.Decision.Enabled,
		"debugModeExplicitlyDisabled": plan.Decision.ExplicitlyDisabled,
	}
	for k, p := range b.paths.All() {
		params["paths."+k] = p
	}
	builder.AddParameters(params)

	builder.Register(LoggerService, func(*container.Container) (any, error) {
		return log, nil
	})
	builder.Register(database.ServiceName, func(c *container.Container) (any, error) {
		cfg := c.Settings().Database
		if cfg.DSN == "" {
			return nil, ErrDatabaseNotConfigured
		}
		return database.Open(cfg)
	})
	return builder
}
