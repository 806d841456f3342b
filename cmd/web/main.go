// cmd/web/main.go
//
// HTTP entry point.
//
// Start-up
// --------
//
//  1. Load env vars (root `.env`, optional).
//
//  2. Bootstrap once in console mode: paths, environment, process debug
//     posture, layers, container.  Aborts print the report and exit 1.
//
//  3. Optional GeoLite2 DB for the diagnostics panel.
//
//  4. Router (chi):
//
//     • Security headers       – every response
//     • debugmode.Middleware   – per-request negotiation and cookie
//     • AccessLog              – one INFO line per request
//     • /metrics               – Prometheus
//     • diagnostics route      – JSON panel, 404 unless debug is on
//
//  5. Serve until SIGINT or SIGTERM, then shut down gracefully.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/bootkit/internal/bootstrap"
	"github.com/yanizio/bootkit/internal/debugmode"
	"github.com/yanizio/bootkit/internal/diagnostics"
	"github.com/yanizio/bootkit/internal/environment"
	"github.com/yanizio/bootkit/internal/middleware"
	"github.com/yanizio/bootkit/internal/paths"
	"github.com/yanizio/bootkit/internal/requestinfo"
	"github.com/yanizio/bootkit/internal/server"
	"github.com/yanizio/bootkit/internal/vault"
)

const shutdownGrace = 10 * time.Second

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	root := paths.DiscoverRoot()
	_ = godotenv.Load(filepath.Join(root, ".env"))

	b, err := bootstrap.New(paths.Defaults(root))
	if err != nil {
		halt(err)
	}
	mode, err := debugmode.ParseConsoleMode(os.Getenv("BOOTKIT_CONSOLE_DEBUG"))
	if err != nil {
		halt(err)
	}
	if err := b.SetConsoleDebugMode(mode); err != nil {
		halt(err)
	}
	b.Tee = runningInTTY()
	b.AddScanDirs(b.Paths().App())
	if vault.Enabled() {
		cli, err := vault.New(nil)
		if err != nil {
			halt(err)
		}
		b.Secrets = cli
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := b.Build(ctx, b.ConsoleRequest())
	if err != nil {
		halt(err)
	}
	log := res.Log
	defer func() { _ = log.Sync() }()
	settings := res.Container.Settings()

	if db := settings.Diagnostics.GeoIPDB; db != "" {
		if err := requestinfo.InitGeo(db); err != nil {
			log.Warnw("geoip database not loaded", "file", db, "err", err)
		}
	}

	//
	// Router
	//
	// The console build skips the allowlist; requests need it.
	policy := debugmode.Policy{
		Environment: res.Environment,
		Allowlist:   environment.ReadDeveloperIPs(b.Paths().Config()),
	}

	r := chi.NewRouter()
	r.Use(middleware.Security)
	r.Use(debugmode.Middleware(policy))
	r.Use(middleware.AccessLog(log))

	r.Handle("/metrics", promhttp.Handler())
	r.Handle(settings.Diagnostics.Route, diagnostics.Handler(diagnostics.Info{
		App:         settings.App.Name,
		Environment: string(res.Environment),
		Layers:      res.Layers,
		Process:     res.Decision,
		Services:    res.Container.Services(),
	}))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "%s (%s)\n", settings.App.Name, res.Environment)
	})

	//
	// Serve
	//
	srv := server.New(settings.HTTP.ListenAddr, r, log)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalw("http server", "err", err)
	}
	log.Infow("server stopped")
}

// halt prints the abort report and exits.
func halt(err error) {
	var abort *bootstrap.AbortError
	if errors.As(err, &abort) {
		fmt.Fprintln(os.Stderr, abort.Report())
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
