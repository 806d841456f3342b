// cmd/boot/main.go
//
// Console bootstrap: resolve and build once, print the outcome.
//
// Flow
// ----
//
//  1. Load `.env` from the root (optional).
//
//  2. Build the path set from flags (defaults under --root).
//
//  3. Bootstrap in console mode with the --console-debug override.
//
//  4. Print environment, debug decision, layers, and services.
//
// Aborts print the operator message, then every collected error on its own
// line, to stderr and exit 1.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/yanizio/bootkit/internal/bootstrap"
	"github.com/yanizio/bootkit/internal/debugmode"
	"github.com/yanizio/bootkit/internal/paths"
	"github.com/yanizio/bootkit/internal/vault"
)

// ConsoleDebugEnv seeds --console-debug.
const ConsoleDebugEnv = "BOOTKIT_CONSOLE_DEBUG"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("boot", pflag.ContinueOnError)
	root := fs.String("root", paths.DiscoverRoot(), "application root")
	ext := fs.String("ext", "", "config layer extension (default yaml)")
	scan := fs.StringSlice("scan", nil, "directories indexed by the container")
	keys := map[string]*string{}
	for _, k := range []string{paths.App, paths.Config, paths.Log, paths.Temp} {
		keys[k] = fs.String(k, "", k+" directory (default <root>/"+k+")")
	}

	mode, err := debugmode.ParseConsoleMode(os.Getenv(ConsoleDebugEnv))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	fs.Var(&mode, "console-debug", "debug mode for console runs")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	_ = godotenv.Load(filepath.Join(*root, ".env"))

	raw := paths.Defaults(*root)
	for k, v := range keys {
		if *v != "" {
			raw[k] = *v
		}
	}

	b, err := bootstrap.New(raw)
	if err != nil {
		return fail(err)
	}
	if err := b.SetConsoleDebugMode(mode); err != nil {
		return fail(err)
	}
	b.Ext = *ext
	b.AddScanDirs(*scan...)
	if vault.Enabled() {
		cli, err := vault.New(nil)
		if err != nil {
			return fail(err)
		}
		b.Secrets = cli
	}

	res, err := b.Build(context.Background(), b.ConsoleRequest())
	if err != nil {
		return fail(err)
	}
	defer func() { _ = res.Log.Sync() }()

	fmt.Printf("environment: %s\n", res.Environment)
	fmt.Printf("debug:       %v (%s)\n", res.Decision.Enabled, mode)
	fmt.Println("layers:")
	for _, l := range res.Layers {
		fmt.Printf("  %s\n", l)
	}
	fmt.Printf("services:    %v\n", res.Container.Services())
	return 0
}

func fail(err error) int {
	var abort *bootstrap.AbortError
	if errors.As(err, &abort) {
		fmt.Fprintln(os.Stderr, abort.Report())
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	return 1
}
