// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the tree that loader.go merges from the
// planned layers, the bootstrap parameters, and `BOOTKIT_` environment
// overrides.  Values of the form `vault:<mount/path>#<key>` are resolved
// before unmarshalling, so the model only ever holds plain strings.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`.
//   - The `parameters` block is written by the bootstrapper at runtime.
//     Layer files may add keys to it, but the runtime keys always win.
//   - Oxford commas, two spaces after periods.

package config

//
// App section
//

// App holds identification shown in logs and the diagnostics panel.
type App struct {
	Name string `koanf:"name"`
}

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Database section
//

// Database configures the optional `database` container service.  An empty
// DSN leaves the service unregistered.
type Database struct {
	DSN     string `koanf:"dsn"`
	MaxOpen int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle int    `koanf:"max_idle" validate:"gte=0"`
}

//
// Diagnostics section
//

// Diagnostics configures the debug panel.
type Diagnostics struct {
	Route   string `koanf:"route"    validate:"required,startswith=/"`
	GeoIPDB string `koanf:"geoip_db"` // optional GeoLite2-City path
}

//
// Parameters section (runtime only)
//

// Parameters are injected by the bootstrapper.
type Parameters struct {
	AppDir                      string            `koanf:"appDir"`
	Environment                 string            `koanf:"environment" validate:"required"`
	DebugMode                   bool              `koanf:"debugMode"`
	DebugModeExplicitlyDisabled bool              `koanf:"debugModeExplicitlyDisabled"`
	Paths                       map[string]string `koanf:"paths"`
}

//
// Root aggregate
//

// Settings is the typed view of a merged container configuration.
type Settings struct {
	App         App         `koanf:"app"`
	HTTP        HTTP        `koanf:"http"`
	Database    Database    `koanf:"database"`
	Diagnostics Diagnostics `koanf:"diagnostics"`
	Parameters  Parameters  `koanf:"parameters"`
}
