// Package database backs the optional `database` container service with a
// sqlx pool.  The driver is go-sql-driver/mysql, which also works with
// MariaDB and anything else that speaks the MySQL wire protocol.
//
// The bootstrapper registers the service only when `database.dsn` is set;
// the pool is opened on the first Container.Get("database").  Both helpers
// Ping before returning so a bad DSN fails at first use, not mid-request.
package database

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/bootkit/internal/config"
)

// ServiceName is the container key the pool is registered under.
const ServiceName = "database"

// Default pool sizes when the config leaves them at zero.
const (
	defaultMaxOpen = 15
	defaultMaxIdle = 5
)

// Open returns a pinged *sqlx.DB for cfg.
func Open(cfg config.Database) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, err
	}
	return configure(db, cfg)
}

// FromDB wraps an existing handle, applying the same pool settings.
func FromDB(db *sql.DB, driver string, cfg config.Database) (*sqlx.DB, error) {
	return configure(sqlx.NewDb(db, driver), cfg)
}

func configure(db *sqlx.DB, cfg config.Database) (*sqlx.DB, error) {
	maxOpen, maxIdle := cfg.MaxOpen, cfg.MaxIdle
	if maxOpen == 0 {
		maxOpen = defaultMaxOpen
	}
	if maxIdle == 0 {
		maxIdle = defaultMaxIdle
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
