// internal/database/database_test.go
//
// Unit-tests for pool configuration using sqlmock.
//
// Run: go test ./internal/database -v

package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/yanizio/bootkit/internal/config"
)

func TestFromDB_PingsAndAppliesDefaults(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	mock.ExpectPing()

	x, err := FromDB(db, "sqlmock", config.Database{})
	if err != nil {
		t.Fatalf("FromDB: %v", err)
	}
	defer x.Close()

	if got := x.Stats().MaxOpenConnections; got != defaultMaxOpen {
		t.Fatalf("max open = %d, want %d", got, defaultMaxOpen)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFromDB_PingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	if _, err := FromDB(db, "sqlmock", config.Database{MaxOpen: 2, MaxIdle: 1}); err == nil {
		t.Fatal("expected ping error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
