// Package store keeps a history of trajectory runs in SQLite.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/timeutil"
)

var storeLog = monitoring.For("store")

// DB is the run-history database.
type DB struct {
	*sql.DB
	clock timeutil.Clock
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA synchronous=NORMAL",
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*DB, error) {
	return OpenWithClock(path, timeutil.RealClock{})
}

// OpenWithClock is Open with an injectable clock for run timestamps.
func OpenWithClock(path string, clock timeutil.Clock) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection keeps per-connection pragmas in force.
	sqlDB.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}

	db := &DB{DB: sqlDB, clock: clock}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	storeLog.Diagf("opened run history %s", path)
	return db, nil
}
