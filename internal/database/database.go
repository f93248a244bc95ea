package database

import (
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Store is the durable key/value store backing the watchlist, portfolio,
// alerts and currency preference. Market snapshots, filters and sort state
// are session-only and never written here.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database and ensures the schema exists.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	createKVTable := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := db.Exec(createKVTable); err != nil {
		return nil, errors.Wrap(err, "failed to create kv table")
	}

	createMetricsTable := `
	CREATE TABLE IF NOT EXISTS metrics (
		metric_name TEXT PRIMARY KEY,
		metric_value REAL NOT NULL
	);`
	if _, err := db.Exec(createMetricsTable); err != nil {
		return nil, errors.Wrap(err, "failed to create metrics table")
	}

	log.Debug("database initialized")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
