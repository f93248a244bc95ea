package database

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Keys of the four persisted entries.
const (
	KeyCurrency  = "currency"
	KeyWatchlist = "watchlist"
	KeyPortfolio = "portfolio"
	KeyAlerts    = "alerts"
)

// Get reads the JSON entry stored under key into out. A missing or corrupt
// entry leaves out untouched so the caller's default survives; neither case
// is an error.
func (s *Store) Get(key string, out interface{}) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?;`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return
	}
	if err != nil {
		log.Warnf("failed to read key %q: %v", key, err)
		return
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Warnf("corrupt entry for key %q, keeping default: %v", key, err)
	}
}

// Set stores v as JSON under key, replacing any previous value.
func (s *Store) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode value for key %q", key)
	}

	query := `INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?);`
	if _, err := s.db.Exec(query, key, string(raw)); err != nil {
		return errors.Wrapf(err, "failed to store key %q", key)
	}
	return nil
}
