package database

import (
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// SaveMetric stores a counter value so it survives restarts.
func (s *Store) SaveMetric(metricName string, value float64) error {
	query := `INSERT OR REPLACE INTO metrics (metric_name, metric_value) VALUES (?, ?);`
	if _, err := s.db.Exec(query, metricName, value); err != nil {
		return errors.Wrapf(err, "failed to save metric %s", metricName)
	}
	log.Debugf("metric saved: %s = %f", metricName, value)
	return nil
}

// GetMetric loads a previously saved counter value, defaulting to 0.
func (s *Store) GetMetric(metricName string) (float64, error) {
	var value float64
	query := `SELECT metric_value FROM metrics WHERE metric_name = ?;`
	err := s.db.QueryRow(query, metricName).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	} else if err != nil {
		return 0, errors.Wrapf(err, "failed to get metric %s", metricName)
	}
	return value, nil
}
