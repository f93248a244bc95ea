package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"cryptodash/internal/database"
)

// Metrics are the operational counters of the core. Counter values are
// written to the metrics table on shutdown and restored on boot so they
// survive restarts.
type Metrics struct {
	PollsTotal      prometheus.Counter
	PollFailures    prometheus.Counter
	AlertsTriggered prometheus.Counter
	ExportsTotal    prometheus.Counter
	SnapshotSize    prometheus.Gauge
	WatchlistSize   prometheus.Gauge
}

// NewMetrics builds and registers the metric set. A nil registerer leaves
// the metrics unregistered, which tests use to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptodash",
			Subsystem: "core",
			Name:      "polls_total",
			Help:      "The total number of market snapshot polls",
		}),
		PollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptodash",
			Subsystem: "core",
			Name:      "poll_failures",
			Help:      "The total number of failed market snapshot polls",
		}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptodash",
			Subsystem: "core",
			Name:      "alerts_triggered",
			Help:      "The total number of alerts that transitioned to triggered",
		}),
		ExportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptodash",
			Subsystem: "core",
			Name:      "exports_total",
			Help:      "The total number of CSV exports",
		}),
		SnapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cryptodash",
			Subsystem: "core",
			Name:      "snapshot_size",
			Help:      "The number of assets in the current snapshot",
		}),
		WatchlistSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cryptodash",
			Subsystem: "core",
			Name:      "watchlist_size",
			Help:      "The number of coins on the watchlist",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.PollsTotal, m.PollFailures, m.AlertsTriggered,
			m.ExportsTotal, m.SnapshotSize, m.WatchlistSize)
	}
	return m
}

var persistedCounters = []string{"polls_total", "poll_failures", "alerts_triggered", "exports_total"}

func (m *Metrics) counterByName(name string) prometheus.Counter {
	switch name {
	case "polls_total":
		return m.PollsTotal
	case "poll_failures":
		return m.PollFailures
	case "alerts_triggered":
		return m.AlertsTriggered
	case "exports_total":
		return m.ExportsTotal
	}
	return nil
}

// Restore loads previously saved counter values from the database.
func (m *Metrics) Restore(db *database.Store) {
	for _, name := range persistedCounters {
		value, err := db.GetMetric(name)
		if err != nil {
			log.Warnf("failed to load metric %s: %v", name, err)
			continue
		}
		m.counterByName(name).Add(value)
	}
	log.Debug("metrics restored from database")
}

// Save writes the current counter values to the database.
func (m *Metrics) Save(db *database.Store) {
	for _, name := range persistedCounters {
		if err := db.SaveMetric(name, counterValue(m.counterByName(name))); err != nil {
			log.Warnf("failed to save metric %s: %v", name, err)
		}
	}
	log.Debug("metrics saved to database")
}

func counterValue(metric prometheus.Collector) float64 {
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Warnf("failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		return metricProto.Counter.GetValue()
	}
	return 0
}
