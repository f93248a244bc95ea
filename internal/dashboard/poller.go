package dashboard

import (
	log "github.com/sirupsen/logrus"

	"cryptodash/internal/sched"
	"cryptodash/internal/types"
)

// restartPollingLocked cancels the standing timer, starts a fresh cadence for
// the current parameters and fires an immediate out-of-schedule fetch.
// Exactly one timer exists at a time. Callers hold s.mu.
func (s *Store) restartPollingLocked() {
	if s.cancelPoll != nil {
		s.cancelPoll()
	}

	gen := s.generation
	page, perPage, currency := s.page, s.perPage, s.currency

	s.cancelPoll = sched.Schedule(s.pollInterval, func() {
		s.poll(gen, page, perPage, currency)
	})
	go s.poll(gen, page, perPage, currency)
}

// poll fetches one market page and commits it, unless the parameters changed
// while the request was in flight; then the response is stale and dropped.
func (s *Store) poll(gen uint64, page, perPage int, currency types.Currency) {
	assets, err := s.src.Markets(s.ctx, page, perPage, currency)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		log.Debugf("discarding stale poll response (generation %d, current %d)", gen, s.generation)
		return
	}

	s.metrics.PollsTotal.Inc()
	s.loading = false

	if err != nil {
		// keep the last-good snapshot; the next scheduled poll still fires
		s.metrics.PollFailures.Inc()
		s.lastErr = "Failed to fetch market data: " + err.Error()
		log.Warnf("poll failed: %v", err)
		return
	}

	s.commitSnapshotLocked(assets)
}

// commitSnapshotLocked replaces the canonical snapshot atomically and
// recomputes every derived view from it.
func (s *Store) commitSnapshotLocked(assets []types.Asset) {
	s.coins = assets
	s.lastErr = ""
	s.metrics.SnapshotSize.Set(float64(len(assets)))

	s.recomputeViewLocked()
	s.recomputeRankingsLocked()
	s.recomputeValuationLocked()
	s.evaluateAlertsLocked()
}

// Retry performs the same fetch as the poll timer, out of band of it.
func (s *Store) Retry() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	gen := s.generation
	page, perPage, currency := s.page, s.perPage, s.currency
	s.mu.Unlock()

	s.poll(gen, page, perPage, currency)
}
