package alert

import (
	log "github.com/sirupsen/logrus"

	"cryptodash/internal/types"
)

// Evaluate recomputes the triggered flag of every alert against the latest
// snapshot. The flag always reflects the current snapshot: it flips back to
// false when the condition stops holding, and stays unchanged for alerts
// whose coin is absent from the snapshot. The returned fired slice holds the
// alerts that transitioned false -> true on this evaluation.
func Evaluate(alerts []types.Alert, assets []types.Asset) (updated []types.Alert, fired []types.Alert) {
	prices := make(map[string]float64, len(assets))
	for _, a := range assets {
		prices[a.ID] = a.Price
	}

	updated = make([]types.Alert, len(alerts))
	for i, al := range alerts {
		price, ok := prices[al.CoinID]
		if !ok {
			updated[i] = al
			continue
		}

		wasTriggered := al.Triggered
		if al.Condition == types.AlertAbove {
			al.Triggered = price >= al.Price
		} else {
			al.Triggered = price <= al.Price
		}
		updated[i] = al

		if al.Triggered && !wasTriggered {
			log.Debugf("alert %d triggered: %s %s %f (current %f)", al.ID, al.CoinID, al.Condition, al.Price, price)
			fired = append(fired, al)
		}
	}

	return updated, fired
}
