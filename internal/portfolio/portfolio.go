package portfolio

import (
	"cryptodash/internal/types"
)

// Position is one holding priced against the current snapshot.
type Position struct {
	Holding       types.Holding `json:"holding"`
	CurrentPrice  float64       `json:"current_price"`
	CurrentValue  float64       `json:"current_value"`
	Cost          float64       `json:"cost"`
	ProfitLoss    float64       `json:"profit_loss"`
	ProfitLossPct float64       `json:"profit_loss_pct"`
}

// Valuation is the priced portfolio. Holdings whose coin is missing from the
// snapshot are listed in Excluded and left out of the totals; absence is
// transient, the holding itself is kept.
type Valuation struct {
	Positions     []Position      `json:"positions"`
	Excluded      []types.Holding `json:"excluded"`
	TotalValue    float64         `json:"total_value"`
	TotalCost     float64         `json:"total_cost"`
	ProfitLoss    float64         `json:"profit_loss"`
	ProfitLossPct float64         `json:"profit_loss_pct"`
}

// Valuate prices every holding against the snapshot. Pure.
func Valuate(holdings []types.Holding, assets []types.Asset) Valuation {
	prices := make(map[string]float64, len(assets))
	for _, a := range assets {
		prices[a.ID] = a.Price
	}

	v := Valuation{Positions: make([]Position, 0, len(holdings))}
	for _, h := range holdings {
		price, ok := prices[h.ID]
		if !ok {
			v.Excluded = append(v.Excluded, h)
			continue
		}

		p := Position{
			Holding:      h,
			CurrentPrice: price,
			CurrentValue: price * h.Quantity,
			Cost:         h.AvgPrice * h.Quantity,
		}
		p.ProfitLoss = p.CurrentValue - p.Cost
		if p.Cost > 0 {
			p.ProfitLossPct = p.ProfitLoss / p.Cost * 100
		}
		v.Positions = append(v.Positions, p)

		v.TotalValue += p.CurrentValue
		v.TotalCost += p.Cost
	}

	v.ProfitLoss = v.TotalValue - v.TotalCost
	if v.TotalCost > 0 {
		v.ProfitLossPct = v.ProfitLoss / v.TotalCost * 100
	}
	return v
}

// Merge adds a purchase to the holdings list. An existing holding for the
// same coin absorbs the purchase at the quantity-weighted average price; a
// new coin is appended. The input slice is not mutated.
func Merge(holdings []types.Holding, add types.Holding) []types.Holding {
	out := make([]types.Holding, len(holdings))
	copy(out, holdings)

	for i, h := range out {
		if h.ID != add.ID {
			continue
		}
		totalQty := h.Quantity + add.Quantity
		h.AvgPrice = (h.AvgPrice*h.Quantity + add.AvgPrice*add.Quantity) / totalQty
		h.Quantity = totalQty
		out[i] = h
		return out
	}

	return append(out, add)
}

// Remove deletes the holding for coinID outright.
func Remove(holdings []types.Holding, coinID string) []types.Holding {
	out := make([]types.Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.ID != coinID {
			out = append(out, h)
		}
	}
	return out
}
