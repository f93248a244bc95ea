package view

import (
	"sort"

	"cryptodash/internal/types"
)

// TopMovers returns the top n gainers and top n losers by 24h change.
// Independent of all filter and watchlist state; ties keep snapshot order.
func TopMovers(assets []types.Asset, n int) (gainers, losers []types.Asset) {
	gainers = rankBy24h(assets, n, false)
	losers = rankBy24h(assets, n, true)
	return gainers, losers
}

func rankBy24h(assets []types.Asset, n int, ascending bool) []types.Asset {
	ranked := make([]types.Asset, len(assets))
	copy(ranked, assets)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ascending {
			return ranked[i].Change24h < ranked[j].Change24h
		}
		return ranked[i].Change24h > ranked[j].Change24h
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
