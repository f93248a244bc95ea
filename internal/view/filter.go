package view

import (
	"sort"
	"strings"

	"cryptodash/internal/types"
)

// Query is every input the filtered view depends on besides the snapshot
// itself.
type Query struct {
	Search        string
	WatchlistOnly bool
	Watchlist     map[string]bool
	Filters       types.FilterCriteria
	Sort          types.SortSpec
}

// Apply runs the filter pipeline over the snapshot and stable-sorts the
// survivors. Pure: the input slice is never mutated.
func Apply(assets []types.Asset, q Query) []types.Asset {
	search := strings.ToLower(q.Search)

	out := make([]types.Asset, 0, len(assets))
	for _, a := range assets {
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Name), search) &&
			!strings.Contains(strings.ToLower(a.Symbol), search) {
			continue
		}
		if q.WatchlistOnly && !q.Watchlist[a.ID] {
			continue
		}
		if !matchesBounds(a, q.Filters) {
			continue
		}
		out = append(out, a)
	}

	sortAssets(out, q.Sort)
	return out
}

func matchesBounds(a types.Asset, f types.FilterCriteria) bool {
	if f.MinPrice != nil && a.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && a.Price > *f.MaxPrice {
		return false
	}
	if f.MinVolume != nil && a.Volume < *f.MinVolume {
		return false
	}
	if f.MaxVolume != nil && a.Volume > *f.MaxVolume {
		return false
	}
	change7d := a.Change7dOrZero()
	if f.MinChange7d != nil && change7d < *f.MinChange7d {
		return false
	}
	if f.MaxChange7d != nil && change7d > *f.MaxChange7d {
		return false
	}
	return true
}

func sortAssets(assets []types.Asset, spec types.SortSpec) {
	value := sortField(spec.Key)
	sort.SliceStable(assets, func(i, j int) bool {
		if spec.Order == types.OrderAsc {
			return value(assets[i]) < value(assets[j])
		}
		return value(assets[i]) > value(assets[j])
	})
}

func sortField(key types.SortKey) func(types.Asset) float64 {
	switch key {
	case types.SortByPrice:
		return func(a types.Asset) float64 { return a.Price }
	case types.SortByVolume:
		return func(a types.Asset) float64 { return a.Volume }
	case types.SortByChange24h:
		return func(a types.Asset) float64 { return a.Change24h }
	case types.SortByChange7d:
		return func(a types.Asset) float64 { return a.Change7dOrZero() }
	default:
		return func(a types.Asset) float64 { return a.MarketCap }
	}
}
