package provider

import (
	"context"
	"fmt"

	"cryptodash/internal/types"
)

// Source is the remote market-data provider the poller fetches from.
type Source interface {
	// Markets returns one page of assets denominated in currency, ordered
	// by market cap descending on the provider side.
	Markets(ctx context.Context, page, perPage int, currency types.Currency) ([]types.Asset, error)
	// Chart returns the price history of a coin over the last days days.
	Chart(ctx context.Context, coinID string, days int, currency types.Currency) ([]types.PricePoint, error)
	// Details returns extended metadata for one coin.
	Details(ctx context.Context, coinID string) (*types.AssetDetails, error)
}

// FetchError is a transient upstream failure: network error, timeout or a
// non-2xx response. The poller keeps the last-good snapshot and retries on
// the next tick.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: provider returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
