package types

import (
	"context"
	"time"

	"github.com/powerhour/spotprices-go/country"
)

// RawPricePoint is one hour of day-ahead market price as delivered by an
// upstream source. Time is always UTC and truncated to the top of the hour.
type RawPricePoint struct {
	Time     time.Time `json:"time"`
	PriceMwh float64   `json:"priceMwh"` // raw market price, currency/MWh
	PriceKwh float64   `json:"price"`    // PriceMwh / 1000
}

// PriceSource fetches raw hourly prices for a bidding zone. Implementations
// own their HTTP timeout; callers own retries and caching.
type PriceSource interface {
	Name() string
	FetchPrices(ctx context.Context, profile country.Profile, start, end time.Time, forecast bool) ([]RawPricePoint, error)
}
