// Package prices ties the window resolver, cache, upstream sources and
// markup engine together into the request-time price service.
package prices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/powerhour/spotprices-go/cache"
	"github.com/powerhour/spotprices-go/country"
	"github.com/powerhour/spotprices-go/markup"
	"github.com/powerhour/spotprices-go/types"
	"github.com/powerhour/spotprices-go/window"
)

type Service struct {
	logger  *slog.Logger
	cache   *cache.RawPriceCache
	sources []types.PriceSource
}

func NewService(logger *slog.Logger, priceCache *cache.RawPriceCache, sources ...types.PriceSource) *Service {
	if len(sources) == 0 {
		panic("no price sources")
	}
	return &Service{
		logger:  logger,
		cache:   priceCache,
		sources: sources,
	}
}

// GetPrices returns raw points for the fetch range, from cache when possible.
// On a miss the sources are tried in order and the first success is cached;
// failures are never cached, so the next request retries upstream.
func (s *Service) GetPrices(ctx context.Context, profile country.Profile, fetchRange window.Range, forecast bool) ([]types.RawPricePoint, error) {
	if points, ok := s.cache.Get(profile.Code, fetchRange, forecast); ok {
		s.logger.Debug("cache hit",
			slog.String("country", profile.Code),
			slog.String("range", fetchRange.String()),
			slog.Int("points", len(points)))
		return points, nil
	}

	var lastErr error
	for _, src := range s.sources {
		points, err := src.FetchPrices(ctx, profile, fetchRange.Start, fetchRange.End, forecast)
		if err != nil {
			s.logger.Warn("price source failed",
				slog.String("source", src.Name()),
				slog.String("country", profile.Code),
				slog.Any("error", err))
			lastErr = err
			continue
		}

		s.cache.Put(profile.Code, fetchRange, forecast, points)
		s.logger.Info("fetched prices",
			slog.String("source", src.Name()),
			slog.String("country", profile.Code),
			slog.Int("points", len(points)))
		return points, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no price source available")
	}
	return nil, &FetchError{Country: profile.Code, Err: lastErr}
}

// WindowResult is the assembled answer for one logical window request.
type WindowResult struct {
	Profile country.Profile
	Kind    window.Kind
	Windows window.Windows
	Markup  markup.Config
	Points  []markup.FinalPricePoint
}

// GetWindow resolves the logical window for a country, fetches (or reuses)
// raw prices for the widened range, applies the markup pipeline and trims the
// result to the exact window. An empty result for a valid window is not an
// error.
func (s *Service) GetWindow(ctx context.Context, countryCode string, kind window.Kind, n int, ref time.Time, cnfg markup.Config) (WindowResult, error) {
	profile, ok := country.Lookup(countryCode)
	if !ok {
		return WindowResult{}, &ValidationError{Msg: fmt.Sprintf("unsupported country: %s", countryCode)}
	}

	windows, err := window.Resolve(profile, kind, n, ref)
	if err != nil {
		return WindowResult{}, &ValidationError{Msg: err.Error()}
	}

	cnfg = cnfg.ResolveVat(profile)

	raw, err := s.GetPrices(ctx, profile, windows.Fetch, false)
	if err != nil {
		return WindowResult{}, err
	}

	applied := markup.Apply(raw, cnfg)
	return WindowResult{
		Profile: profile,
		Kind:    kind,
		Windows: windows,
		Markup:  cnfg,
		Points:  Assemble(applied, windows.Filter, profile, kind.IsSpan()),
	}, nil
}

// CacheStats exposes the cache diagnostic view for health reporting.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// SweepCache drops expired cache entries, for the maintenance task.
func (s *Service) SweepCache() int {
	return s.cache.Sweep()
}
