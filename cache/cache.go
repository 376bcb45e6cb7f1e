// Package cache holds recently fetched raw price series so identical windows
// requested in quick succession hit upstream only once.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/powerhour/spotprices-go/hours"
	"github.com/powerhour/spotprices-go/types"
	"github.com/powerhour/spotprices-go/types/maybe"
	"github.com/powerhour/spotprices-go/window"
)

const DefaultTTL = time.Hour // matches the hourly upstream granularity

type key struct {
	country  string
	start    int64 // unix seconds, hour-normalized
	end      int64
	forecast bool
}

type entry struct {
	points    []types.RawPricePoint
	expiresAt time.Time
}

// Stats is a diagnostic view of the cache. It is never used for correctness
// decisions.
type Stats struct {
	LiveEntries    int                    `json:"liveEntries"`
	ByCountry      map[string]int         `json:"byCountry"`
	EarliestExpiry maybe.Maybe[time.Time] `json:"earliestExpiry"`
}

// RawPriceCache is a TTL map of raw upstream responses. Expiry is lazy: an
// expired entry is treated as absent on read and reclaimed by Sweep.
// Concurrent misses on the same key may both fetch and overwrite each other;
// last write wins.
type RawPriceCache struct {
	mu      sync.RWMutex
	entries map[key]entry
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *RawPriceCache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock injects the clock, for deterministic tests.
func NewWithClock(ttl time.Duration, now func() time.Time) *RawPriceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RawPriceCache{
		entries: make(map[key]entry),
		ttl:     ttl,
		now:     now,
	}
}

// makeKey normalizes range boundaries to the top of the hour so requests made
// seconds apart map to the same entry.
func makeKey(countryCode string, r window.Range, forecast bool) key {
	return key{
		country:  countryCode,
		start:    hours.TruncateToHour(r.Start).Unix(),
		end:      hours.TruncateToHour(r.End).Unix(),
		forecast: forecast,
	}
}

// Get returns the stored raw points for the normalized key, or ok=false when
// absent or expired. Callers receive a copy and may not mutate cache state
// through it.
func (c *RawPriceCache) Get(countryCode string, r window.Range, forecast bool) ([]types.RawPricePoint, bool) {
	k := makeKey(countryCode, r, forecast)

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}

	points := make([]types.RawPricePoint, len(e.points))
	copy(points, e.points)
	return points, true
}

// Put stores points unconditionally under the normalized key.
func (c *RawPriceCache) Put(countryCode string, r window.Range, forecast bool, points []types.RawPricePoint) {
	k := makeKey(countryCode, r, forecast)
	stored := make([]types.RawPricePoint, len(points))
	copy(stored, points)

	c.mu.Lock()
	c.entries[k] = entry{points: stored, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Stats reports live (non-expired) entries only.
func (c *RawPriceCache) Stats() Stats {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{ByCountry: make(map[string]int)}
	earliest := maybe.None[time.Time]()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			continue
		}
		s.LiveEntries++
		s.ByCountry[k.country]++
		if !earliest.IsValid() || e.expiresAt.Before(earliest.Value()) {
			earliest = maybe.Some(e.expiresAt)
		}
	}
	s.EarliestExpiry = earliest
	return s
}

// Sweep drops expired entries and returns how many were removed. Purely a
// memory bound; correctness never depends on it running.
func (c *RawPriceCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (s Stats) String() string {
	expiry := "-"
	if s.EarliestExpiry.IsValid() {
		expiry = s.EarliestExpiry.Value().UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("live=%d earliestExpiry=%s", s.LiveEntries, expiry)
}
