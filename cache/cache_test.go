package cache

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/powerhour/spotprices-go/types"
	"github.com/powerhour/spotprices-go/window"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testRange(start string, hours int) window.Range {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return window.Range{Start: s, End: s.Add(time.Duration(hours) * time.Hour)}
}

func testPoints(n int, base string) []types.RawPricePoint {
	s, err := time.Parse(time.RFC3339, base)
	if err != nil {
		panic(err)
	}
	points := make([]types.RawPricePoint, n)
	for i := range points {
		points[i] = types.RawPricePoint{
			Time:     s.Add(time.Duration(i) * time.Hour),
			PriceMwh: 100 + float64(i),
			PriceKwh: (100 + float64(i)) / 1000,
		}
	}
	return points
}

func TestGetMissThenHit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 5, 23, 10, 0, 0, 0, time.UTC)}
	c := NewWithClock(time.Hour, clock.Now)
	r := testRange("2025-05-22T22:00:00Z", 72)

	if _, ok := c.Get("nl", r, false); ok {
		t.Fatal("expected miss on empty cache")
	}

	stored := testPoints(24, "2025-05-23T00:00:00Z")
	c.Put("nl", r, false, stored)

	got, ok := c.Get("nl", r, false)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if len(got) != len(stored) {
		t.Fatalf("got %d points, expected %d", len(got), len(stored))
	}
	for i := range got {
		if got[i] != stored[i] {
			t.Errorf("point %d differs after round trip", i)
		}
	}
}

func TestKeyNormalizesSubHourNoise(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 5, 23, 10, 0, 0, 0, time.UTC)}
	c := NewWithClock(time.Hour, clock.Now)

	c.Put("nl", testRange("2025-05-22T22:00:00Z", 72), false, testPoints(3, "2025-05-23T00:00:00Z"))

	// Same window requested one second later.
	noisy := testRange("2025-05-22T22:00:01Z", 72)
	if _, ok := c.Get("nl", noisy, false); !ok {
		t.Error("expected hit for range differing only in sub-hour noise")
	}
}

func TestKeyDiscriminators(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 5, 23, 10, 0, 0, 0, time.UTC)}
	c := NewWithClock(time.Hour, clock.Now)
	r := testRange("2025-05-22T22:00:00Z", 72)

	c.Put("nl", r, false, testPoints(3, "2025-05-23T00:00:00Z"))

	if _, ok := c.Get("de", r, false); ok {
		t.Error("country must be part of the key")
	}
	if _, ok := c.Get("nl", r, true); ok {
		t.Error("forecast flag must be part of the key")
	}
	if _, ok := c.Get("nl", testRange("2025-05-22T23:00:00Z", 72), false); ok {
		t.Error("range start must be part of the key")
	}
}

func TestLazyExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 5, 23, 10, 0, 0, 0, time.UTC)}
	c := NewWithClock(time.Hour, clock.Now)
	r := testRange("2025-05-22T22:00:00Z", 72)

	c.Put("nl", r, false, testPoints(3, "2025-05-23T00:00:00Z"))

	clock.Advance(59 * time.Minute)
	if _, ok := c.Get("nl", r, false); !ok {
		t.Error("expected hit within ttl")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("nl", r, false); ok {
		t.Error("expected miss after ttl")
	}
}

func TestReturnedSliceIsACopy(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 5, 23, 10, 0, 0, 0, time.UTC)}
	c := NewWithClock(time.Hour, clock.Now)
	r := testRange("2025-05-22T22:00:00Z", 72)

	c.Put("nl", r, false, testPoints(3, "2025-05-23T00:00:00Z"))

	got, _ := c.Get("nl", r, false)
	got[0].PriceKwh = 9999

	again, _ := c.Get("nl", r, false)
	if again[0].PriceKwh == 9999 {
		t.Error("mutating a returned slice must not affect the cache")
	}
}

func TestStatsAndSweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 5, 23, 10, 0, 0, 0, time.UTC)}
	c := NewWithClock(time.Hour, clock.Now)

	c.Put("nl", testRange("2025-05-22T22:00:00Z", 72), false, testPoints(3, "2025-05-23T00:00:00Z"))
	clock.Advance(30 * time.Minute)
	c.Put("de", testRange("2025-05-22T22:00:00Z", 72), false, testPoints(3, "2025-05-23T00:00:00Z"))
	c.Put("nl", testRange("2025-05-23T09:00:00Z", 24), false, testPoints(3, "2025-05-23T09:00:00Z"))

	s := c.Stats()
	if s.LiveEntries != 3 {
		t.Errorf("live entries = %d, expected 3", s.LiveEntries)
	}
	if s.ByCountry["nl"] != 2 || s.ByCountry["de"] != 1 {
		t.Errorf("by-country counts = %v", s.ByCountry)
	}
	if !s.EarliestExpiry.IsValid() {
		t.Fatal("expected an earliest expiry")
	}
	wantEarliest := time.Date(2025, 5, 23, 11, 0, 0, 0, time.UTC) // first put + 1h
	if !s.EarliestExpiry.Value().Equal(wantEarliest) {
		t.Errorf("earliest expiry = %s, expected %s", s.EarliestExpiry.Value(), wantEarliest)
	}

	// First entry lapses, the two later ones survive.
	clock.Advance(45 * time.Minute)
	if removed := c.Sweep(); removed != 1 {
		t.Errorf("sweep removed %d entries, expected 1", removed)
	}
	s = c.Stats()
	if s.LiveEntries != 2 {
		t.Errorf("live entries after sweep = %d, expected 2", s.LiveEntries)
	}
	if s.EarliestExpiry.IsValid() && s.EarliestExpiry.Value().Before(clock.Now()) {
		t.Error("earliest expiry must be in the future after sweep")
	}
}

func TestStatsEmptyCache(t *testing.T) {
	c := New(0)
	s := c.Stats()
	if s.LiveEntries != 0 {
		t.Errorf("live entries = %d, expected 0", s.LiveEntries)
	}
	if s.EarliestExpiry.IsValid() {
		t.Error("empty cache must have no earliest expiry")
	}
}

func TestStatsMarshalsEarliestExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 5, 23, 10, 0, 0, 0, time.UTC)}
	c := NewWithClock(time.Hour, clock.Now)

	empty, err := json.Marshal(c.Stats())
	if err != nil {
		t.Fatalf("marshal empty stats: %v", err)
	}
	if !strings.Contains(string(empty), `"earliestExpiry":null`) {
		t.Errorf("empty stats json = %s, expected null earliestExpiry", empty)
	}

	c.Put("nl", testRange("2025-05-23T09:00:00Z", 24), false, testPoints(3, "2025-05-23T09:00:00Z"))
	full, err := json.Marshal(c.Stats())
	if err != nil {
		t.Fatalf("marshal stats: %v", err)
	}
	if !strings.Contains(string(full), `"earliestExpiry":"2025-05-23T11:00:00Z"`) {
		t.Errorf("stats json = %s, expected earliest expiry timestamp", full)
	}
}
