package prices

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/powerhour/spotprices-go/cache"
	"github.com/powerhour/spotprices-go/country"
	"github.com/powerhour/spotprices-go/logging"
	"github.com/powerhour/spotprices-go/markup"
	"github.com/powerhour/spotprices-go/types"
	"github.com/powerhour/spotprices-go/window"
)

// fakeSource serves hourly points covering whatever range it is asked for.
type fakeSource struct {
	name     string
	priceMwh float64
	err      error
	calls    int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchPrices(_ context.Context, _ country.Profile, start, end time.Time, _ bool) ([]types.RawPricePoint, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var points []types.RawPricePoint
	for t := start.UTC().Truncate(time.Hour); t.Before(end); t = t.Add(time.Hour) {
		points = append(points, types.RawPricePoint{
			Time:     t,
			PriceMwh: f.priceMwh,
			PriceKwh: f.priceMwh / 1000,
		})
	}
	return points, nil
}

func newTestService(sources ...types.PriceSource) *Service {
	return NewService(logging.Discard(), cache.New(time.Hour), sources...)
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	instant, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", s, err)
	}
	return instant
}

func TestGetPricesCacheIdempotence(t *testing.T) {
	src := &fakeSource{name: "fake", priceMwh: 100}
	svc := newTestService(src)
	nl, _ := country.Lookup("nl")
	r := window.Range{
		Start: mustParse(t, "2025-05-21T22:00:00Z"),
		End:   mustParse(t, "2025-05-24T22:00:00Z"),
	}

	first, err := svc.GetPrices(context.Background(), nl, r, false)
	if err != nil {
		t.Fatalf("GetPrices failed: %v", err)
	}
	second, err := svc.GetPrices(context.Background(), nl, r, false)
	if err != nil {
		t.Fatalf("GetPrices failed: %v", err)
	}

	if src.calls != 1 {
		t.Errorf("upstream fetched %d times, expected 1", src.calls)
	}
	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("point %d differs between cached calls", i)
		}
	}
}

func TestGetPricesFailureNotCached(t *testing.T) {
	src := &fakeSource{name: "fake", err: errors.New("boom")}
	svc := newTestService(src)
	nl, _ := country.Lookup("nl")
	r := window.Range{
		Start: mustParse(t, "2025-05-21T22:00:00Z"),
		End:   mustParse(t, "2025-05-24T22:00:00Z"),
	}

	if _, err := svc.GetPrices(context.Background(), nl, r, false); err == nil {
		t.Fatal("expected a fetch error")
	}

	// Source recovers; the earlier failure must not have been cached.
	src.err = nil
	src.priceMwh = 50
	points, err := svc.GetPrices(context.Background(), nl, r, false)
	if err != nil {
		t.Fatalf("GetPrices after recovery failed: %v", err)
	}
	if len(points) == 0 {
		t.Error("expected points after recovery")
	}
	if src.calls != 2 {
		t.Errorf("upstream fetched %d times, expected 2", src.calls)
	}
}

func TestGetPricesFallbackChain(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("down")}
	secondary := &fakeSource{name: "secondary", priceMwh: 80}
	svc := newTestService(primary, secondary)
	nl, _ := country.Lookup("nl")
	r := window.Range{
		Start: mustParse(t, "2025-05-21T22:00:00Z"),
		End:   mustParse(t, "2025-05-24T22:00:00Z"),
	}

	points, err := svc.GetPrices(context.Background(), nl, r, false)
	if err != nil {
		t.Fatalf("GetPrices failed: %v", err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d, expected 1/1", primary.calls, secondary.calls)
	}
	if points[0].PriceMwh != 80 {
		t.Errorf("points came from the wrong source: %v", points[0].PriceMwh)
	}

	var fetchErr *FetchError
	allDown := newTestService(&fakeSource{name: "a", err: errors.New("x")}, &fakeSource{name: "b", err: errors.New("y")})
	if _, err := allDown.GetPrices(context.Background(), nl, r, false); !errors.As(err, &fetchErr) {
		t.Errorf("expected FetchError when all sources fail, got %v", err)
	}
}

func TestGetWindowToday(t *testing.T) {
	svc := newTestService(&fakeSource{name: "fake", priceMwh: 100})
	ref := mustParse(t, "2025-05-23T11:30:00Z")

	res, err := svc.GetWindow(context.Background(), "nl", window.Today, 0, ref, markup.Config{})
	if err != nil {
		t.Fatalf("GetWindow failed: %v", err)
	}

	if len(res.Points) != 24 {
		t.Fatalf("expected 24 points for today, got %d", len(res.Points))
	}
	for i, p := range res.Points {
		want := fmt.Sprintf("%02d:00", i)
		if p.Hour != want {
			t.Errorf("point %d hour label = %q, expected %q", i, p.Hour, want)
		}
		if p.HourFromNow != nil {
			t.Errorf("point %d: day window must not carry hourFromNow", i)
		}
	}
}

func TestGetWindowNextN(t *testing.T) {
	svc := newTestService(&fakeSource{name: "fake", priceMwh: 100})
	ref := mustParse(t, "2025-05-23T11:30:00Z")

	for _, n := range []int{1, 12, 48} {
		res, err := svc.GetWindow(context.Background(), "de", window.NextN, n, ref, markup.Config{})
		if err != nil {
			t.Fatalf("GetWindow(nextN, %d) failed: %v", n, err)
		}
		if len(res.Points) != n {
			t.Errorf("n=%d: got %d points", n, len(res.Points))
		}
		for i, p := range res.Points {
			if p.HourFromNow == nil || *p.HourFromNow != i {
				t.Errorf("n=%d point %d: hourFromNow = %v, expected %d", n, i, p.HourFromNow, i)
			}
			if p.DayOfWeek == "" {
				t.Errorf("n=%d point %d: missing dayOfWeek", n, i)
			}
		}
	}
}

func TestGetWindowAppliesMarkup(t *testing.T) {
	svc := newTestService(&fakeSource{name: "fake", priceMwh: 100}) // 0.100/kWh raw
	ref := mustParse(t, "2025-05-23T11:30:00Z")

	res, err := svc.GetWindow(context.Background(), "nl", window.Today, 0, ref, markup.Config{
		FixedMarkup: 0.024,
		AutoVat:     true, // resolves to 0.21 for nl
	})
	if err != nil {
		t.Fatalf("GetWindow failed: %v", err)
	}

	if res.Markup.Vat != 0.21 {
		t.Errorf("resolved vat = %v, expected 0.21", res.Markup.Vat)
	}
	for _, p := range res.Points {
		if p.FinalPrice != 0.15004 {
			t.Fatalf("final price = %v, expected 0.15004", p.FinalPrice)
		}
		if p.OriginalPrice != 0.1 {
			t.Fatalf("original price = %v, expected 0.1", p.OriginalPrice)
		}
	}
}

func TestGetWindowValidation(t *testing.T) {
	svc := newTestService(&fakeSource{name: "fake", priceMwh: 100})
	ref := mustParse(t, "2025-05-23T11:30:00Z")

	var vErr *ValidationError
	if _, err := svc.GetWindow(context.Background(), "xx", window.Today, 0, ref, markup.Config{}); !errors.As(err, &vErr) {
		t.Errorf("unknown country: expected ValidationError, got %v", err)
	}
	if _, err := svc.GetWindow(context.Background(), "nl", window.NextN, 49, ref, markup.Config{}); !errors.As(err, &vErr) {
		t.Errorf("bad hours: expected ValidationError, got %v", err)
	}
}

func TestGetWindowEmptyCoverage(t *testing.T) {
	// A source that returns nothing at all: valid but empty window.
	svc := newTestService(sourceFunc(func() ([]types.RawPricePoint, error) {
		return nil, nil
	}))

	res, err := svc.GetWindow(context.Background(), "nl", window.Today, 0, mustParse(t, "2025-05-23T11:30:00Z"), markup.Config{})
	if err != nil {
		t.Fatalf("GetWindow failed: %v", err)
	}
	if len(res.Points) != 0 {
		t.Errorf("expected empty result, got %d points", len(res.Points))
	}
}

type sourceFunc func() ([]types.RawPricePoint, error)

func (f sourceFunc) Name() string { return "func" }

func (f sourceFunc) FetchPrices(context.Context, country.Profile, time.Time, time.Time, bool) ([]types.RawPricePoint, error) {
	return f()
}
