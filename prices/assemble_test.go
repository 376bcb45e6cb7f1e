package prices

import (
	"testing"

	"github.com/powerhour/spotprices-go/country"
	"github.com/powerhour/spotprices-go/markup"
	"github.com/powerhour/spotprices-go/types"
	"github.com/powerhour/spotprices-go/window"
)

func appliedPoints(t *testing.T, times ...string) []markup.FinalPricePoint {
	t.Helper()
	raw := make([]types.RawPricePoint, len(times))
	for i, s := range times {
		raw[i] = types.RawPricePoint{Time: mustParse(t, s), PriceMwh: 100, PriceKwh: 0.1}
	}
	return markup.Apply(raw, markup.Config{})
}

func TestAssembleHalfOpenFilter(t *testing.T) {
	nl, _ := country.Lookup("nl")
	filter := window.Range{
		Start: mustParse(t, "2025-05-23T10:00:00Z"),
		End:   mustParse(t, "2025-05-23T12:00:00Z"),
	}

	points := appliedPoints(t,
		"2025-05-23T09:00:00Z", // before
		"2025-05-23T10:00:00Z", // start, included
		"2025-05-23T11:00:00Z",
		"2025-05-23T12:00:00Z", // end, excluded
	)

	out := Assemble(points, filter, nl, false)
	if len(out) != 2 {
		t.Fatalf("expected 2 points, got %d", len(out))
	}
	if !out[0].Time.Equal(filter.Start) {
		t.Errorf("first point = %s, expected the filter start", out[0].Time)
	}
}

func TestAssembleOrdersByInstant(t *testing.T) {
	nl, _ := country.Lookup("nl")
	filter := window.Range{
		Start: mustParse(t, "2025-05-23T00:00:00Z"),
		End:   mustParse(t, "2025-05-24T00:00:00Z"),
	}

	// Deliberately shuffled input.
	points := appliedPoints(t,
		"2025-05-23T12:00:00Z",
		"2025-05-23T10:00:00Z",
		"2025-05-23T11:00:00Z",
	)

	out := Assemble(points, filter, nl, true)
	for i := 1; i < len(out); i++ {
		if !out[i-1].Time.Before(out[i].Time) {
			t.Fatal("output not ascending by instant")
		}
	}
	for i, p := range out {
		if p.HourFromNow == nil || *p.HourFromNow != i {
			t.Errorf("point %d hourFromNow = %v", i, p.HourFromNow)
		}
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	nl, _ := country.Lookup("nl")
	filter := window.Range{
		Start: mustParse(t, "2025-05-23T00:00:00Z"),
		End:   mustParse(t, "2025-05-24T00:00:00Z"),
	}

	out := Assemble(nil, filter, nl, false)
	if out == nil || len(out) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", out)
	}
}

func TestAssembleLocalLabels(t *testing.T) {
	se, _ := country.Lookup("se")
	filter := window.Range{
		Start: mustParse(t, "2025-01-15T00:00:00Z"),
		End:   mustParse(t, "2025-01-16T00:00:00Z"),
	}

	out := Assemble(appliedPoints(t, "2025-01-15T12:00:00Z"), filter, se, false)
	if len(out) != 1 {
		t.Fatalf("expected 1 point, got %d", len(out))
	}
	// Stockholm is UTC+1 in January.
	if out[0].Hour != "13:00" {
		t.Errorf("hour label = %q, expected %q", out[0].Hour, "13:00")
	}
	if out[0].LocalTime != "2025-01-15 13:00" {
		t.Errorf("local time = %q", out[0].LocalTime)
	}
	if out[0].DayOfWeek != "" {
		t.Error("day window must not carry dayOfWeek")
	}
}
