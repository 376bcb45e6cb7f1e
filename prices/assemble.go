package prices

import (
	"sort"

	"github.com/powerhour/spotprices-go/country"
	"github.com/powerhour/spotprices-go/hours"
	"github.com/powerhour/spotprices-go/markup"
	"github.com/powerhour/spotprices-go/window"
)

// Assemble trims applied points to the half-open filter range and attaches
// the presentation fields for the country's timezone. Output is ascending by
// instant; ordering by price is never done here. A window with no data yields
// an empty slice, not an error.
func Assemble(points []markup.FinalPricePoint, filter window.Range, profile country.Profile, span bool) []markup.FinalPricePoint {
	loc := profile.Location()

	out := make([]markup.FinalPricePoint, 0, len(points))
	for _, p := range points {
		if filter.Contains(p.Time) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	for i := range out {
		out[i].Hour = hours.HourLabel(out[i].Time, loc)
		if span {
			idx := i
			out[i].LocalTime = hours.SpanTimeLabel(out[i].Time, loc)
			out[i].HourFromNow = &idx
			out[i].DayOfWeek = hours.DayOfWeek(out[i].Time, loc)
		} else {
			out[i].LocalTime = hours.LocalTimeLabel(out[i].Time, loc)
		}
	}
	return out
}
