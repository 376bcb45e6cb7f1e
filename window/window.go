// Package window maps logical price windows (today, tomorrow, next N hours)
// onto absolute UTC ranges for a country's timezone.
package window

import (
	"errors"
	"fmt"
	"time"

	"github.com/powerhour/spotprices-go/country"
	"github.com/powerhour/spotprices-go/hours"
)

type Kind int

const (
	Today Kind = iota
	Tomorrow
	Next24h
	NextN
)

func (k Kind) String() string {
	switch k {
	case Today:
		return "today"
	case Tomorrow:
		return "tomorrow"
	case Next24h:
		return "next24hours"
	case NextN:
		return "nextNhours"
	}
	return "unknown"
}

// IsSpan reports whether the window is anchored to "now" rather than a
// calendar day. Span windows get hour-from-now enrichment.
func (k Kind) IsSpan() bool {
	return k == Next24h || k == NextN
}

const (
	MinSpanHours = 1
	MaxSpanHours = 48
)

var ErrBadHours = errors.New("hours must be between 1 and 48")

// Range is a half-open UTC interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

// Windows pairs the exact logical range (Filter) with the widened range
// handed to the upstream source (Fetch). The fetch range extends one day on
// each side because the upstream's own day anchoring is not trusted.
type Windows struct {
	Fetch  Range
	Filter Range
}

// Resolve computes the UTC windows for the given kind at the reference
// instant, in the profile's timezone. n is only consulted for NextN and must
// be within [MinSpanHours, MaxSpanHours]; out-of-range values are an error,
// never clamped.
func Resolve(profile country.Profile, kind Kind, n int, ref time.Time) (Windows, error) {
	loc := profile.Location()

	var filter Range
	switch kind {
	case Today:
		filter = Range{
			Start: hours.LocalMidnight(ref, loc, 0),
			End:   hours.LocalMidnight(ref, loc, 1),
		}
	case Tomorrow:
		filter = Range{
			Start: hours.LocalMidnight(ref, loc, 1),
			End:   hours.LocalMidnight(ref, loc, 2),
		}
	case Next24h:
		start := hours.StartOfLocalHour(ref, loc)
		filter = Range{Start: start, End: start.Add(24 * time.Hour)}
	case NextN:
		if n < MinSpanHours || n > MaxSpanHours {
			return Windows{}, fmt.Errorf("%w: got %d", ErrBadHours, n)
		}
		start := hours.StartOfLocalHour(ref, loc)
		filter = Range{Start: start, End: start.Add(time.Duration(n) * time.Hour)}
	default:
		return Windows{}, fmt.Errorf("unknown window kind %d", kind)
	}

	return Windows{
		Fetch: Range{
			Start: filter.Start.Add(-24 * time.Hour),
			End:   filter.End.Add(24 * time.Hour),
		},
		Filter: filter,
	}, nil
}
