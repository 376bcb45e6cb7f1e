// Package hours holds the civil-time arithmetic for hour and day boundaries.
// All boundary math is done in the target location and converted back to UTC,
// never by truncating UTC minutes, so DST-shifted hours come out right.
package hours

import "time"

// StartOfLocalHour returns the UTC instant of the top of the current hour as
// observed in loc. During a skipped local hour Go resolves the civil time
// forward, during a repeated one it picks the first occurrence; both are
// accepted as policy here.
func StartOfLocalHour(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), 0, 0, 0, loc).UTC()
}

// LocalMidnight returns the UTC instant of midnight in loc, dayOffset days
// from t's local date. The offset is applied to the civil date so a 23- or
// 25-hour DST day keeps its calendar boundary.
func LocalMidnight(t time.Time, loc *time.Location, dayOffset int) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day()+dayOffset, 0, 0, 0, 0, loc).UTC()
}

// TruncateToHour snaps an instant to the top of its UTC hour. Used for cache
// key normalization, not for window boundaries.
func TruncateToHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// HourLabel renders the local wall-clock hour, e.g. "13:00".
func HourLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// LocalTimeLabel renders a short local timestamp, e.g. "2025-05-23 13:00".
func LocalTimeLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04")
}

// SpanTimeLabel renders a local timestamp with the weekday, for spanning
// windows, e.g. "Fri 23 May 13:00".
func SpanTimeLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Mon 2 Jan 15:04")
}

// DayOfWeek returns the full local weekday name, e.g. "Friday".
func DayOfWeek(t time.Time, loc *time.Location) string {
	return t.In(loc).Weekday().String()
}
