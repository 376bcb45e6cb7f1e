package prices

import "fmt"

// ValidationError marks bad request input: unknown country, out-of-range
// hours, malformed markup parameters. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// FetchError marks an upstream failure for the current request. Stale cache
// data is never served in its place.
type FetchError struct {
	Country string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch prices for %s: %v", e.Country, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
