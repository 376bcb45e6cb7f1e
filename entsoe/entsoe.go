// Package entsoe fetches day-ahead prices from the ENTSO-E transparency
// platform (document type A44). Requires a free security token.
package entsoe

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/powerhour/spotprices-go/country"
	"github.com/powerhour/spotprices-go/hours"
	"github.com/powerhour/spotprices-go/types"
)

const defaultBaseURL = "https://web-api.tp.entsoe.eu"

const periodLayout = "200601021504" // yyyyMMddHHmm, UTC

type Entsoe struct {
	token   string
	baseURL string
	client  *http.Client
}

func New(token string) *Entsoe {
	return &Entsoe{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *Entsoe) Name() string { return "entsoe" }

// Enabled reports whether the source can be used at all. Without a token the
// service leaves entsoe out of its fallback chain.
func (e *Entsoe) Enabled() bool { return e.token != "" }

func (e *Entsoe) FetchPrices(ctx context.Context, profile country.Profile, start, end time.Time, forecast bool) ([]types.RawPricePoint, error) {
	if e.token == "" {
		return nil, fmt.Errorf("entsoe security token not configured")
	}

	url := fmt.Sprintf("%s/api?securityToken=%s&documentType=A44&in_Domain=%s&out_Domain=%s&periodStart=%s&periodEnd=%s",
		e.baseURL,
		e.token,
		profile.BiddingZone,
		profile.BiddingZone,
		start.UTC().Format(periodLayout),
		end.UTC().Format(periodLayout))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	points, err := parseDocument(body)
	if err != nil {
		return nil, err
	}
	return filterRange(points, start, end), nil
}

type marketDocument struct {
	XMLName    xml.Name     `xml:"Publication_MarketDocument"`
	TimeSeries []timeSeries `xml:"TimeSeries"`
}

type timeSeries struct {
	Period []period `xml:"Period"`
}

type period struct {
	Resolution   string       `xml:"resolution"`
	TimeInterval timeInterval `xml:"timeInterval"`
	Points       []point      `xml:"Point"`
}

type timeInterval struct {
	Start string `xml:"start"`
}

type point struct {
	Position int     `xml:"position"`
	Price    float64 `xml:"price.amount"`
}

func parseDocument(body []byte) ([]types.RawPricePoint, error) {
	var doc marketDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("could not parse market document: %w", err)
	}

	seen := make(map[int64]bool)
	var points []types.RawPricePoint
	for _, ts := range doc.TimeSeries {
		for _, p := range ts.Period {
			if p.Resolution != "PT60M" {
				continue
			}
			periodStart, err := parseIntervalStart(p.TimeInterval.Start)
			if err != nil {
				return nil, fmt.Errorf("could not parse period start %q: %w", p.TimeInterval.Start, err)
			}
			for _, pt := range p.Points {
				if pt.Position < 1 {
					return nil, fmt.Errorf("invalid point position %d", pt.Position)
				}
				instant := hours.TruncateToHour(periodStart.Add(time.Duration(pt.Position-1) * time.Hour))
				if seen[instant.Unix()] {
					continue
				}
				seen[instant.Unix()] = true
				points = append(points, types.RawPricePoint{
					Time:     instant,
					PriceMwh: pt.Price,
					PriceKwh: pt.Price / 1000,
				})
			}
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

var intervalLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z",
}

func parseIntervalStart(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range intervalLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func filterRange(points []types.RawPricePoint, start, end time.Time) []types.RawPricePoint {
	out := points[:0]
	for _, p := range points {
		if !p.Time.Before(start) && p.Time.Before(end) {
			out = append(out, p)
		}
	}
	return out
}
