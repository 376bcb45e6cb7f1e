// Package stekker fetches day-ahead prices by scraping the EPEX forecast page
// on stekker.app. The page embeds its plotly graph data in an HTML attribute;
// that JSON is the only thing we read out of the markup.
package stekker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/powerhour/spotprices-go/country"
	"github.com/powerhour/spotprices-go/hours"
	"github.com/powerhour/spotprices-go/types"
)

const defaultBaseURL = "https://stekker.app"

var graphDataRe = regexp.MustCompile(`data-epex-forecast-graph-data-value="([^"]+)"`)

type Stekker struct {
	baseURL string
	client  *http.Client
}

func New() *Stekker {
	return &Stekker{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Stekker) Name() string { return "stekker" }

func (s *Stekker) FetchPrices(ctx context.Context, profile country.Profile, start, end time.Time, forecast bool) ([]types.RawPricePoint, error) {
	url := fmt.Sprintf("%s/epex-forecast?advanced_view=&region=%s&unit=MWh", s.baseURL, profile.StekkerRegion)
	if !forecast {
		url += fmt.Sprintf("&filter_from=%s&filter_to=%s",
			start.UTC().Format(time.RFC3339),
			end.UTC().Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
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

	points, err := parseGraphData(string(body))
	if err != nil {
		return nil, err
	}

	if !forecast {
		points = filterRange(points, start, end)
	}
	return points, nil
}

// graphSeries is one plotly trace from the embedded graph data.
type graphSeries struct {
	Name string     `json:"name"`
	X    []string   `json:"x"`
	Y    []*float64 `json:"y"`
}

func parseGraphData(html string) ([]types.RawPricePoint, error) {
	if !strings.Contains(html, "price") {
		return nil, fmt.Errorf("no price data found in response")
	}

	m := graphDataRe.FindStringSubmatch(html)
	if m == nil {
		return nil, fmt.Errorf("could not find price data attribute in html")
	}

	decoded := htmlEntityDecode(m[1])

	var series []graphSeries
	if err := json.Unmarshal([]byte(decoded), &series); err != nil {
		return nil, fmt.Errorf("could not parse graph data json: %w", err)
	}

	var market *graphSeries
	for i := range series {
		if strings.Contains(series[i].Name, "Market") {
			market = &series[i]
			break
		}
	}
	if market == nil {
		return nil, fmt.Errorf("could not find market price series in response")
	}
	if len(market.X) != len(market.Y) {
		return nil, fmt.Errorf("times and prices have different lengths: %d vs %d", len(market.X), len(market.Y))
	}

	seen := make(map[int64]bool, len(market.X))
	points := make([]types.RawPricePoint, 0, len(market.X))
	for i, ts := range market.X {
		if market.Y[i] == nil {
			continue
		}
		instant, err := parseGraphTime(ts)
		if err != nil {
			return nil, fmt.Errorf("could not parse time %q: %w", ts, err)
		}
		hour := hours.TruncateToHour(instant)
		if seen[hour.Unix()] {
			continue
		}
		seen[hour.Unix()] = true
		points = append(points, types.RawPricePoint{
			Time:     hour,
			PriceMwh: *market.Y[i],
			PriceKwh: *market.Y[i] / 1000,
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

var graphTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseGraphTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range graphTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func htmlEntityDecode(s string) string {
	r := strings.NewReplacer(
		"&quot;", `"`,
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
	)
	return r.Replace(s)
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
