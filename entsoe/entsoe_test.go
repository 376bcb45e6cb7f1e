package entsoe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/powerhour/spotprices-go/country"
)

const fixtureDocument = `<?xml version="1.0" encoding="UTF-8"?>
<Publication_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-3:publicationdocument:7:0">
  <TimeSeries>
    <Period>
      <timeInterval>
        <start>2025-05-22T22:00Z</start>
        <end>2025-05-23T22:00Z</end>
      </timeInterval>
      <resolution>PT60M</resolution>
      <Point><position>1</position><price.amount>95.50</price.amount></Point>
      <Point><position>2</position><price.amount>88.00</price.amount></Point>
      <Point><position>3</position><price.amount>-5.25</price.amount></Point>
    </Period>
    <Period>
      <timeInterval>
        <start>2025-05-22T22:00Z</start>
        <end>2025-05-23T22:00Z</end>
      </timeInterval>
      <resolution>PT15M</resolution>
      <Point><position>1</position><price.amount>999</price.amount></Point>
    </Period>
  </TimeSeries>
</Publication_MarketDocument>`

func TestParseDocument(t *testing.T) {
	points, err := parseDocument([]byte(fixtureDocument))
	if err != nil {
		t.Fatalf("parseDocument failed: %v", err)
	}

	// Only the PT60M period counts.
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	if !points[0].Time.Equal(time.Date(2025, 5, 22, 22, 0, 0, 0, time.UTC)) {
		t.Errorf("first point time = %s", points[0].Time)
	}
	if points[0].PriceMwh != 95.5 || points[0].PriceKwh != 0.0955 {
		t.Errorf("first point prices = %v / %v", points[0].PriceMwh, points[0].PriceKwh)
	}
	if points[2].PriceMwh != -5.25 {
		t.Errorf("negative price lost: %v", points[2].PriceMwh)
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Time.Before(points[i].Time) {
			t.Error("points must be strictly ascending")
		}
	}
}

func TestFetchPrices(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		fmt.Fprint(w, fixtureDocument)
	}))
	defer srv.Close()

	e := &Entsoe{token: "test-token", baseURL: srv.URL, client: srv.Client()}
	nl, _ := country.Lookup("nl")

	start := time.Date(2025, 5, 22, 22, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	points, err := e.FetchPrices(context.Background(), nl, start, end, false)
	if err != nil {
		t.Fatalf("FetchPrices failed: %v", err)
	}

	// Half-open range keeps two of the three hours.
	if len(points) != 2 {
		t.Errorf("expected 2 points in range, got %d", len(points))
	}
	for _, want := range []string{"documentType=A44", "securityToken=test-token", "in_Domain=10YNL----------L", "periodStart=202505222200"} {
		if !strings.Contains(gotURL, want) {
			t.Errorf("request %q missing %q", gotURL, want)
		}
	}
}

func TestFetchPricesWithoutToken(t *testing.T) {
	e := New("")
	if e.Enabled() {
		t.Error("source without token must not be enabled")
	}
	nl, _ := country.Lookup("nl")
	if _, err := e.FetchPrices(context.Background(), nl, time.Now(), time.Now(), false); err == nil {
		t.Error("expected an error without a token")
	}
}
