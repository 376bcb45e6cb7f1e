package www

import (
	"fmt"
	"strings"
	"time"

	"github.com/powerhour/spotprices-go/markup"
	"github.com/powerhour/spotprices-go/prices"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type countryInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

type responseInfo struct {
	Type       string `json:"type"`
	TotalHours int    `json:"totalHours"`
	PriceUnit  string `json:"priceUnit"`
	Timezone   string `json:"timezone"`
	Date       string `json:"date,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime,omitempty"`
}

type priceResponse struct {
	Status    string                   `json:"status"`
	Provider  string                   `json:"provider,omitempty"`
	Country   countryInfo              `json:"country"`
	Data      []markup.FinalPricePoint `json:"data"`
	Markup    markup.Config            `json:"markup"`
	FetchedAt string                   `json:"fetchedAt"`
	Info      responseInfo             `json:"info"`
}

// buildPriceResponse wraps a window result in the response envelope shared by
// every price endpoint.
func buildPriceResponse(res prices.WindowResult) priceResponse {
	info := responseInfo{
		Type:       res.Kind.String(),
		TotalHours: len(res.Points),
		PriceUnit:  fmt.Sprintf("%s/kWh", res.Profile.Currency),
		Timezone:   res.Profile.Timezone,
	}

	if res.Kind.IsSpan() {
		info.StartTime = res.Windows.Filter.Start.UTC().Format(time.RFC3339)
		info.EndTime = res.Windows.Filter.End.UTC().Format(time.RFC3339)
	} else {
		info.Date = res.Windows.Filter.Start.In(res.Profile.Location()).Format("2006-01-02")
	}

	return priceResponse{
		Status: "success",
		Country: countryInfo{
			Code:     strings.ToUpper(res.Profile.Code),
			Name:     res.Profile.Name,
			Currency: res.Profile.Currency,
			Timezone: res.Profile.Timezone,
		},
		Data:      res.Points,
		Markup:    res.Markup,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Info:      info,
	}
}
