// Package markup turns raw per-kWh market prices into consumer prices.
package markup

import (
	"fmt"
	"math"

	"github.com/powerhour/spotprices-go/country"
	"github.com/powerhour/spotprices-go/types"
)

const DefaultRoundTo = 5

// Config describes one retail pricing scheme. A Config is immutable per
// request: Apply snapshots it into every output point.
type Config struct {
	FixedMarkup    float64 `json:"fixed"`      // additive, currency/kWh
	VariableMarkup float64 `json:"variable"`   // percentage, e.g. 5 for 5%
	Vat            float64 `json:"vat"`        // fraction, e.g. 0.21
	VatPercent     string  `json:"vatPercent"` // display form of Vat
	AutoVat        bool    `json:"-"`          // fall back to the country default when Vat is zero
	RoundTo        int     `json:"-"`          // decimal places, defaults to DefaultRoundTo
}

// ResolveVat pins the effective VAT rate: an explicit rate always wins, the
// country default is only consulted via AutoVat. Returns a config ready for
// Apply.
func (c Config) ResolveVat(profile country.Profile) Config {
	if c.Vat == 0 && c.AutoVat {
		c.Vat = profile.DefaultVat
	}
	c.VatPercent = fmt.Sprintf("%d%%", int(c.Vat*100+0.5))
	if c.RoundTo <= 0 {
		c.RoundTo = DefaultRoundTo
	}
	return c
}

// FinalPricePoint is a raw point with the consumer price and an audit trail
// of how it was derived. Final points are never cached, only raw ones.
type FinalPricePoint struct {
	types.RawPricePoint
	FinalPrice    float64 `json:"finalPrice"`
	OriginalPrice float64 `json:"originalPrice"`
	Applied       Config  `json:"markup"`

	// Presentation fields, populated by the assembler.
	LocalTime   string `json:"localTime,omitempty"`
	Hour        string `json:"hour,omitempty"`
	HourFromNow *int   `json:"hourFromNow,omitempty"`
	DayOfWeek   string `json:"dayOfWeek,omitempty"`
}

// Apply runs the pricing pipeline over raw points. The step order is part of
// the contract: variable markup, then fixed markup, then VAT, then rounding.
// Pure function, input points are not mutated.
func Apply(points []types.RawPricePoint, cnfg Config) []FinalPricePoint {
	if cnfg.RoundTo <= 0 {
		cnfg.RoundTo = DefaultRoundTo
	}

	out := make([]FinalPricePoint, len(points))
	for i, p := range points {
		price := p.PriceKwh

		if cnfg.VariableMarkup != 0 {
			price *= 1 + cnfg.VariableMarkup/100
		}
		if cnfg.FixedMarkup != 0 {
			price += cnfg.FixedMarkup
		}
		if cnfg.Vat > 0 {
			price *= 1 + cnfg.Vat
		}

		out[i] = FinalPricePoint{
			RawPricePoint: p,
			FinalPrice:    Round(price, cnfg.RoundTo),
			OriginalPrice: p.PriceKwh,
			Applied:       cnfg,
		}
	}
	return out
}

// Round rounds half away from zero at 10^-decimals resolution.
func Round(number float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(number*scale) / scale
}
