package www

import (
	"net/http"
	"strings"

	"github.com/powerhour/spotprices-go/country"
)

type countryListEntry struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Currency   string  `json:"currency"`
	Timezone   string  `json:"timezone"`
	DefaultVat float64 `json:"defaultVat"`
	VatPercent string  `json:"vatPercent"`
}

func NewCountriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles := country.All()
		entries := make([]countryListEntry, len(profiles))
		for i, p := range profiles {
			entries[i] = countryListEntry{
				Code:       strings.ToUpper(p.Code),
				Name:       p.Name,
				Currency:   p.Currency,
				Timezone:   p.Timezone,
				DefaultVat: p.DefaultVat,
				VatPercent: p.VatPercent(),
			}
		}

		writeJSON(w, http.StatusOK, struct {
			Status string             `json:"status"`
			Data   []countryListEntry `json:"data"`
			Total  int                `json:"total"`
		}{
			Status: "success",
			Data:   entries,
			Total:  len(entries),
		})
	}
}
