package www

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/powerhour/spotprices-go/markup"
	"github.com/powerhour/spotprices-go/prices"
	"github.com/powerhour/spotprices-go/window"
)

// providerPreset is a named markup scheme offered by a retail energy company,
// limited to the countries it operates in.
type providerPreset struct {
	Name        string
	Countries   []string
	FixedMarkup float64
	Vat         float64 // 0 means the country default applies
	AutoVat     bool
}

func (p providerPreset) markupConfig() markup.Config {
	return markup.Config{
		FixedMarkup: p.FixedMarkup,
		Vat:         p.Vat,
		AutoVat:     p.AutoVat,
	}
}

var providerPresets = map[string]providerPreset{
	"next-energy": {
		Name:        "Next Energy",
		Countries:   []string{"nl"},
		FixedMarkup: 0.024,
		Vat:         0.21,
	},
	"vattenfall": {
		Name:        "Vattenfall",
		Countries:   []string{"nl", "de", "se"},
		FixedMarkup: 0.030,
		AutoVat:     true,
	},
	"eneco": {
		Name:        "Eneco",
		Countries:   []string{"nl", "be"},
		FixedMarkup: 0.028,
		AutoVat:     true,
	},
}

func providerIds() []string {
	ids := make([]string, 0, len(providerPresets))
	for id := range providerPresets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

type providerListEntry struct {
	Id        string   `json:"id"`
	Name      string   `json:"name"`
	Countries []string `json:"countries"`
	Fixed     string   `json:"fixed"`
	Vat       string   `json:"vat"`
	Endpoint  string   `json:"endpoint"`
}

func NewProvidersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := providerIds()
		entries := make([]providerListEntry, len(ids))
		for i, id := range ids {
			preset := providerPresets[id]
			vat := "auto"
			if !preset.AutoVat {
				vat = fmt.Sprintf("%d%%", int(preset.Vat*100+0.5))
			}

			countries := make([]string, len(preset.Countries))
			for j, c := range preset.Countries {
				countries[j] = strings.ToUpper(c)
			}

			entries[i] = providerListEntry{
				Id:        id,
				Name:      preset.Name,
				Countries: countries,
				Fixed:     fmt.Sprintf("€%.3f/kWh", preset.FixedMarkup),
				Vat:       vat,
				Endpoint:  fmt.Sprintf("/api/providers/%s/{country}", id),
			}
		}

		writeJSON(w, http.StatusOK, struct {
			Status string              `json:"status"`
			Data   []providerListEntry `json:"data"`
			Total  int                 `json:"total"`
		}{
			Status: "success",
			Data:   entries,
			Total:  len(entries),
		})
	}
}

// NewProviderPresetHandler serves today's prices for a provider's markup
// scheme in one of its countries. Each preset gets its own literal route, the
// country comes from the path.
func NewProviderPresetHandler(logger *slog.Logger, svc *prices.Service, providerId string) http.HandlerFunc {
	preset := providerPresets[providerId]

	return func(w http.ResponseWriter, r *http.Request) {
		countryCode := strings.ToLower(r.PathValue("country"))

		if !slices.Contains(preset.Countries, countryCode) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("provider '%s' not available in %s, available countries: %s",
					providerId, strings.ToUpper(countryCode), strings.ToUpper(strings.Join(preset.Countries, ", "))))
			return
		}

		res, err := svc.GetWindow(r.Context(), countryCode, window.Today, 0, time.Now(), preset.markupConfig())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		body := buildPriceResponse(res)
		body.Provider = preset.Name
		writeJSON(w, http.StatusOK, body)
	}
}
