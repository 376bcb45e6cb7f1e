package www

import (
	"net/http"
	"time"

	"github.com/powerhour/spotprices-go/cache"
	"github.com/powerhour/spotprices-go/country"
	"github.com/powerhour/spotprices-go/prices"
)

type healthResponse struct {
	Status             string      `json:"status"`
	Timestamp          string      `json:"timestamp"`
	SupportedCountries int         `json:"supportedCountries"`
	Cache              cache.Stats `json:"cache"`
}

func NewHealthHandler(svc *prices.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:             "healthy",
			Timestamp:          time.Now().UTC().Format(time.RFC3339),
			SupportedCountries: len(country.All()),
			Cache:              svc.CacheStats(),
		})
	}
}
