package www

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/powerhour/spotprices-go/prices"
	"github.com/powerhour/spotprices-go/window"
)

// NewWindowHandler serves the calendar and span price endpoints. The window
// kind is fixed per route, the country comes from the path.
func NewWindowHandler(logger *slog.Logger, svc *prices.Service, kind window.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		countryCode := r.PathValue("country")
		cnfg, err := markupFromQuery(r.URL)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := svc.GetWindow(r.Context(), countryCode, kind, 0, time.Now(), cnfg)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, buildPriceResponse(res))
	}
}

// NewNextHoursHandler serves /api/{country}/next/{hours}. The hour count is
// validated by the window resolver, not here.
func NewNextHoursHandler(logger *slog.Logger, svc *prices.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		countryCode := r.PathValue("country")
		n, err := strconv.Atoi(r.PathValue("hours"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "hours must be a number")
			return
		}

		cnfg, err := markupFromQuery(r.URL)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := svc.GetWindow(r.Context(), countryCode, window.NextN, n, time.Now(), cnfg)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, buildPriceResponse(res))
	}
}
