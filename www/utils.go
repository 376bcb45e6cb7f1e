package www

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/powerhour/spotprices-go/markup"
	"github.com/powerhour/spotprices-go/prices"
)

// markupFromQuery reads the retail pricing knobs from the query string.
// "markup" is the short form of "fixedMarkup" and takes precedence. Absent
// parameters keep their defaults; present but unparsable ones are a
// validation error, never silently corrected.
func markupFromQuery(u *url.URL) (markup.Config, error) {
	q := u.Query()

	parseFloat := func(key string) (float64, error) {
		v := q.Get(key)
		if v == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %q", key, v)
		}
		return f, nil
	}

	fixed, err := parseFloat("markup")
	if err != nil {
		return markup.Config{}, err
	}
	fixedLong, err := parseFloat("fixedMarkup")
	if err != nil {
		return markup.Config{}, err
	}
	if fixed == 0 {
		fixed = fixedLong
	}

	variable, err := parseFloat("variableMarkup")
	if err != nil {
		return markup.Config{}, err
	}
	vat, err := parseFloat("vat")
	if err != nil {
		return markup.Config{}, err
	}

	roundTo := markup.DefaultRoundTo
	if v := q.Get("roundTo"); v != "" {
		roundTo, err = strconv.Atoi(v)
		if err != nil {
			return markup.Config{}, fmt.Errorf("invalid roundTo: %q", v)
		}
	}

	return markup.Config{
		FixedMarkup:    fixed,
		VariableMarkup: variable,
		Vat:            vat,
		AutoVat:        q.Get("autoVat") == "true",
		RoundTo:        roundTo,
	}, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Status: "error", Message: message})
}

// writeServiceError maps the service error taxonomy onto HTTP status codes:
// validation problems are the caller's fault, upstream failures are a bad
// gateway, everything else is internal.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var vErr *prices.ValidationError
	var fErr *prices.FetchError

	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Msg)
	case errors.As(err, &fErr):
		logger.Error("upstream fetch failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, fErr.Error())
	default:
		logger.Error("request failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
