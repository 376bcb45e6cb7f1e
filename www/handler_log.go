package www

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/powerhour/spotprices-go/database"
	"github.com/powerhour/spotprices-go/logging"
)

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Attrs     string `json:"attrs,omitempty"`
}

// NewLogHandler exposes the SQLite log sink for operational digging, newest
// entries first.
func NewLogHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			writeError(w, http.StatusServiceUnavailable, "log store not configured")
			return
		}

		page := 1
		if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
			page = p
		}
		pageSize := 25
		if ps, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && ps > 0 {
			pageSize = ps
		}

		minLvl := slog.LevelDebug
		if v := r.URL.Query().Get("level"); v != "" {
			minLvl = logging.LevelFromString(&v)
		}

		rows, err := db.GetLogEntries(r.Context(), minLvl, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		entries := make([]logEntry, len(rows))
		for i, row := range rows {
			entries[i] = logEntry{
				Timestamp: row.Timestamp.UTC().Format(time.RFC3339),
				Level:     slog.Level(row.Level).String(),
				Message:   row.Message,
				Attrs:     row.Attrs,
			}
		}

		writeJSON(w, http.StatusOK, struct {
			Status   string     `json:"status"`
			Page     int        `json:"page"`
			PageSize int        `json:"pageSize"`
			Data     []logEntry `json:"data"`
		}{
			Status:   "success",
			Page:     page,
			PageSize: pageSize,
			Data:     entries,
		})
	}
}
