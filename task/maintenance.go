package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/powerhour/spotprices-go/config"
	"github.com/powerhour/spotprices-go/database"
	"github.com/powerhour/spotprices-go/prices"
)

// NewMaintenanceTask builds the nightly cleanup: drop expired cache entries
// and bound the log table.
func NewMaintenanceTask(logger *slog.Logger, svc *prices.Service, db *database.Database, cnfg *config.AppConfig) func() {
	return func() {
		logger.Debug("running maintenance task...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		removed := svc.SweepCache()

		if db != nil {
			if err := db.PurgeLog(ctx, cnfg.Logging.GetDbMaxEntries()); err != nil {
				logger.Error("maintenance task error", slog.Any("error", err))
			}
		}

		logger.Info("maintenance task done", slog.Int("cacheEntriesRemoved", removed))
	}
}
