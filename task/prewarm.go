package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/powerhour/spotprices-go/config"
	"github.com/powerhour/spotprices-go/markup"
	"github.com/powerhour/spotprices-go/mqttpub"
	"github.com/powerhour/spotprices-go/prices"
	"github.com/powerhour/spotprices-go/window"
)

// NewPrewarmTask builds the hourly task that fetches the next-24h window for
// the configured countries ahead of traffic. When an MQTT publisher is given
// it also pushes each country's current-hour price.
func NewPrewarmTask(logger *slog.Logger, svc *prices.Service, pub *mqttpub.Publisher, cnfg config.AppConfigPrewarm) func() {
	return func() { runPrewarmTask(logger, svc, pub, cnfg) }
}

func runPrewarmTask(logger *slog.Logger, svc *prices.Service, pub *mqttpub.Publisher, cnfg config.AppConfigPrewarm) {
	if len(cnfg.Countries) == 0 {
		logger.Debug("no prewarm countries configured")
		return
	}

	logger.Debug("running prewarm task...")
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	warmed := 0
	for _, code := range cnfg.Countries {
		// Today and next-24h have different fetch ranges (midnight-anchored
		// vs hour-anchored), so both cache entries need warming.
		if _, err := svc.GetWindow(ctx, code, window.Today, 0, time.Now(), markup.Config{}); err != nil {
			logger.Error("prewarm fetch failed", slog.String("country", code), slog.Any("error", err))
			continue
		}

		res, err := svc.GetWindow(ctx, code, window.Next24h, 0, time.Now(), markup.Config{})
		if err != nil {
			logger.Error("prewarm fetch failed", slog.String("country", code), slog.Any("error", err))
			continue
		}
		warmed++

		if pub == nil || len(res.Points) == 0 {
			continue
		}
		// The first point of the next-24h window is the running hour.
		if err := pub.PublishCurrentPrice(res.Profile.Code, res.Profile.Currency, res.Points[0]); err != nil {
			logger.Error("publishing current price failed", slog.String("country", code), slog.Any("error", err))
		}
	}

	logger.Info("prewarm task done", slog.Int("countries", warmed))
}
