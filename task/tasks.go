package task

import (
	"context"
	"log/slog"

	"github.com/powerhour/spotprices-go/config"
	"github.com/powerhour/spotprices-go/database"
	"github.com/powerhour/spotprices-go/mqttpub"
	"github.com/powerhour/spotprices-go/prices"
	"github.com/robfig/cron/v3"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	PrewarmTask     func()
	MaintenanceTask func()
}

func NewTasks(svc *prices.Service, db *database.Database, pub *mqttpub.Publisher, cnfg *config.AppConfig) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		PrewarmTask:     NewPrewarmTask(logger.With(slog.String("task", "prewarm")), svc, pub, cnfg.Prewarm),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), svc, db, cnfg),
	}
}

func (t *Tasks) Run() {
	if _, err := t.cron.AddFunc(t.cnfg.Prewarm.GetRunAt(), t.PrewarmTask); err != nil {
		panic(err)
	}
	if _, err := t.cron.AddFunc("30 2 * * *", t.MaintenanceTask); err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
