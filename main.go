package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/powerhour/spotprices-go/cache"
	"github.com/powerhour/spotprices-go/config"
	"github.com/powerhour/spotprices-go/database"
	"github.com/powerhour/spotprices-go/entsoe"
	"github.com/powerhour/spotprices-go/logging"
	"github.com/powerhour/spotprices-go/mqttpub"
	"github.com/powerhour/spotprices-go/prices"
	"github.com/powerhour/spotprices-go/stekker"
	"github.com/powerhour/spotprices-go/task"
	"github.com/powerhour/spotprices-go/types"
	"github.com/powerhour/spotprices-go/www"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("spotprices is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	sources := []types.PriceSource{
		stekker.New(), // Primary source
	}
	if es := entsoe.New(cnfg.Upstream.EntsoeToken); es.Enabled() {
		sources = append(sources, es) // Secondary source
	} else {
		logger.Info("no entso-e token configured, running on stekker only")
	}

	priceCache := cache.New(cnfg.Cache.GetTTL())
	svc := prices.NewService(logger.With("module", "prices"), priceCache, sources...)

	var pub *mqttpub.Publisher
	if cnfg.Mqtt.Enabled() {
		pub = mqttpub.New(cnfg.Mqtt)
		if err := pub.Connect(); err != nil {
			panic(fmt.Sprintf("mqtt connection error: %v", err))
		}
		defer pub.Disconnect()
	}

	tasks := task.NewTasks(svc, db, pub, cnfg)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server := www.StartServer(svc, db, cnfg.Api)
	server.Run(ctx)
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	if syncer, ok := logger.Handler().(interface{ Sync() error }); ok {
		if syncErr := syncer.Sync(); syncErr != nil {
			logger.Error("failed to flush logger", slog.Any("error", syncErr))
		}
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
