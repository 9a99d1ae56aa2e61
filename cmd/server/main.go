package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"shopstats/internal/api"
	"shopstats/internal/config"
	"shopstats/internal/engine"
	"shopstats/internal/logging"
	"shopstats/internal/render"
	"time"

	"github.com/labstack/gommon/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to read .env", slog.Any("err", err))
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// The API is live immediately and answers 503 until the data is published.
	h := api.NewHandler(nil, render.Size{Width: cfg.ChartWidth, Height: cfg.ChartHeight})
	e := api.NewServer(h, logger, cfg.RateLimit)
	e.Logger.SetLevel(echoLevel(cfg.LogLevel))

	cache := engine.NewCache(engine.RetailSchema)
	go func() {
		logger.Info("loading dataset in background", slog.String("path", cfg.DataPath))
		t0 := time.Now()

		store, err := cache.Load(cfg.DataPath)
		if err != nil {
			logger.Error("dataset unavailable", slog.String("path", cfg.DataPath), slog.Any("err", err))
			os.Exit(1)
		}
		h.SetStore(store)

		logger.Info("dataset ready", slog.Int("rows", store.Rows()), slog.Duration("took", time.Since(t0)))
	}()

	logger.Info("http server listening", slog.String("addr", cfg.BindAddr))
	if err := e.Start(cfg.BindAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server error", slog.Any("err", err))
		os.Exit(1)
	}
}

func echoLevel(level string) log.Lvl {
	switch logging.ParseLevel(level) {
	case slog.LevelDebug:
		return log.DEBUG
	case slog.LevelWarn:
		return log.WARN
	case slog.LevelError:
		return log.ERROR
	}
	return log.INFO
}
