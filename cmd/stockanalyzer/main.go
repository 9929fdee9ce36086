// Command stockanalyzer is the entry point for the position tracking and
// daily P&L subsystem. It loads configuration, wires dependencies, and runs
// one action per invocation. Exit status is non-zero only when the action
// cannot start: bad flags, an invalid date, or unreachable stores. Partial
// failures inside a run are logged and reported in the summary instead.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yulin9901/stock-analyzer/internal/app"
	"github.com/yulin9901/stock-analyzer/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	action := flag.String("action", app.ActionSellDecision, "action to run: make_sell_decision, calc_pnl, or archive")
	dateStr := flag.String("date", "", "trade date as YYYY-MM-DD (defaults to today)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Reconfigure the logger with the level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	date := time.Now().UTC()
	if *dateStr != "" {
		date, err = time.Parse("2006-01-02", *dateStr)
		if err != nil {
			logger.Error("invalid date, expected YYYY-MM-DD", slog.String("date", *dateStr))
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)
	result, err := application.Run(ctx, *action, date)
	if err != nil {
		logger.Error("action failed to run",
			slog.String("action", *action),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("action finished",
		slog.String("action", *action),
		slog.Bool("success", result.OK),
		slog.String("summary", result.Summary),
	)
}
