package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"MarketSentiment/internal/app"
	"MarketSentiment/internal/config"
	"MarketSentiment/internal/logging"
)

func main() {
	once := flag.Bool("once", false, "run a single pipeline cycle and exit")
	backfill := flag.Bool("backfill", false, "classify stored articles without a sentiment and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application init", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *once:
		err = application.RunOnce(ctx)
	case *backfill:
		err = application.Backfill(ctx)
	default:
		err = application.Serve(ctx)
	}
	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
