package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"MarketSentiment/internal/analyze"
	"MarketSentiment/internal/api"
	"MarketSentiment/internal/config"
	"MarketSentiment/internal/fetch"
	"MarketSentiment/internal/infrastructure/ml"
	"MarketSentiment/internal/infrastructure/scheduler"
	"MarketSentiment/internal/infrastructure/source"
	"MarketSentiment/internal/infrastructure/storage"
	"MarketSentiment/internal/infrastructure/trend"
	"MarketSentiment/internal/logging"
	"MarketSentiment/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.SQLiteRepository
	pipeline  *usecase.Pipeline
	runner    *usecase.Runner
	scheduler *usecase.Scheduler
	server    *api.Server
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open article store: %w", err)
	}

	registry := fetch.NewRegistry()
	registry.Register(source.NewRSSFetcher())
	registry.Register(source.NewHTMLFetcher(nil))

	src := source.NewMultiSource(registry, cfg.Sources, baseLogger.With("component", "source"))

	classifier := ml.NewClient(cfg.Classifier.Endpoint, cfg.Classifier.APIKey)
	analyzer := analyze.New(classifier, cfg.Classifier.MaxTextRunes, baseLogger.With("component", "analyze"))

	recorder := trend.NewRecorder(filepath.Join(cfg.Outputs.Dir, cfg.Outputs.TrendFile))
	archive := trend.NewArchive(filepath.Join(cfg.Outputs.Dir, cfg.Outputs.ArchiveFile))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   src,
		Store:    store,
		Analyzer: analyzer,
		Trend:    recorder,
		Archive:  archive,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	runner := usecase.NewRunner(pipeline, cfg.Scheduler.CycleTimeoutDuration(), baseLogger.With("component", "runner"))

	sched := usecase.NewScheduler(
		scheduler.NewIntervalScheduler(cfg.Scheduler.IntervalDuration()),
		runner,
		baseLogger.With("component", "scheduler"),
	)

	server := api.NewServer(store, recorder, runner, baseLogger.With("component", "api"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		pipeline:  pipeline,
		runner:    runner,
		scheduler: sched,
		server:    server,
	}, nil
}

// RunOnce executes a single pipeline cycle and returns its report.
func (a *Application) RunOnce(ctx context.Context) error {
	report, err := a.runner.RunOnce(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("cycle complete",
		"found", report.Found,
		"added", report.Added,
		"skipped", report.Skipped,
		"companies", len(report.CompanyScores))
	return nil
}

// Backfill classifies stored articles that never received a sentiment.
func (a *Application) Backfill(ctx context.Context) error {
	n, err := a.pipeline.ClassifyPending(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("backfill complete", "classified", n)
	return nil
}

// Serve starts the periodic scheduler and the read API, blocking until the
// context is cancelled or the listener fails.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.logger.Info("listening", "addr", a.cfg.Server.Addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		a.stopScheduler()
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.stopScheduler()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close releases held resources.
func (a *Application) Close() error {
	return a.store.Close()
}

func (a *Application) stopScheduler() {
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("stop scheduler", "error", err)
	}
}
