package main

import (
	"context"
	"log"
	"time"

	"github.com/hataichanokpan-dev/fonpick/internal/cache"
	"github.com/hataichanokpan-dev/fonpick/internal/config"
	"github.com/hataichanokpan-dev/fonpick/internal/db"
	"github.com/hataichanokpan-dev/fonpick/internal/provider"
	"github.com/hataichanokpan-dev/fonpick/internal/repository"
	"github.com/hataichanokpan-dev/fonpick/internal/service"
	"github.com/hataichanokpan-dev/fonpick/internal/tui"
	"github.com/hataichanokpan-dev/fonpick/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	newSnapshotRepoFn = repository.NewSnapshotRepository
	newInsightRepoFn  = repository.NewInsightRepository
	newProviderFunc   = func(baseURL string, tracer trace.Tracer) service.SignalProvider {
		return provider.NewAnalyticsClient(baseURL, tracer)
	}
	newInsightCacheFunc   = cache.NewInsightCache
	newInsightServiceFunc = service.NewInsightService
	runProgramFunc        = func(model tea.Model) error {
		p := tea.NewProgram(model, tea.WithAltScreen())
		_, err := p.Run()
		return err
	}
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	snapshotRepo := newSnapshotRepoFn(db.Pool, tracer)
	insightRepo := newInsightRepoFn(db.Pool, tracer)
	analytics := newProviderFunc(cfg.AnalyticsBaseURL, tracer)
	insightCache := newInsightCacheFunc(cache.Client, time.Duration(cfg.CacheTTLSecs)*time.Second)
	insightService := newInsightServiceFunc(tracer, analytics, snapshotRepo, insightRepo, insightCache, cfg.Thresholds)

	app := tui.NewAppModel(tui.Services{
		Insights:  insightService,
		Snapshots: snapshotRepo,
		Markets:   cfg.Markets,
	})

	if err := runProgramFunc(app); err != nil {
		log.Fatalf("tui exited with error: %v", err)
	}
}
