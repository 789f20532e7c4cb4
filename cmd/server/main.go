package main

import (
	"context"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hataichanokpan-dev/fonpick/internal/bot"
	"github.com/hataichanokpan-dev/fonpick/internal/cache"
	"github.com/hataichanokpan-dev/fonpick/internal/config"
	"github.com/hataichanokpan-dev/fonpick/internal/db"
	"github.com/hataichanokpan-dev/fonpick/internal/handler"
	"github.com/hataichanokpan-dev/fonpick/internal/job"
	"github.com/hataichanokpan-dev/fonpick/internal/provider"
	"github.com/hataichanokpan-dev/fonpick/internal/repository"
	"github.com/hataichanokpan-dev/fonpick/internal/service"
	"github.com/hataichanokpan-dev/fonpick/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "github.com/hataichanokpan-dev/fonpick/docs"
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
	newInsightCacheFunc    = cache.NewInsightCache
	newInsightServiceFunc  = service.NewInsightService
	newInsightPollerFunc   = job.NewInsightPoller
	startPollerFunc        = func(p *job.InsightPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Fonpick API
// @version         1.0
// @description     Deterministic market verdicts from regime, smart money, and sector rotation signals.

// @host      localhost:8080
// @BasePath  /
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
	if db.Pool != nil {
		if err := snapshotRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run snapshot migrations: %v", err)
		}
		if err := insightRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run insight migrations: %v", err)
		}
	}

	analytics := newProviderFunc(cfg.AnalyticsBaseURL, tracer)
	insightCache := newInsightCacheFunc(cache.Client, time.Duration(cfg.CacheTTLSecs)*time.Second)
	insightService := newInsightServiceFunc(tracer, analytics, snapshotRepo, insightRepo, insightCache, cfg.Thresholds)

	alerts := startTelegramBotFunc(cfg.TelegramBotToken, insightService)

	poller := newInsightPollerFunc(tracer, insightService, alerts, cfg.Markets, time.Duration(cfg.InsightPollSecs)*time.Second)
	if db.Pool != nil && cfg.SnapshotRetentionDays > 0 {
		poller.EnableRetention(snapshotRepo, time.Duration(cfg.SnapshotRetentionDays)*24*time.Hour)
	}
	startPollerFunc(poller, ctx)

	h := newHandlerFunc(tracer, insightService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("fonpick"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    httpAddrFromEnv(),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func httpAddrFromEnv() string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
