package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hataichanokpan-dev/fonpick/internal/cache"
	"github.com/hataichanokpan-dev/fonpick/internal/config"
	"github.com/hataichanokpan-dev/fonpick/internal/domain"
	"github.com/hataichanokpan-dev/fonpick/internal/insight"
	mcpserver "github.com/hataichanokpan-dev/fonpick/internal/mcp"
	"github.com/hataichanokpan-dev/fonpick/internal/repository"
	"github.com/hataichanokpan-dev/fonpick/internal/service"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainMCPStdio(t *testing.T) {
	restore := stubMCPDeps(t, "stdio")
	defer restore()

	called := false
	origRunStdio := runStdioFunc
	runStdioFunc = func(ctx context.Context, server *sdkmcp.Server) error {
		called = true
		return nil
	}
	defer func() { runStdioFunc = origRunStdio }()

	main()

	if !called {
		t.Fatal("expected stdio transport to run")
	}
}

func TestMainMCPHTTP(t *testing.T) {
	restore := stubMCPDeps(t, "http")
	defer restore()

	httpStarted := false
	started := make(chan struct{})
	origStartHTTP := startHTTPServerFunc
	origNotify := setupSignalNotify
	origWait := waitForSignalFunc
	origShutdown := shutdownHTTPServerFn

	startHTTPServerFunc = func(*http.Server) error {
		httpStarted = true
		close(started)
		return http.ErrServerClosed
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) { <-started }
	shutdownHTTPServerFn = func(*http.Server, context.Context) error { return nil }

	defer func() {
		startHTTPServerFunc = origStartHTTP
		setupSignalNotify = origNotify
		waitForSignalFunc = origWait
		shutdownHTTPServerFn = origShutdown
	}()

	main()

	if !httpStarted {
		t.Fatal("expected http transport to start")
	}
}

func TestMainMCPHTTPRequiresToken(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &config.Config{
		MCPHTTPEnabled: true,
		MCPHTTPBind:    "127.0.0.1",
		MCPHTTPPort:    8090,
	}
	srv := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test"}, nil)

	err := runHTTPMode(ctx, cancel, cfg, srv)
	if err == nil {
		t.Fatal("expected missing token error")
	}
	if !strings.Contains(err.Error(), "MCP_AUTH_TOKEN is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func stubMCPDeps(t *testing.T, transport string) func() {
	t.Helper()

	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewSnapshotRepo := newSnapshotRepoFn
	origNewInsightRepo := newInsightRepoFn
	origNewProvider := newProviderFunc
	origNewInsightCache := newInsightCacheFunc
	origNewInsightService := newInsightServiceFunc
	origNewMCPServer := newMCPServerFunc
	origNewMCPHandler := newMCPHandlerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			Markets:               []string{"SET"},
			InsightPollSecs:       1,
			CacheTTLSecs:          1,
			Thresholds:            insight.DefaultThresholds(),
			MCPTransport:          transport,
			MCPHTTPEnabled:        true,
			MCPHTTPBind:           "127.0.0.1",
			MCPHTTPPort:           8090,
			MCPAuthToken:          "secret",
			MCPRequestTimeoutSecs: 1,
			MCPRateLimitPerMin:    60,
		}
	}
	initPostgresFunc = func(context.Context, string) {}
	initRedisFunc = func(context.Context, string) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newSnapshotRepoFn = func(repository.PgxPool, trace.Tracer) *repository.SnapshotRepository {
		return nil
	}
	newInsightRepoFn = func(repository.PgxPool, trace.Tracer) *repository.InsightRepository {
		return nil
	}
	newProviderFunc = func(string, trace.Tracer) service.SignalProvider { return stubMCPSignalProvider{} }
	newInsightCacheFunc = func(client *redis.Client, ttl time.Duration) *cache.InsightCache {
		return cache.NewInsightCache(nil, ttl)
	}
	newInsightServiceFunc = func(
		trace.Tracer,
		service.SignalProvider,
		service.SnapshotStore,
		service.InsightStore,
		service.InsightCache,
		insight.Thresholds,
	) *service.InsightService {
		return nil
	}
	newMCPServerFunc = func(trace.Tracer, mcpserver.InsightReader, mcpserver.InsightResolver, mcpserver.ServerConfig) *sdkmcp.Server {
		return sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test-mcp"}, nil)
	}
	newMCPHandlerFunc = func(server *sdkmcp.Server, cfg mcpserver.HTTPHandlerConfig) http.Handler {
		return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newSnapshotRepoFn = origNewSnapshotRepo
		newInsightRepoFn = origNewInsightRepo
		newProviderFunc = origNewProvider
		newInsightCacheFunc = origNewInsightCache
		newInsightServiceFunc = origNewInsightService
		newMCPServerFunc = origNewMCPServer
		newMCPHandlerFunc = origNewMCPHandler
	}
}

type stubMCPSignalProvider struct{}

func (stubMCPSignalProvider) FetchSignals(ctx context.Context, market string) (*domain.SignalSnapshot, error) {
	return &domain.SignalSnapshot{Market: market}, nil
}
