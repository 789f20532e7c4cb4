package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
	"github.com/hataichanokpan-dev/fonpick/internal/insight"
)

type SignalProvider interface {
	FetchSignals(ctx context.Context, market string) (*domain.SignalSnapshot, error)
}

type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, snapshot *domain.SignalSnapshot) (*domain.SignalSnapshot, error)
	GetLatestSnapshot(ctx context.Context, market string) (*domain.SignalSnapshot, error)
}

type InsightStore interface {
	InsertInsight(ctx context.Context, record *domain.InsightRecord) (*domain.InsightRecord, error)
	GetLatestInsight(ctx context.Context, market string) (*domain.InsightRecord, error)
	ListInsights(ctx context.Context, filter domain.InsightFilter) ([]domain.InsightRecord, error)
}

type InsightCache interface {
	SetLatest(ctx context.Context, record *domain.InsightRecord) error
	GetLatest(ctx context.Context, market string) (*domain.InsightRecord, error)
}

// InsightService orchestrates one analysis cycle: fetch the upstream signals,
// persist the raw snapshot, run detection and resolution, persist and cache
// the verdict. It also serves all reads for the API, bot, MCP and TUI.
type InsightService struct {
	tracer       trace.Tracer
	provider     SignalProvider
	snapshotRepo SnapshotStore
	insightRepo  InsightStore
	cache        InsightCache
	detector     *insight.Detector
	resolver     *insight.Resolver
}

func NewInsightService(
	tracer trace.Tracer,
	provider SignalProvider,
	snapshotRepo SnapshotStore,
	insightRepo InsightStore,
	cache InsightCache,
	th insight.Thresholds,
) *InsightService {
	return &InsightService{
		tracer:       tracer,
		provider:     provider,
		snapshotRepo: snapshotRepo,
		insightRepo:  insightRepo,
		cache:        cache,
		detector:     insight.NewDetector(th),
		resolver:     insight.NewResolver(th),
	}
}

// RefreshMarket runs a full cycle for one market. It returns (nil, nil) when
// the upstream delivered no signals at all; an unresolvable cycle is not an
// error and nothing gets persisted beyond the raw snapshot.
func (s *InsightService) RefreshMarket(ctx context.Context, market string) (*domain.InsightRecord, error) {
	_, span := s.tracer.Start(ctx, "insight-service.refresh-market")
	defer span.End()

	if s.provider == nil || s.snapshotRepo == nil || s.insightRepo == nil {
		return nil, fmt.Errorf("insight service is not fully initialized")
	}

	market, err := normalizeMarket(market)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.provider.FetchSignals(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("fetch signals: %w", err)
	}

	snapshot, err = s.snapshotRepo.InsertSnapshot(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	detection := s.detector.Detect(snapshot.Regime, snapshot.SmartMoney, snapshot.Sector)
	resolved := s.resolver.ResolveDetected(snapshot.Regime, snapshot.SmartMoney, snapshot.Sector, detection)
	if resolved == nil {
		log.Printf("no signals available for %s, skipping insight", market)
		return nil, nil
	}

	record, err := s.insightRepo.InsertInsight(ctx, &domain.InsightRecord{
		SnapshotID: snapshot.ID,
		Market:     market,
		Insight:    *resolved,
		Detection:  detection,
	})
	if err != nil {
		return nil, fmt.Errorf("persist insight: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, record); err != nil {
			log.Printf("cache insight for %s: %v", market, err)
		}
	}
	return record, nil
}

// LatestInsight serves the cache fast path and falls back to Postgres,
// backfilling the cache on a miss. Returns (nil, nil) when the market has no
// resolved insight yet.
func (s *InsightService) LatestInsight(ctx context.Context, market string) (*domain.InsightRecord, error) {
	_, span := s.tracer.Start(ctx, "insight-service.latest-insight")
	defer span.End()

	market, err := normalizeMarket(market)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.GetLatest(ctx, market)
		if err != nil {
			log.Printf("cache read for %s: %v", market, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	if s.insightRepo == nil {
		return nil, fmt.Errorf("insight service is not fully initialized")
	}
	record, err := s.insightRepo.GetLatestInsight(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("load latest insight: %w", err)
	}
	if record != nil && s.cache != nil {
		if err := s.cache.SetLatest(ctx, record); err != nil {
			log.Printf("cache backfill for %s: %v", market, err)
		}
	}
	return record, nil
}

// LatestConflicts returns the detection result behind the latest insight, or
// nil when the market has none.
func (s *InsightService) LatestConflicts(ctx context.Context, market string) (*domain.ConflictDetectionResult, error) {
	_, span := s.tracer.Start(ctx, "insight-service.latest-conflicts")
	defer span.End()

	record, err := s.LatestInsight(ctx, market)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	detection := record.Detection
	return &detection, nil
}

// ListInsights returns verdict history, newest first.
func (s *InsightService) ListInsights(ctx context.Context, filter domain.InsightFilter) ([]domain.InsightRecord, error) {
	_, span := s.tracer.Start(ctx, "insight-service.list-insights")
	defer span.End()

	if s.insightRepo == nil {
		return nil, fmt.Errorf("insight service is not fully initialized")
	}

	if filter.Market != "" {
		market, err := normalizeMarket(filter.Market)
		if err != nil {
			return nil, err
		}
		filter.Market = market
	}
	if filter.Verdict != "" && !filter.Verdict.IsValid() {
		return nil, fmt.Errorf("invalid verdict: %s", filter.Verdict)
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	return s.insightRepo.ListInsights(ctx, filter)
}

// Evaluate runs detection and resolution on caller-supplied signals without
// touching storage. The MCP resolve tool uses this path.
func (s *InsightService) Evaluate(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal) (*domain.DataInsight, domain.ConflictDetectionResult) {
	detection := s.detector.Detect(regime, smart, sector)
	return s.resolver.ResolveDetected(regime, smart, sector, detection), detection
}

func normalizeMarket(market string) (string, error) {
	market = strings.ToUpper(strings.TrimSpace(market))
	if !domain.IsSupportedMarket(market) {
		return "", fmt.Errorf("unsupported market: %s", market)
	}
	return market, nil
}
