package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

type MarketRefresher interface {
	RefreshMarket(ctx context.Context, market string) (*domain.InsightRecord, error)
}

type AlertSink interface {
	NotifyInsight(record *domain.InsightRecord)
}

type SnapshotPruner interface {
	PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error)
}

// InsightPoller refreshes every configured market on a fixed cadence and
// forwards critical-conflict verdicts to the alert dispatcher.
type InsightPoller struct {
	tracer    trace.Tracer
	service   MarketRefresher
	alerts    AlertSink
	markets   []string
	interval  time.Duration
	pruner    SnapshotPruner
	retention time.Duration
}

func NewInsightPoller(tracer trace.Tracer, service MarketRefresher, alerts AlertSink, markets []string, interval time.Duration) *InsightPoller {
	if len(markets) == 0 {
		markets = domain.SupportedMarkets
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &InsightPoller{
		tracer:   tracer,
		service:  service,
		alerts:   alerts,
		markets:  markets,
		interval: interval,
	}
}

// EnableRetention makes each sweep also delete raw snapshots older than
// retention.
func (p *InsightPoller) EnableRetention(pruner SnapshotPruner, retention time.Duration) {
	p.pruner = pruner
	p.retention = retention
}

// Start blocks until ctx is cancelled.
func (p *InsightPoller) Start(ctx context.Context) {
	if p.service == nil {
		log.Println("Insight poller disabled: no insight service")
		<-ctx.Done()
		return
	}

	log.Printf("Insight poller starting for %v every %s", p.markets, p.interval)
	p.refreshAll(ctx)
	p.pruneOld(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Insight poller stopped")
			return
		case <-ticker.C:
			p.refreshAll(ctx)
			p.pruneOld(ctx)
		}
	}
}

func (p *InsightPoller) refreshAll(ctx context.Context) {
	_, span := p.tracer.Start(ctx, "insight-poller.refresh-all")
	defer span.End()

	for _, market := range p.markets {
		record, err := p.service.RefreshMarket(ctx, market)
		if err != nil {
			log.Printf("insight refresh error for %s: %v", market, err)
			continue
		}
		if record == nil {
			continue
		}
		if record.Detection.HasCriticalConflict && p.alerts != nil {
			p.alerts.NotifyInsight(record)
		}
	}
}

func (p *InsightPoller) pruneOld(ctx context.Context) {
	if p.pruner == nil || p.retention <= 0 {
		return
	}

	_, span := p.tracer.Start(ctx, "insight-poller.prune-snapshots")
	defer span.End()

	removed, err := p.pruner.PruneSnapshots(ctx, time.Now().Add(-p.retention))
	if err != nil {
		log.Printf("snapshot prune error: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Pruned %d signal snapshots older than %s", removed, p.retention)
	}
}
