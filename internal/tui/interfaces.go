package tui

import (
	"context"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// InsightQuerier provides resolved verdicts to the TUI.
type InsightQuerier interface {
	LatestInsight(ctx context.Context, market string) (*domain.InsightRecord, error)
	LatestConflicts(ctx context.Context, market string) (*domain.ConflictDetectionResult, error)
	ListInsights(ctx context.Context, filter domain.InsightFilter) ([]domain.InsightRecord, error)
}

// SnapshotQuerier provides raw signal snapshots to the TUI.
type SnapshotQuerier interface {
	GetLatestSnapshot(ctx context.Context, market string) (*domain.SignalSnapshot, error)
}

// Services bundles all service dependencies injected into the TUI.
type Services struct {
	Insights  InsightQuerier
	Snapshots SnapshotQuerier
	Markets   []string
}

// MarketAt returns the market at index i, defaulting to SET when the
// configured list is empty.
func (s Services) MarketAt(i int) string {
	markets := s.Markets
	if len(markets) == 0 {
		markets = domain.SupportedMarkets
	}
	if i < 0 || i >= len(markets) {
		return markets[0]
	}
	return markets[i]
}

// MarketCount returns the number of selectable markets.
func (s Services) MarketCount() int {
	if len(s.Markets) == 0 {
		return len(domain.SupportedMarkets)
	}
	return len(s.Markets)
}
