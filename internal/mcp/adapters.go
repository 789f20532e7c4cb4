package mcp

import (
	"context"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// InsightReader exposes read operations over stored verdicts.
type InsightReader interface {
	LatestInsight(ctx context.Context, market string) (*domain.InsightRecord, error)
	LatestConflicts(ctx context.Context, market string) (*domain.ConflictDetectionResult, error)
	ListInsights(ctx context.Context, filter domain.InsightFilter) ([]domain.InsightRecord, error)
}

// InsightResolver resolves caller-supplied signals without touching storage.
type InsightResolver interface {
	Evaluate(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal) (*domain.DataInsight, domain.ConflictDetectionResult)
}
