package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// InsightRepository persists resolved insights with their full detection
// payload so history queries can show which conflicts drove each verdict.
type InsightRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewInsightRepository(pool PgxPool, tracer trace.Tracer) *InsightRepository {
	return &InsightRepository{pool: pool, tracer: tracer}
}

func (r *InsightRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "insight-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS insights (
			id BIGSERIAL PRIMARY KEY,
			snapshot_id BIGINT NOT NULL,
			market TEXT NOT NULL,
			verdict TEXT NOT NULL,
			conflict_level TEXT NOT NULL,
			insight JSONB NOT NULL,
			detection JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_insights_market_created
			ON insights (market, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_insights_verdict
			ON insights (verdict);
	`)
	if err != nil {
		return fmt.Errorf("migrate insights: %w", err)
	}
	return nil
}

// InsertInsight stores one resolved insight and returns the record with its
// assigned ID and creation time.
func (r *InsightRepository) InsertInsight(ctx context.Context, record *domain.InsightRecord) (*domain.InsightRecord, error) {
	_, span := r.tracer.Start(ctx, "insight-repo.insert-insight")
	defer span.End()

	insightJSON, err := json.Marshal(record.Insight)
	if err != nil {
		return nil, fmt.Errorf("encode insight: %w", err)
	}
	detectionJSON, err := json.Marshal(record.Detection)
	if err != nil {
		return nil, fmt.Errorf("encode detection: %w", err)
	}

	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	out := *record
	out.CreatedAt = createdAt
	err = r.pool.QueryRow(ctx,
		`INSERT INTO insights (snapshot_id, market, verdict, conflict_level, insight, detection, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		record.SnapshotID,
		record.Market,
		string(record.Insight.Verdict),
		string(record.Insight.ConflictLevel),
		insightJSON,
		detectionJSON,
		createdAt,
	).Scan(&out.ID)
	if err != nil {
		return nil, fmt.Errorf("insert insight for %s: %w", record.Market, err)
	}
	return &out, nil
}

// GetLatestInsight returns the most recent insight for a market, or nil when
// none has been resolved yet.
func (r *InsightRepository) GetLatestInsight(ctx context.Context, market string) (*domain.InsightRecord, error) {
	_, span := r.tracer.Start(ctx, "insight-repo.get-latest-insight")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT id, snapshot_id, market, insight, detection, created_at
		 FROM insights
		 WHERE market = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		market,
	)
	record, err := scanInsightRow(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest insight for %s: %w", market, err)
	}
	return record, nil
}

// ListInsights returns insight history, newest first, narrowed by the filter.
func (r *InsightRepository) ListInsights(ctx context.Context, filter domain.InsightFilter) ([]domain.InsightRecord, error) {
	_, span := r.tracer.Start(ctx, "insight-repo.list-insights")
	defer span.End()

	args := make([]any, 0, 3)
	var sb strings.Builder
	sb.WriteString(`SELECT id, snapshot_id, market, insight, detection, created_at
		FROM insights
		WHERE 1=1`)

	if filter.Market != "" {
		args = append(args, strings.ToUpper(filter.Market))
		sb.WriteString(fmt.Sprintf(" AND market = $%d", len(args)))
	}
	if filter.Verdict != "" {
		args = append(args, string(filter.Verdict))
		sb.WriteString(fmt.Sprintf(" AND verdict = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.InsightRecord, 0, limit)
	for rows.Next() {
		record, err := scanInsightRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanInsightRow(row pgx.Row) (*domain.InsightRecord, error) {
	var (
		out          domain.InsightRecord
		insightRaw   []byte
		detectionRaw []byte
		createdAt    time.Time
	)
	if err := row.Scan(&out.ID, &out.SnapshotID, &out.Market, &insightRaw, &detectionRaw, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(insightRaw, &out.Insight); err != nil {
		return nil, fmt.Errorf("decode insight payload: %w", err)
	}
	if err := json.Unmarshal(detectionRaw, &out.Detection); err != nil {
		return nil, fmt.Errorf("decode detection payload: %w", err)
	}
	out.CreatedAt = createdAt.UTC()
	return &out, nil
}
