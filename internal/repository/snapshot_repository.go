package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SnapshotRepository persists the raw signal triples exactly as fetched, so
// any insight can be re-derived and re-audited later.
type SnapshotRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSnapshotRepository(pool PgxPool, tracer trace.Tracer) *SnapshotRepository {
	return &SnapshotRepository{pool: pool, tracer: tracer}
}

func (r *SnapshotRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "snapshot-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS signal_snapshots (
			id BIGSERIAL PRIMARY KEY,
			market TEXT NOT NULL,
			regime JSONB,
			smart_money JSONB,
			sector_rotation JSONB,
			captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_signal_snapshots_market_captured
			ON signal_snapshots (market, captured_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("migrate signal_snapshots: %w", err)
	}
	return nil
}

// InsertSnapshot stores one cycle's signals and returns the snapshot with its
// assigned ID. Absent signals persist as NULL columns.
func (r *SnapshotRepository) InsertSnapshot(ctx context.Context, snapshot *domain.SignalSnapshot) (*domain.SignalSnapshot, error) {
	_, span := r.tracer.Start(ctx, "snapshot-repo.insert-snapshot")
	defer span.End()

	regime, err := marshalNullable(snapshot.Regime)
	if err != nil {
		return nil, fmt.Errorf("encode regime: %w", err)
	}
	smart, err := marshalNullable(snapshot.SmartMoney)
	if err != nil {
		return nil, fmt.Errorf("encode smart money: %w", err)
	}
	sector, err := marshalNullable(snapshot.Sector)
	if err != nil {
		return nil, fmt.Errorf("encode sector rotation: %w", err)
	}

	capturedAt := snapshot.CapturedAt.UTC()
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	out := *snapshot
	out.CapturedAt = capturedAt
	err = r.pool.QueryRow(ctx,
		`INSERT INTO signal_snapshots (market, regime, smart_money, sector_rotation, captured_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		snapshot.Market, regime, smart, sector, capturedAt,
	).Scan(&out.ID)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot for %s: %w", snapshot.Market, err)
	}
	return &out, nil
}

// GetLatestSnapshot returns the most recent snapshot for a market, or nil
// when none has been captured yet.
func (r *SnapshotRepository) GetLatestSnapshot(ctx context.Context, market string) (*domain.SignalSnapshot, error) {
	_, span := r.tracer.Start(ctx, "snapshot-repo.get-latest-snapshot")
	defer span.End()

	var (
		out        domain.SignalSnapshot
		regimeRaw  []byte
		smartRaw   []byte
		sectorRaw  []byte
		capturedAt time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, market, regime, smart_money, sector_rotation, captured_at
		 FROM signal_snapshots
		 WHERE market = $1
		 ORDER BY captured_at DESC
		 LIMIT 1`,
		market,
	).Scan(&out.ID, &out.Market, &regimeRaw, &smartRaw, &sectorRaw, &capturedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot for %s: %w", market, err)
	}

	out.CapturedAt = capturedAt.UTC()
	if err := unmarshalNullable(regimeRaw, &out.Regime); err != nil {
		return nil, fmt.Errorf("decode regime: %w", err)
	}
	if err := unmarshalNullable(smartRaw, &out.SmartMoney); err != nil {
		return nil, fmt.Errorf("decode smart money: %w", err)
	}
	if err := unmarshalNullable(sectorRaw, &out.Sector); err != nil {
		return nil, fmt.Errorf("decode sector rotation: %w", err)
	}
	return &out, nil
}

// PruneSnapshots deletes snapshots older than the cutoff and returns how many
// rows went away. The poller runs this on a slow cadence.
func (r *SnapshotRepository) PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error) {
	_, span := r.tracer.Start(ctx, "snapshot-repo.prune-snapshots")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM signal_snapshots WHERE captured_at < $1`,
		olderThan.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func marshalNullable[T any](ptr *T) ([]byte, error) {
	if ptr == nil {
		return nil, nil
	}
	return json.Marshal(ptr)
}

func unmarshalNullable[T any](raw []byte, dst **T) error {
	if len(raw) == 0 {
		*dst = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}
