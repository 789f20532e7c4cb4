package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

func testInsightRecord() *domain.InsightRecord {
	return &domain.InsightRecord{
		SnapshotID: 3,
		Market:     "SET",
		Insight: domain.DataInsight{
			Verdict:       domain.VerdictWait,
			Confidence:    35,
			Conviction:    domain.ConvictionLow,
			PrimaryDriver: domain.DriverNone,
			ConflictLevel: domain.SeverityHigh,
		},
		Detection: domain.ConflictDetectionResult{
			Conflicts: []domain.Conflict{{
				Type:     domain.ConflictPropNoise,
				Severity: domain.SeverityHigh,
			}},
			ConflictLevel:       domain.SeverityHigh,
			HasCriticalConflict: true,
		},
	}
}

func TestInsightRunMigrationsExecutesSchema(t *testing.T) {
	pool := &insightStubPool{}
	repo := NewInsightRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) == 0 {
		t.Fatal("expected Exec to be called")
	}
}

func TestInsightInsertAssignsID(t *testing.T) {
	pool := &insightStubPool{rowData: []any{int64(11)}}
	repo := NewInsightRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	out, err := repo.InsertInsight(context.Background(), testInsightRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != 11 {
		t.Fatalf("expected assigned id 11, got %d", out.ID)
	}
	if out.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be filled")
	}
	if len(pool.queryRowArgs) != 7 {
		t.Fatalf("expected 7 insert args, got %d", len(pool.queryRowArgs))
	}
	if pool.queryRowArgs[2] != string(domain.VerdictWait) {
		t.Fatalf("verdict column should mirror the insight, got %v", pool.queryRowArgs[2])
	}
}

func TestInsightGetLatestNoRows(t *testing.T) {
	pool := &insightStubPool{rowErr: pgx.ErrNoRows}
	repo := NewInsightRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	out, err := repo.GetLatestInsight(context.Background(), "SET")
	if err != nil {
		t.Fatalf("no rows should not be an error, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil record, got %+v", out)
	}
}

func TestInsightListAppliesFilter(t *testing.T) {
	record := testInsightRecord()
	insightJSON, _ := json.Marshal(record.Insight)
	detectionJSON, _ := json.Marshal(record.Detection)
	now := time.Now().UTC().Truncate(time.Second)
	pool := &insightStubPool{rowsData: [][]any{
		{int64(1), int64(3), "SET", insightJSON, detectionJSON, now},
	}}
	repo := NewInsightRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	records, err := repo.ListInsights(context.Background(), domain.InsightFilter{
		Market:  "set",
		Verdict: domain.VerdictWait,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Insight.Verdict != domain.VerdictWait || !records[0].Detection.HasCriticalConflict {
		t.Fatalf("payloads should decode, got %+v", records[0])
	}
	if !strings.Contains(pool.querySQL, "market = $1") || !strings.Contains(pool.querySQL, "verdict = $2") {
		t.Fatalf("filter clauses missing from query: %s", pool.querySQL)
	}
	if pool.queryArgs[0] != "SET" {
		t.Fatalf("market filter should be upper-cased, got %v", pool.queryArgs[0])
	}
}

func TestInsightListClampsLimit(t *testing.T) {
	pool := &insightStubPool{}
	repo := NewInsightRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	if _, err := repo.ListInsights(context.Background(), domain.InsightFilter{Limit: 9999}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.queryArgs[len(pool.queryArgs)-1] != 200 {
		t.Fatalf("limit should clamp to 200, got %v", pool.queryArgs)
	}
}

type insightStubPool struct {
	execSQL      []string
	querySQL     string
	queryArgs    []any
	queryRowArgs []any
	rowData      []any
	rowErr       error
	rowsData     [][]any
}

func (s *insightStubPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.execSQL = append(s.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (s *insightStubPool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (s *insightStubPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.querySQL = sql
	s.queryArgs = args
	return &insightStubRows{data: s.rowsData}, nil
}

func (s *insightStubPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s.queryRowArgs = args
	return &insightStubRow{data: s.rowData, err: s.rowErr}
}

type insightStubRow struct {
	data []any
	err  error
}

func (r *insightStubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanStubValues(r.data, dest)
}

type insightStubRows struct {
	data [][]any
	idx  int
}

func (r *insightStubRows) Close()                                       {}
func (r *insightStubRows) Err() error                                   { return nil }
func (r *insightStubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *insightStubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *insightStubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *insightStubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return fmt.Errorf("invalid scan index")
	}
	return scanStubValues(r.data[r.idx-1], dest)
}

func (r *insightStubRows) Values() ([]any, error) { return nil, nil }
func (r *insightStubRows) RawValues() [][]byte    { return nil }
func (r *insightStubRows) Conn() *pgx.Conn        { return nil }

func scanStubValues(row []any, dest []any) error {
	for i, d := range dest {
		if i >= len(row) {
			break
		}
		switch ptr := d.(type) {
		case *int64:
			*ptr = row[i].(int64)
		case *string:
			*ptr = row[i].(string)
		case *[]byte:
			if row[i] == nil {
				*ptr = nil
			} else {
				*ptr = row[i].([]byte)
			}
		case *time.Time:
			*ptr = row[i].(time.Time)
		default:
			return fmt.Errorf("unsupported dest type %T", d)
		}
	}
	return nil
}
