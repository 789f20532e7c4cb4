package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
	"github.com/hataichanokpan-dev/fonpick/internal/insight"
)

type stubInsightService struct {
	records    map[string]*domain.InsightRecord
	detections map[string]*domain.ConflictDetectionResult
	listed     []domain.InsightRecord

	lastFilter domain.InsightFilter

	detector *insight.Detector
	resolver *insight.Resolver
}

func (s *stubInsightService) LatestInsight(ctx context.Context, market string) (*domain.InsightRecord, error) {
	if record, ok := s.records[market]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, nil
}

func (s *stubInsightService) LatestConflicts(ctx context.Context, market string) (*domain.ConflictDetectionResult, error) {
	if detection, ok := s.detections[market]; ok {
		copied := *detection
		return &copied, nil
	}
	return nil, nil
}

func (s *stubInsightService) ListInsights(ctx context.Context, filter domain.InsightFilter) ([]domain.InsightRecord, error) {
	s.lastFilter = filter
	return append([]domain.InsightRecord(nil), s.listed...), nil
}

func (s *stubInsightService) Evaluate(regime *domain.RegimeSignal, smart *domain.SmartMoneySignal, sector *domain.SectorRotationSignal) (*domain.DataInsight, domain.ConflictDetectionResult) {
	detection := s.detector.Detect(regime, smart, sector)
	return s.resolver.ResolveDetected(regime, smart, sector, detection), detection
}

func testServer() (*sdkmcp.Server, *stubInsightService) {
	record := &domain.InsightRecord{
		ID:     1,
		Market: "SET",
		Insight: domain.DataInsight{
			Verdict:       domain.VerdictWait,
			Confidence:    42,
			Conviction:    domain.ConvictionMedium,
			PrimaryDriver: domain.DriverSmartMoney,
			ConflictLevel: domain.SeverityMedium,
		},
		Detection: domain.ConflictDetectionResult{
			ConflictLevel: domain.SeverityMedium,
			Conflicts: []domain.Conflict{{
				Type:        domain.ConflictRegimeSmartMoney,
				Severity:    domain.SeverityMedium,
				Description: "regime and smart money disagree",
			}},
		},
		CreatedAt: time.Unix(0, 0).UTC(),
	}

	th := insight.DefaultThresholds()
	svc := &stubInsightService{
		records:    map[string]*domain.InsightRecord{"SET": record},
		detections: map[string]*domain.ConflictDetectionResult{"SET": &record.Detection},
		listed:     []domain.InsightRecord{*record},
		detector:   insight.NewDetector(th),
		resolver:   insight.NewResolver(th),
	}

	srv := NewServer(nil, svc, svc, ServerConfig{RequestTimeout: time.Second})
	return srv, svc
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
