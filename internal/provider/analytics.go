package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// AnalyticsClient fetches the three upstream signals from the internal
// analytics API. The upstream classifiers stay external; this client only
// moves their output.
type AnalyticsClient struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

func NewAnalyticsClient(baseURL string, tracer trace.Tracer) *AnalyticsClient {
	return &AnalyticsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tracer:     tracer,
	}
}

type signalsResponse struct {
	Market     string                       `json:"market"`
	Regime     *domain.RegimeSignal         `json:"regime"`
	SmartMoney *domain.SmartMoneySignal     `json:"smart_money"`
	Sector     *domain.SectorRotationSignal `json:"sector_rotation"`
	AsOf       time.Time                    `json:"as_of"`
}

// FetchSignals returns one cycle's signal snapshot for a market. A signal the
// upstream could not compute comes back as a nil pointer, not an error; the
// resolver downgrades accordingly.
func (c *AnalyticsClient) FetchSignals(ctx context.Context, market string) (*domain.SignalSnapshot, error) {
	_, span := c.tracer.Start(ctx, "analytics.fetch-signals")
	defer span.End()

	url := fmt.Sprintf("%s/v1/markets/%s/signals", c.baseURL, market)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build signals request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch signals for %s: %w", market, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("market %s unknown to analytics", market)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analytics returned %d for %s: %s", resp.StatusCode, market, body)
	}

	var payload signalsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode signals for %s: %w", market, err)
	}

	capturedAt := payload.AsOf
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	return &domain.SignalSnapshot{
		Market:     market,
		Regime:     payload.Regime,
		SmartMoney: payload.SmartMoney,
		Sector:     payload.Sector,
		CapturedAt: capturedAt.UTC(),
	}, nil
}
