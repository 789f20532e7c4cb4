package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

func TestFetchSignalsDecodesPayload(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"market": "SET",
			"regime": {"type": "Risk-On", "confidence": 80, "focus": "cyclicals"},
			"smart_money": {
				"score": 65,
				"combined_signal": "Buy",
				"confidence": 70,
				"investors": {
					"foreign": {"today_net": 1200, "strength": "Buy"},
					"institution": {"today_net": 300, "strength": "Neutral"},
					"retail": {"today_net": -900, "strength": "Sell"},
					"prop": {"today_net": 50, "strength": "Neutral"}
				}
			},
			"sector_rotation": {"pattern": "Cyclical Leadership", "concentration": 62},
			"as_of": "2026-08-21T10:30:00Z"
		}`))
	}))
	defer server.Close()

	client := NewAnalyticsClient(server.URL, trace.NewNoopTracerProvider().Tracer("test"))
	snapshot, err := client.FetchSignals(context.Background(), "SET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v1/markets/SET/signals" {
		t.Fatalf("unexpected request path %s", gotPath)
	}
	if snapshot.Regime == nil || snapshot.Regime.Type != domain.RegimeRiskOn {
		t.Fatalf("regime should decode, got %+v", snapshot.Regime)
	}
	foreign, ok := snapshot.SmartMoney.Investor(domain.InvestorForeign)
	if !ok || foreign.TodayNet != 1200 || foreign.Strength != domain.StrengthBuy {
		t.Fatalf("foreign flow should decode, got %+v", foreign)
	}
	if snapshot.Sector == nil || snapshot.Sector.Pattern != "Cyclical Leadership" {
		t.Fatalf("sector rotation should decode, got %+v", snapshot.Sector)
	}
	if snapshot.CapturedAt.IsZero() {
		t.Fatalf("captured_at should come from as_of")
	}
}

func TestFetchSignalsPartialUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"market": "MAI", "regime": {"type": "Neutral", "confidence": 50}}`))
	}))
	defer server.Close()

	client := NewAnalyticsClient(server.URL, trace.NewNoopTracerProvider().Tracer("test"))
	snapshot, err := client.FetchSignals(context.Background(), "MAI")
	if err != nil {
		t.Fatalf("partial payloads are not errors, got %v", err)
	}
	if snapshot.Regime == nil {
		t.Fatalf("present regime should decode")
	}
	if snapshot.SmartMoney != nil || snapshot.Sector != nil {
		t.Fatalf("absent signals must decode to nil, got %+v", snapshot)
	}
}

func TestFetchSignalsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewAnalyticsClient(server.URL, trace.NewNoopTracerProvider().Tracer("test"))
	if _, err := client.FetchSignals(context.Background(), "SET"); err == nil {
		t.Fatalf("expected an error on upstream 500")
	}
}

func TestFetchSignalsUnknownMarket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewAnalyticsClient(server.URL, trace.NewNoopTracerProvider().Tracer("test"))
	if _, err := client.FetchSignals(context.Background(), "XXX"); err == nil {
		t.Fatalf("expected an error on 404")
	}
}
