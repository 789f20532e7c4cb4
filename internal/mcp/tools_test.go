package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

func TestToolsListAndInvoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, svc := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	tools, err := session.ListTools(ctx, &sdkmcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	if len(tools.Tools) < 4 {
		t.Fatalf("expected at least 4 tools, got %d", len(tools.Tools))
	}

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "insight_get_latest", Arguments: map[string]any{"market": "set"}})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "insights_list", Arguments: map[string]any{"market": "SET", "verdict": "wait", "limit": 999}})
	if err != nil {
		t.Fatalf("list tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected list tool error: %+v", res.Content)
	}
	if svc.lastFilter.Market != "SET" {
		t.Fatalf("expected filter market SET, got %s", svc.lastFilter.Market)
	}
	if svc.lastFilter.Verdict != domain.VerdictWait {
		t.Fatalf("expected filter verdict WAIT, got %s", svc.lastFilter.Verdict)
	}
	if svc.lastFilter.Limit != maxInsightLimit {
		t.Fatalf("expected capped limit %d, got %d", maxInsightLimit, svc.lastFilter.Limit)
	}
}

func TestToolResolveReturnsVerdict(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name: "insight_resolve",
		Arguments: map[string]any{
			"regime": map[string]any{"type": "Risk-On", "confidence": 80},
			"smart_money": map[string]any{
				"score": 25,
				"investors": map[string]any{
					"foreign":     map[string]any{"today_net": -500, "strength": "Sell"},
					"institution": map[string]any{"today_net": -200, "strength": "Sell"},
					"retail":      map[string]any{"today_net": 600, "strength": "Buy"},
					"prop":        map[string]any{"today_net": 100, "strength": "Neutral"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("resolve tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected resolve tool error: %+v", res.Content)
	}

	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content failed: %v", err)
	}
	var out insightResolveOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode resolve output failed: %v", err)
	}
	if out.Insight == nil {
		t.Fatal("expected a resolved insight")
	}
	if out.Insight.Verdict == domain.VerdictProceed {
		t.Fatalf("confident regime against weak smart money must not resolve PROCEED, got %s", out.Insight.Verdict)
	}
	if !out.Detection.HasCriticalConflict {
		t.Fatal("expected a critical regime mismatch conflict")
	}
}

func TestToolResolveRequiresASignal(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "insight_resolve", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool-level error for an empty signal set")
	}
}

func TestToolsValidationFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "conflicts_detect",
		Arguments: map[string]any{"market": "NIKKEI"},
	})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool-level validation error")
	}
}
