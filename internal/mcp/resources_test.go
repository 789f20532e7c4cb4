package mcp

import (
	"context"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

func TestResourcesStaticAndTemplated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	list, err := session.ListResources(ctx, &sdkmcp.ListResourcesParams{})
	if err != nil {
		t.Fatalf("list resources failed: %v", err)
	}
	if len(list.Resources) < 1 {
		t.Fatalf("expected at least 1 static resource, got %d", len(list.Resources))
	}

	templates, err := session.ListResourceTemplates(ctx, &sdkmcp.ListResourceTemplatesParams{})
	if err != nil {
		t.Fatalf("list templates failed: %v", err)
	}
	if len(templates.ResourceTemplates) < 2 {
		t.Fatalf("expected at least 2 resource templates, got %d", len(templates.ResourceTemplates))
	}

	readRes, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "markets://supported"})
	if err != nil {
		t.Fatalf("read static resource failed: %v", err)
	}
	var markets []string
	if err := decodeResourceJSON(readRes, &markets); err != nil {
		t.Fatalf("decode markets failed: %v", err)
	}
	if len(markets) != len(domain.SupportedMarkets) {
		t.Fatalf("expected %d supported markets, got %d", len(domain.SupportedMarkets), len(markets))
	}

	readRes, err = session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "insight://latest/SET"})
	if err != nil {
		t.Fatalf("read insight resource failed: %v", err)
	}
	var latest insightGetLatestOutput
	if err := decodeResourceJSON(readRes, &latest); err != nil {
		t.Fatalf("decode insight output failed: %v", err)
	}
	if latest.Insight == nil || latest.Insight.Market != "SET" {
		t.Fatalf("unexpected insight payload: %+v", latest.Insight)
	}

	readRes, err = session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "conflicts://latest/set"})
	if err != nil {
		t.Fatalf("read conflicts resource failed: %v", err)
	}
	var conflicts conflictsDetectOutput
	if err := decodeResourceJSON(readRes, &conflicts); err != nil {
		t.Fatalf("decode conflicts output failed: %v", err)
	}
	if conflicts.Market != "SET" {
		t.Fatalf("expected normalized market SET, got %s", conflicts.Market)
	}
	if conflicts.Detection == nil || len(conflicts.Detection.Conflicts) != 1 {
		t.Fatalf("unexpected detection payload: %+v", conflicts.Detection)
	}
}

func TestResourceUnknownMarket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	if _, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "insight://latest/NIKKEI"}); err == nil {
		t.Fatal("expected error for unsupported market")
	}
	if _, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "snapshot://latest/SET"}); err == nil {
		t.Fatal("expected resource not found error for unknown scheme")
	}
}
