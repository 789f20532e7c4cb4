package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, insights InsightReader) {
	server.AddResource(&mcp.Resource{
		URI:         "markets://supported",
		Name:        "supported-markets",
		Description: "List of markets the engine resolves verdicts for",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.SupportedMarkets)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "insight://latest/{market}",
		Name:        "insight-latest",
		Description: "Latest resolved verdict for a specific market",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if insights == nil {
			return nil, fmt.Errorf("insight service unavailable")
		}

		market, err := marketFromURI(req.Params.URI, "insight")
		if err != nil {
			return nil, err
		}

		record, err := insights.LatestInsight(ctx, market)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, insightGetLatestOutput{Insight: record})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "conflicts://latest/{market}",
		Name:        "conflicts-latest",
		Description: "Conflict detection result behind the latest verdict for a specific market",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if insights == nil {
			return nil, fmt.Errorf("insight service unavailable")
		}

		market, err := marketFromURI(req.Params.URI, "conflicts")
		if err != nil {
			return nil, err
		}

		detection, err := insights.LatestConflicts(ctx, market)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, conflictsDetectOutput{Market: market, Detection: detection})
	})
}

func marketFromURI(uri, scheme string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", mcp.ResourceNotFoundError(uri)
	}
	if parsed.Scheme != scheme || parsed.Host != "latest" {
		return "", mcp.ResourceNotFoundError(uri)
	}

	market := strings.Trim(strings.TrimSpace(parsed.Path), "/")
	return normalizeMarket(market)
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
