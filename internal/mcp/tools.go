package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, insights InsightReader, resolver InsightResolver) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "insight_get_latest",
		Description: "Get the latest resolved verdict for one market",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in insightGetLatestInput) (*mcp.CallToolResult, insightGetLatestOutput, error) {
		if insights == nil {
			return nil, insightGetLatestOutput{}, fmt.Errorf("insight service unavailable")
		}
		market, err := normalizeMarket(in.Market)
		if err != nil {
			return nil, insightGetLatestOutput{}, err
		}
		record, err := insights.LatestInsight(ctx, market)
		if err != nil {
			return nil, insightGetLatestOutput{}, err
		}
		return nil, insightGetLatestOutput{Insight: record}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "insight_resolve",
		Description: "Resolve caller-supplied regime, smart money, and sector signals into a verdict without persisting anything",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in insightResolveInput) (*mcp.CallToolResult, insightResolveOutput, error) {
		if resolver == nil {
			return nil, insightResolveOutput{}, fmt.Errorf("insight service unavailable")
		}
		if in.Regime == nil && in.SmartMoney == nil && in.Sector == nil {
			return nil, insightResolveOutput{}, fmt.Errorf("at least one signal is required")
		}
		insight, detection := resolver.Evaluate(in.Regime, in.SmartMoney, in.Sector)
		return nil, insightResolveOutput{Insight: insight, Detection: detection}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "conflicts_detect",
		Description: "Get the conflict detection result behind the latest verdict for one market",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in conflictsDetectInput) (*mcp.CallToolResult, conflictsDetectOutput, error) {
		if insights == nil {
			return nil, conflictsDetectOutput{}, fmt.Errorf("insight service unavailable")
		}
		market, err := normalizeMarket(in.Market)
		if err != nil {
			return nil, conflictsDetectOutput{}, err
		}
		detection, err := insights.LatestConflicts(ctx, market)
		if err != nil {
			return nil, conflictsDetectOutput{}, err
		}
		return nil, conflictsDetectOutput{Market: market, Detection: detection}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "insights_list",
		Description: "List stored insights with optional market/verdict filters",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in insightsListInput) (*mcp.CallToolResult, insightsListOutput, error) {
		if insights == nil {
			return nil, insightsListOutput{}, fmt.Errorf("insight service unavailable")
		}
		filter, err := normalizeInsightFilter(in)
		if err != nil {
			return nil, insightsListOutput{}, err
		}
		records, err := insights.ListInsights(ctx, filter)
		if err != nil {
			return nil, insightsListOutput{}, err
		}
		return nil, insightsListOutput{Insights: records}, nil
	})
}
