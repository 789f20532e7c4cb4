package mcp

import (
	"fmt"
	"strings"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

const (
	defaultInsightLimit = 50
	maxInsightLimit     = 200
)

type insightGetLatestInput struct {
	Market string `json:"market" jsonschema:"market name (SET, SET50, SET100, MAI)"`
}

type insightGetLatestOutput struct {
	Insight *domain.InsightRecord `json:"insight"`
}

type insightResolveInput struct {
	Regime     *domain.RegimeSignal         `json:"regime,omitempty" jsonschema:"market regime signal, omit when unavailable"`
	SmartMoney *domain.SmartMoneySignal     `json:"smart_money,omitempty" jsonschema:"smart money flow signal, omit when unavailable"`
	Sector     *domain.SectorRotationSignal `json:"sector,omitempty" jsonschema:"sector rotation signal, omit when unavailable"`
}

type insightResolveOutput struct {
	Insight   *domain.DataInsight            `json:"insight"`
	Detection domain.ConflictDetectionResult `json:"detection"`
}

type conflictsDetectInput struct {
	Market string `json:"market" jsonschema:"market name (SET, SET50, SET100, MAI)"`
}

type conflictsDetectOutput struct {
	Market    string                          `json:"market"`
	Detection *domain.ConflictDetectionResult `json:"detection"`
}

type insightsListInput struct {
	Market  string `json:"market,omitempty" jsonschema:"optional market filter (SET, SET50, SET100, MAI)"`
	Verdict string `json:"verdict,omitempty" jsonschema:"optional verdict filter: PROCEED, CAUTION, WAIT, NEUTRAL"`
	Limit   int    `json:"limit,omitempty" jsonschema:"number of insights to return, max 200"`
}

type insightsListOutput struct {
	Insights []domain.InsightRecord `json:"insights"`
}

func normalizeMarket(market string) (string, error) {
	market = strings.ToUpper(strings.TrimSpace(market))
	if market == "" {
		return "", fmt.Errorf("market is required")
	}
	if !domain.IsSupportedMarket(market) {
		return "", fmt.Errorf("unsupported market: %s", market)
	}
	return market, nil
}

func normalizeVerdict(verdict string) (domain.Verdict, error) {
	verdict = strings.ToUpper(strings.TrimSpace(verdict))
	if verdict == "" {
		return "", nil
	}
	v := domain.Verdict(verdict)
	if !v.IsValid() {
		return "", fmt.Errorf("unsupported verdict: %s", verdict)
	}
	return v, nil
}

func normalizeInsightLimit(limit int) int {
	if limit <= 0 {
		return defaultInsightLimit
	}
	if limit > maxInsightLimit {
		return maxInsightLimit
	}
	return limit
}

func normalizeInsightFilter(in insightsListInput) (domain.InsightFilter, error) {
	filter := domain.InsightFilter{Limit: normalizeInsightLimit(in.Limit)}

	if strings.TrimSpace(in.Market) != "" {
		market, err := normalizeMarket(in.Market)
		if err != nil {
			return domain.InsightFilter{}, err
		}
		filter.Market = market
	}

	verdict, err := normalizeVerdict(in.Verdict)
	if err != nil {
		return domain.InsightFilter{}, err
	}
	filter.Verdict = verdict

	return filter, nil
}
