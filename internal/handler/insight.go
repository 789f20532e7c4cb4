package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// GetLatestInsight godoc
// @Summary      Get the latest resolved insight for a market
// @Description  Returns the most recent verdict with its conflict detection payload. 204 when no insight has been resolved yet.
// @Tags         insights
// @Produce      json
// @Param        market  path  string  true  "Market index (SET, SET50, SET100, MAI)"
// @Success      200  {object}  domain.InsightRecord
// @Success      204  "No insight resolved yet"
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/insight/{market}/latest [get]
func (h *Handler) GetLatestInsight(c *gin.Context) {
	if h.insightService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insight service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-latest-insight")
	defer span.End()

	market, ok := h.marketParam(c, span)
	if !ok {
		return
	}

	record, err := h.insightService.LatestInsight(ctx, market)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if record == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetLatestConflicts godoc
// @Summary      Get the conflicts behind the latest insight
// @Description  Returns the detected conflicts for a market's most recent analysis cycle. 204 when no insight has been resolved yet.
// @Tags         insights
// @Produce      json
// @Param        market  path  string  true  "Market index (SET, SET50, SET100, MAI)"
// @Success      200  {object}  domain.ConflictDetectionResult
// @Success      204  "No insight resolved yet"
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/insight/{market}/conflicts [get]
func (h *Handler) GetLatestConflicts(c *gin.Context) {
	if h.insightService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insight service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-latest-conflicts")
	defer span.End()

	market, ok := h.marketParam(c, span)
	if !ok {
		return
	}

	detection, err := h.insightService.LatestConflicts(ctx, market)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if detection == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, detection)
}

// ListInsights godoc
// @Summary      List insight history
// @Description  Returns resolved insights, newest first, optionally filtered by market and verdict
// @Tags         insights
// @Produce      json
// @Param        market   query  string  false  "Market index (SET, SET50, SET100, MAI)"
// @Param        verdict  query  string  false  "Verdict (PROCEED, CAUTION, WAIT, NEUTRAL)"
// @Param        limit    query  int     false  "Number of records (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/insights [get]
func (h *Handler) ListInsights(c *gin.Context) {
	if h.insightService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insight service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-insights")
	defer span.End()

	filter := domain.InsightFilter{
		Market: strings.ToUpper(strings.TrimSpace(c.Query("market"))),
	}

	if filter.Market != "" {
		span.SetAttributes(attribute.String("market", filter.Market))
		if !domain.IsSupportedMarket(filter.Market) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "unsupported market: " + filter.Market,
				"supported_markets": domain.SupportedMarkets,
			})
			return
		}
	}

	if rawVerdict := strings.ToUpper(strings.TrimSpace(c.Query("verdict"))); rawVerdict != "" {
		verdict := domain.Verdict(rawVerdict)
		if !verdict.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "verdict must be one of PROCEED, CAUTION, WAIT, NEUTRAL"})
			return
		}
		filter.Verdict = verdict
	}

	limit := 50
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}
	filter.Limit = limit

	records, err := h.insightService.ListInsights(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": records})
}

// RefreshInsight godoc
// @Summary      Trigger an on-demand refresh for a market
// @Description  Fetches the upstream signals, resolves a fresh insight and returns it. 204 when the upstream delivered no signals.
// @Tags         insights
// @Produce      json
// @Param        market  path  string  true  "Market index (SET, SET50, SET100, MAI)"
// @Success      200  {object}  domain.InsightRecord
// @Success      204  "No signals available"
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/insight/{market}/refresh [post]
func (h *Handler) RefreshInsight(c *gin.Context) {
	if h.insightService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insight service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.refresh-insight")
	defer span.End()

	market, ok := h.marketParam(c, span)
	if !ok {
		return
	}

	record, err := h.insightService.RefreshMarket(ctx, market)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if record == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) marketParam(c *gin.Context, span trace.Span) (string, bool) {
	market := strings.ToUpper(strings.TrimSpace(c.Param("market")))
	if !domain.IsSupportedMarket(market) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported market: " + market,
			"supported_markets": domain.SupportedMarkets,
		})
		return "", false
	}
	span.SetAttributes(attribute.String("market", market))
	return market, true
}
