package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/hataichanokpan-dev/fonpick/internal/service"
)

type Handler struct {
	tracer         trace.Tracer
	insightService *service.InsightService
}

func New(tracer trace.Tracer, insightService *service.InsightService) *Handler {
	return &Handler{
		tracer:         tracer,
		insightService: insightService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/insight/:market/latest", h.GetLatestInsight)
	r.GET("/api/insight/:market/conflicts", h.GetLatestConflicts)
	r.GET("/api/insights", h.ListInsights)
	r.POST("/api/insight/:market/refresh", h.RefreshInsight)
}

// Health godoc
// @Summary      Service health
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
