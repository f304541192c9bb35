package handlers

import (
	"net/http"

	"cropcare-service/internal/event"
	"cropcare-service/internal/services"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ingestion services.IIngestionService
	events    event.Publisher
	exporter  http.Handler
}

// exporter serves the Prometheus scrape endpoint; nil leaves /metrics unrouted.
func NewHealthHandler(ingestion services.IIngestionService, events event.Publisher, exporter http.Handler) *HealthHandler {
	return &HealthHandler{ingestion: ingestion, events: events, exporter: exporter}
}

func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/checkhealth", h.CheckHealth)
	if h.exporter != nil {
		router.GET("/metrics", gin.WrapH(h.exporter))
	}
	metrics := router.Group("/metrics")
	metrics.GET("/ingestion", h.IngestionMetrics)
	metrics.GET("/events", h.EventMetrics)
}

func (h *HealthHandler) CheckHealth(c *gin.Context) {
	c.String(http.StatusOK, "CropCare service is healthy")
}

func (h *HealthHandler) IngestionMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.ingestion.Metrics())
}

func (h *HealthHandler) EventMetrics(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusOK, event.PublisherHealthStatus{})
		return
	}
	status := h.events.HealthCheck()
	code := http.StatusOK
	if !status.IsHealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
