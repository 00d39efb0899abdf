package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/logan-wrld/austin-port-to-rail/models"
	"github.com/logan-wrld/austin-port-to-rail/services"
)

type MetricsHandler struct {
	engine *services.MetricsEngine
	cache  *services.CacheService
}

func NewMetricsHandler(engine *services.MetricsEngine, cache *services.CacheService) *MetricsHandler {
	return &MetricsHandler{engine: engine, cache: cache}
}

// parseNow honors an optional RFC3339 `now` override so clients and
// tests can pin the evaluation instant.
func parseNow(c *gin.Context) time.Time {
	if nowStr := c.Query("now"); nowStr != "" {
		if t, err := time.Parse(time.RFC3339, nowStr); err == nil {
			return t
		}
	}
	return time.Now()
}

func parseHorizon(c *gin.Context) (int, bool) {
	horizonStr := c.DefaultQuery("horizon", "24")
	horizon, err := strconv.Atoi(horizonStr)
	if err != nil || horizon <= 0 {
		return 0, false
	}
	return horizon, true
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.CurrentSnapshot(parseNow(c)))
}

func (h *MetricsHandler) GetForecast(c *gin.Context) {
	now := parseNow(c)
	horizon, ok := parseHorizon(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid horizon parameter, must be a positive integer"})
		return
	}

	// The forecast is deterministic per starting hour, so it caches well.
	cacheKey := fmt.Sprintf("forecast:%d:%d", now.Hour(), horizon)
	var cached struct {
		Forecast []models.ForecastPoint `json:"forecast"`
	}
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Forecast != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	resp := gin.H{"forecast": h.engine.ForecastSeries(now, horizon)}
	go h.cache.Set(context.Background(), cacheKey, resp, 60*time.Second)

	c.JSON(http.StatusOK, resp)
}

// GetSurgeAnalysis summarizes the next 24 hours: how many high and
// medium risk periods are coming, when the first peaks hit, and
// whether dispatch should be stepped up.
func (h *MetricsHandler) GetSurgeAnalysis(c *gin.Context) {
	now := parseNow(c)
	snapshot := h.engine.CurrentSnapshot(now)
	forecast := h.engine.ForecastSeries(now, 24)

	var highRisk, mediumRisk []models.ForecastPoint
	for _, p := range forecast {
		switch p.SurgeRisk {
		case models.RiskHigh:
			highRisk = append(highRisk, p)
		case models.RiskMedium:
			mediumRisk = append(mediumRisk, p)
		}
	}

	peakHours := make([]string, 0, 3)
	for _, p := range highRisk {
		if len(peakHours) == 3 {
			break
		}
		peakHours = append(peakHours, p.Time)
	}

	recommendedAction := "Normal operations"
	if len(highRisk) > 4 {
		recommendedAction = "Increase rail dispatch frequency"
	}

	c.JSON(http.StatusOK, gin.H{
		"current_status": gin.H{
			"surge_risk":   snapshot.SurgeRisk,
			"teu_per_hour": snapshot.CurrentTEUPerHour,
			"deviation":    snapshot.PercentDeviation,
		},
		"next_24h_summary": gin.H{
			"high_risk_periods":   len(highRisk),
			"medium_risk_periods": len(mediumRisk),
			"peak_hours":          peakHours,
			"recommended_action":  recommendedAction,
		},
		"hourly_breakdown": forecast,
	})
}
