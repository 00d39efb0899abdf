package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/logan-wrld/austin-port-to-rail/services"
)

var (
	oracleRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portrail_oracle_requests_total",
		Help: "Total number of rail-analysis inference requests.",
	})
	oracleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portrail_oracle_failures_total",
		Help: "Total number of unreachable or errored inference requests.",
	})
	oracleParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portrail_oracle_parse_errors_total",
		Help: "Total number of inference responses that failed schema validation.",
	})
	oracleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portrail_oracle_request_duration_seconds",
		Help:    "Duration of rail-analysis inference round trips.",
		Buckets: []float64{0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
	})
)

type RailHandler struct {
	svc   *services.RailAnalysisService
	model string
	cache *services.CacheService
}

func NewRailHandler(svc *services.RailAnalysisService, model string, cache *services.CacheService) *RailHandler {
	return &RailHandler{svc: svc, model: model, cache: cache}
}

// GetRailAnalysis runs the node-stress analysis for an inbound ship
// forecast. A malformed model response still returns 200 with the raw
// text flagged; only bad input or an unreachable model server fail.
func (h *RailHandler) GetRailAnalysis(c *gin.Context) {
	shipCount, err := strconv.Atoi(c.DefaultQuery("ship_count", "15"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ship_count parameter, must be an integer"})
		return
	}
	forecastWindow, err := strconv.Atoi(c.DefaultQuery("forecast_window", "72"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forecast_window parameter, must be an integer"})
		return
	}

	cacheKey := fmt.Sprintf("rail-analysis:%d:%d", shipCount, forecastWindow)
	var cached gin.H
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	oracleRequests.Inc()
	start := time.Now()
	schedule, analysis, err := h.svc.Analyze(c.Request.Context(), shipCount, forecastWindow)
	oracleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrOracleUnavailable):
			oracleFailures.Inc()
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Cannot connect to Ollama",
				"hint":  "Run 'ollama serve' to start the server",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	if analysis.ParseError {
		oracleParseErrors.Inc()
	}

	resp := gin.H{
		"success":         true,
		"schedule":        schedule,
		"analysis":        analysis,
		"model":           h.model,
		"ship_count":      shipCount,
		"forecast_window": forecastWindow,
	}
	if !analysis.ParseError {
		go h.cache.Set(context.Background(), cacheKey, resp, 5*time.Minute)
	}

	c.JSON(http.StatusOK, resp)
}
