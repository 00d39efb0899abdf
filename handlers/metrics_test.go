package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/logan-wrld/austin-port-to-rail/services"
)

func newMetricsRouter() *gin.Engine {
	h := NewMetricsHandler(services.NewMetricsEngine(nil), disabledCache())
	router := gin.New()
	router.GET("/api/metrics", h.GetMetrics)
	router.GET("/api/forecast", h.GetForecast)
	router.GET("/api/surge-analysis", h.GetSurgeAnalysis)
	return router
}

func TestGetMetrics(t *testing.T) {
	router := newMetricsRouter()

	w := performRequest(router, http.MethodGet, "/api/metrics?now=2025-06-03T08:00:00Z", nil)
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	if body["hour"] != float64(8) {
		t.Errorf("hour = %v, want 8", body["hour"])
	}
	if body["baseline_30day_avg"] != float64(145) {
		t.Errorf("baseline = %v, want 145", body["baseline_30day_avg"])
	}
	teu, ok := body["current_teu_per_hour"].(float64)
	if !ok || teu < 150*1.3 || teu > 150*1.6 {
		t.Errorf("current_teu_per_hour = %v, want within morning band", body["current_teu_per_hour"])
	}
	if body["surge_risk"] == "" {
		t.Error("surge_risk missing")
	}
}

func TestGetForecast(t *testing.T) {
	router := newMetricsRouter()

	w := performRequest(router, http.MethodGet, "/api/forecast?now=2025-06-03T12:00:00Z&horizon=6", nil)
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	forecast, ok := body["forecast"].([]any)
	if !ok || len(forecast) != 6 {
		t.Fatalf("forecast = %v, want 6 points", body["forecast"])
	}

	// Hour 14 is two steps from noon: afternoon peak inside the
	// six-hour escalation window.
	point, _ := forecast[2].(map[string]any)
	if point["hour"] != float64(14) {
		t.Errorf("forecast[2].hour = %v, want 14", point["hour"])
	}
	if point["expected_teu"] != float64(225) {
		t.Errorf("forecast[2].expected_teu = %v, want 225", point["expected_teu"])
	}
	if point["surge_risk"] != "HIGH" {
		t.Errorf("forecast[2].surge_risk = %v, want HIGH", point["surge_risk"])
	}
	if point["time"] != "14:00" {
		t.Errorf("forecast[2].time = %v, want 14:00", point["time"])
	}
}

func TestGetForecastInvalidHorizon(t *testing.T) {
	router := newMetricsRouter()

	for _, q := range []string{"horizon=0", "horizon=-3", "horizon=abc"} {
		w := performRequest(router, http.MethodGet, "/api/forecast?"+q, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestGetSurgeAnalysis(t *testing.T) {
	router := newMetricsRouter()

	// Noon start puts all five afternoon peak hours inside the 24-hour
	// window, with 14:00-17:00 inside the escalation range.
	w := performRequest(router, http.MethodGet, "/api/surge-analysis?now=2025-06-03T12:00:00Z", nil)
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	current, _ := body["current_status"].(map[string]any)
	if current["surge_risk"] == nil || current["teu_per_hour"] == nil {
		t.Errorf("current_status incomplete: %v", current)
	}

	summary, _ := body["next_24h_summary"].(map[string]any)
	if summary["high_risk_periods"] != float64(4) {
		t.Errorf("high_risk_periods = %v, want 4", summary["high_risk_periods"])
	}
	if summary["recommended_action"] != "Normal operations" {
		t.Errorf("recommended_action = %v", summary["recommended_action"])
	}

	peaks, _ := summary["peak_hours"].([]any)
	if len(peaks) == 0 || peaks[0] != "14:00" {
		t.Errorf("peak_hours = %v, want leading 14:00", summary["peak_hours"])
	}

	breakdown, _ := body["hourly_breakdown"].([]any)
	if len(breakdown) != 24 {
		t.Errorf("hourly_breakdown length = %d, want 24", len(breakdown))
	}
}
