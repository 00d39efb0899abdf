package models

import "time"

// Surge risk levels, ordered by severity.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

type MetricsSnapshot struct {
	Timestamp         time.Time `json:"timestamp"`
	Hour              int       `json:"hour"`
	CurrentTEUPerHour int       `json:"current_teu_per_hour"`
	Baseline30DayAvg  int       `json:"baseline_30day_avg"`
	PercentDeviation  float64   `json:"percent_deviation"`
	SurgeRisk         string    `json:"surge_risk"`
	VesselsInChannel  int       `json:"vessels_in_channel"`
	VesselsAtBerth    int       `json:"vessels_at_berth"`
	RailCarsWaiting   int       `json:"rail_cars_waiting"`
	AvgDwellTimeHours float64   `json:"avg_dwell_time_hours"`
}

type ForecastPoint struct {
	Hour                  int     `json:"hour"`
	Time                  string  `json:"time"`
	ExpectedTEU           int     `json:"expected_teu"`
	DeviationFromBaseline float64 `json:"deviation_from_baseline"`
	SurgeRisk             string  `json:"surge_risk"`
}
