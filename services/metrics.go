package services

import (
	"math"
	"time"

	"github.com/logan-wrld/austin-port-to-rail/models"
)

// MetricsEngine derives the current throughput snapshot and the
// 24-hour forecast from the temporal pattern model. It holds no state
// beyond its random source and performs no I/O.
type MetricsEngine struct {
	rng RandSource
}

// NewMetricsEngine builds an engine. Passing nil uses a source safe
// for concurrent draws; tests inject a deterministic one.
func NewMetricsEngine(rng RandSource) *MetricsEngine {
	if rng == nil {
		rng = defaultRandSource()
	}
	return &MetricsEngine{rng: rng}
}

// CurrentSnapshot evaluates the pattern at now's hour with jitter and
// packages it with independently randomized channel/berth/rail/dwell
// counters. Deviation and risk are always derived from the throughput,
// never drawn separately.
func (e *MetricsEngine) CurrentSnapshot(now time.Time) models.MetricsSnapshot {
	hour := now.Hour()
	multiplier := hourMultiplier(hour, e.rng, true)
	currentTEU := int(float64(BaseTEUPerHour) * multiplier)
	deviation := float64(currentTEU-Baseline30DayAvg) / float64(Baseline30DayAvg) * 100

	return models.MetricsSnapshot{
		Timestamp:         now,
		Hour:              hour,
		CurrentTEUPerHour: currentTEU,
		Baseline30DayAvg:  Baseline30DayAvg,
		PercentDeviation:  round1(deviation),
		SurgeRisk:         ClassifySurge(deviation),
		VesselsInChannel:  e.randRange(15, 35),
		VesselsAtBerth:    e.randRange(8, 18),
		RailCarsWaiting:   e.randRange(50, 200),
		AvgDwellTimeHours: round1(18 + e.rng.Float64()*18),
	}
}

// ForecastSeries produces horizon points starting at now's hour, one
// per hour, without jitter. Risk follows the band rules: morning peak
// is MEDIUM, afternoon peak escalates to HIGH within the next six
// hours and MEDIUM beyond, night and normal hours are LOW. The band
// override, not the surge thresholds, decides forecast risk.
func (e *MetricsEngine) ForecastSeries(now time.Time, horizon int) []models.ForecastPoint {
	if horizon <= 0 {
		horizon = 24
	}

	points := make([]models.ForecastPoint, 0, horizon)
	for i := 0; i < horizon; i++ {
		futureTime := now.Add(time.Duration(i) * time.Hour)
		hour := futureTime.Hour()
		multiplier := hourMultiplier(hour, e.rng, false)

		var risk string
		switch bandFor(hour) {
		case bandMorningPeak:
			risk = models.RiskMedium
		case bandAfternoonPeak:
			if i < 6 {
				risk = models.RiskHigh
			} else {
				risk = models.RiskMedium
			}
		default:
			risk = models.RiskLow
		}

		points = append(points, models.ForecastPoint{
			Hour:                  hour,
			Time:                  futureTime.Format("15:00"),
			ExpectedTEU:           int(float64(BaseTEUPerHour) * multiplier),
			DeviationFromBaseline: round1((multiplier - 1) * 100),
			SurgeRisk:             risk,
		})
	}

	return points
}

// randRange draws an integer in [lo, hi] inclusive.
func (e *MetricsEngine) randRange(lo, hi int) int {
	return lo + e.rng.Intn(hi-lo+1)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
