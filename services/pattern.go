package services

import (
	"math/rand"

	"github.com/logan-wrld/austin-port-to-rail/models"
)

const (
	// BaseTEUPerHour is the reference throughput the hourly pattern
	// multipliers apply to.
	BaseTEUPerHour = 150
	// Baseline30DayAvg is the rolling baseline deviations are computed
	// against.
	Baseline30DayAvg = 145
)

// RandSource is the randomness the metrics engine draws from. Tests
// substitute a deterministic implementation; *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
	Intn(n int) int
}

// globalRandSource delegates to the top-level math/rand functions,
// which serialize access internally. One engine serves every request
// handler, so its default source must tolerate concurrent draws; a
// plain *rand.Rand does not.
type globalRandSource struct{}

func (globalRandSource) Float64() float64 { return rand.Float64() }

func (globalRandSource) Intn(n int) int { return rand.Intn(n) }

func defaultRandSource() RandSource {
	return globalRandSource{}
}

type patternBand int

const (
	bandMorningPeak patternBand = iota
	bandAfternoonPeak
	bandNight
	bandNormal
)

// bandFor maps an hour of day to its traffic band. Bands are checked in
// priority order and cover the full 0-23 domain.
func bandFor(hour int) patternBand {
	switch {
	case hour >= 6 && hour <= 10:
		return bandMorningPeak
	case hour >= 14 && hour <= 18:
		return bandAfternoonPeak
	case hour >= 22 || hour <= 5:
		return bandNight
	default:
		return bandNormal
	}
}

// bandCenter returns the multiplier center and jitter bounds for a band.
func bandCenter(b patternBand) (center, jitterLo, jitterHi float64) {
	switch b {
	case bandMorningPeak:
		return 1.4, -0.1, 0.2
	case bandAfternoonPeak:
		return 1.5, -0.1, 0.2
	case bandNight:
		return 0.6, -0.1, 0.1
	default:
		return 1.0, -0.1, 0.1
	}
}

// hourMultiplier evaluates the temporal pattern at an hour. With jitter
// the multiplier carries bounded uniform noise around the band center;
// without, forecasts get the bare center.
func hourMultiplier(hour int, rng RandSource, jitter bool) float64 {
	center, lo, hi := bandCenter(bandFor(hour))
	if !jitter {
		return center
	}
	return center + lo + rng.Float64()*(hi-lo)
}

// ClassifySurge maps a signed deviation percentage to a risk level.
// Only upside deviation is risk-bearing: everything below +30%,
// negative deviations included, classifies LOW.
func ClassifySurge(deviationPct float64) string {
	switch {
	case deviationPct < 30:
		return models.RiskLow
	case deviationPct < 60:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}
