package services

import (
	"fmt"

	"github.com/logan-wrld/austin-port-to-rail/models"
)

// Freight conversion constants for inbound container vessels.
const (
	TEUPerShip = 2500
	KgPerTEU   = 14000
)

var freightWindows = [3]string{"0-24h", "24-48h", "48-72h"}

// BuildFreightSchedule splits shipCount across the three arrival
// windows and converts it to freight mass. Ships divide evenly by
// integer division; the remainder lands entirely in the first window
// so the window total always equals shipCount.
func BuildFreightSchedule(shipCount, forecastWindowHours int) (models.FreightSchedule, error) {
	if shipCount < 0 {
		return models.FreightSchedule{}, fmt.Errorf("%w: ship count must be non-negative, got %d", ErrInvalidInput, shipCount)
	}
	if forecastWindowHours <= 0 {
		return models.FreightSchedule{}, fmt.Errorf("%w: forecast window must be positive hours, got %d", ErrInvalidInput, forecastWindowHours)
	}

	perWindow := shipCount / 3
	counts := [3]int{perWindow + shipCount%3, perWindow, perWindow}

	entries := make([]models.FreightScheduleEntry, 0, len(counts))
	for i, count := range counts {
		entries = append(entries, models.FreightScheduleEntry{
			Window:        freightWindows[i],
			ShipCount:     count,
			FreightMassKg: float64(count) * TEUPerShip * KgPerTEU,
		})
	}

	totalKg := float64(shipCount) * TEUPerShip * KgPerTEU

	return models.FreightSchedule{
		ForecastWindowHours: forecastWindowHours,
		Windows:             entries,
		TotalShips:          shipCount,
		TotalFreightKg:      totalKg,
		HourlyRateKgPerHour: totalKg / float64(forecastWindowHours),
	}, nil
}
