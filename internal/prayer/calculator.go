// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package prayer

import (
	"fmt"
	"math"
	"time"
)

const (
	dhuhrBase        = 12.2
	dhuhrShiftFactor = 0.1
	asrBeforeSunset  = 2.5
)

// Calculate derives the six prayer times for the day of date at the given coordinates.
//
// The computation is a seasonal approximation around an idealized 06:00/18:00 equinox day. Only
// the latitude and the day of the year are taken into account; the longitude and the time zone
// are not applied, and Asr is a fixed offset before sunset independent of the method.
func Calculate(date time.Time, coords Coordinates, method CalculationMethod) (Times, error) {
	offsets, err := method.Offsets()
	if err != nil {
		return Times{}, fmt.Errorf("failed to look up method %q: %w", method, err)
	}
	if !coords.Valid() {
		return Times{}, ErrInvalidCoordinates
	}

	shift := SeasonalShift(date, coords.Latitude)
	sunriseHour := baseSunrise - shift
	sunsetHour := baseSunset + shift

	return Times{
		Fajr:    formatHour(sunriseHour - offsets.Fajr),
		Sunrise: formatHour(sunriseHour),
		Dhuhr:   formatHour(dhuhrBase + shift*dhuhrShiftFactor),
		Asr:     formatHour(sunsetHour - asrBeforeSunset),
		Maghrib: formatHour(sunsetHour + offsets.Maghrib),
		Isha:    formatHour(sunsetHour + offsets.Isha),
	}, nil
}

// formatHour renders a decimal hour as a clock string, wrapping it into a single day.
func formatHour(decimal float64) string {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		decimal = 0
	}
	hours := math.Floor(decimal)
	minutes := int(math.Floor((decimal - hours) * 60))
	return Format(int(math.Mod(math.Mod(hours, 24)+24, 24)), minutes)
}
