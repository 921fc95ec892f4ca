// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package prayer

import (
	"math"
	"time"
)

const (
	maxDeclination = 23.45
	baseSunrise    = 6.0
	baseSunset     = 18.0
)

// Declination approximates the solar declination in degrees for a 1-based day of the year.
func Declination(dayOfYear int) float64 {
	return maxDeclination * math.Sin(2*math.Pi/365*float64(dayOfYear-81))
}

// SeasonalShift returns the hour shift of sunrise and sunset relative to an equinox day at the
// given latitude. Positive values mean longer days.
func SeasonalShift(date time.Time, latitude float64) float64 {
	decl := Declination(date.YearDay())
	return -math.Tan(degToRad(latitude)) * math.Tan(degToRad(decl))
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
