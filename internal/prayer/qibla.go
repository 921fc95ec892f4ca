// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package prayer

import "math"

// Kaaba is the reference position of the Qibla.
var Kaaba = Coordinates{Latitude: 21.4225, Longitude: 39.8262}

// QiblaDirection returns the initial great-circle bearing from coords to the Kaaba in whole
// degrees clockwise from north (0–359).
func QiblaDirection(coords Coordinates) int {
	phiK := degToRad(Kaaba.Latitude)
	lambdaK := degToRad(Kaaba.Longitude)
	phi := degToRad(coords.Latitude)
	lambda := degToRad(coords.Longitude)

	psi := radToDeg(math.Atan2(
		math.Sin(lambdaK-lambda),
		math.Cos(phi)*math.Tan(phiK)-math.Sin(phi)*math.Cos(lambdaK-lambda),
	))
	if psi < 0 {
		psi += 360
	}
	return int(math.Round(psi)) % 360
}
