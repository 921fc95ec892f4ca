// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

// GeolocationState remembers the last coordinate a provider emitted, so that providers only
// publish positional changes.
type GeolocationState struct {
	last     Coordinate
	haveLast bool
}

// HasChanged reports whether c is at a different position than the last stored coordinate.
// Accuracy changes alone do not count.
func (s *GeolocationState) HasChanged(c Coordinate) bool {
	if !s.haveLast {
		return true
	}
	return s.last.Lat != c.Lat || s.last.Lon != c.Lon
}

// Update stores c as the last known coordinate.
func (s *GeolocationState) Update(c Coordinate) {
	s.last = c
	s.haveLast = true
}
