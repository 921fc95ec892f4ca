// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode resolves coordinates to place names and place names to coordinates.
package geocode

import (
	"context"
	"errors"
	"strings"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

// ErrNotFound is returned by Search if no place matches the query.
var ErrNotFound = errors.New("no place found")

// Address is the result of a reverse lookup.
type Address struct {
	AddressFound bool
	CacheHit     bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	Country      string
	State        string
	Municipality string
	CityDistrict string
	Postcode     string
	City         string
	Suburb       string
}

// Place returns the shortest meaningful name of the address, e.g. "Mecca, Saudi Arabia".
func (a Address) Place() string {
	var parts []string
	for _, part := range []string{a.City, a.Municipality, a.State} {
		if part != "" {
			parts = append(parts, part)
			break
		}
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// Geocoder resolves between coordinates and addresses.
type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords prayer.Coordinates) (Address, error)
	Search(ctx context.Context, query string) (prayer.Coordinates, error)
}
