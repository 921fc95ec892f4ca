// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package prayer computes approximate daily prayer times and merges them with user adjustments.
package prayer

import (
	"errors"
	"strings"
)

// Key identifies one of the six daily reference points.
type Key string

const (
	Fajr    Key = "fajr"
	Sunrise Key = "sunrise"
	Dhuhr   Key = "dhuhr"
	Asr     Key = "asr"
	Maghrib Key = "maghrib"
	Isha    Key = "isha"
)

// Order lists the keys in the order they occur during a day.
var Order = []Key{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

var labels = map[Key]string{
	Fajr:    "Fajr",
	Sunrise: "Sunrise",
	Dhuhr:   "Dhuhr",
	Asr:     "Asr",
	Maghrib: "Maghrib",
	Isha:    "Isha",
}

var (
	ErrUnknownPrayer      = errors.New("unknown prayer")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Label returns the display label of the key, e.g. "Maghrib".
func (k Key) Label() string {
	if label, ok := labels[k]; ok {
		return label
	}
	return string(k)
}

// Valid reports whether k is one of the six known keys.
func (k Key) Valid() bool {
	_, ok := labels[k]
	return ok
}

// ParseKey resolves a prayer name case-insensitively.
func ParseKey(name string) (Key, error) {
	key := Key(strings.ToLower(strings.TrimSpace(name)))
	if !key.Valid() {
		return "", ErrUnknownPrayer
	}
	return key, nil
}

// Coordinates is a position in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid checks that the coordinates are within the plausible WGS84 range.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Times holds the six formatted times of one day.
type Times struct {
	Fajr    string `json:"fajr"`
	Sunrise string `json:"sunrise"`
	Dhuhr   string `json:"dhuhr"`
	Asr     string `json:"asr"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isha"`
}

// Get returns the time string stored for key. Unknown keys yield an empty string.
func (t Times) Get(key Key) string {
	switch key {
	case Fajr:
		return t.Fajr
	case Sunrise:
		return t.Sunrise
	case Dhuhr:
		return t.Dhuhr
	case Asr:
		return t.Asr
	case Maghrib:
		return t.Maghrib
	case Isha:
		return t.Isha
	}
	return ""
}

// Set stores val for key. Unknown keys are ignored.
func (t *Times) Set(key Key, val string) {
	switch key {
	case Fajr:
		t.Fajr = val
	case Sunrise:
		t.Sunrise = val
	case Dhuhr:
		t.Dhuhr = val
	case Asr:
		t.Asr = val
	case Maghrib:
		t.Maghrib = val
	case Isha:
		t.Isha = val
	}
}

// Offsets holds per-prayer minute adjustments. A missing key means no adjustment.
type Offsets map[Key]int

// CustomTimes holds literal user overrides. A present key replaces the computed time.
type CustomTimes map[Key]string

// Clone returns a copy of the offsets.
func (o Offsets) Clone() Offsets {
	c := make(Offsets, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// Clone returns a copy of the custom times.
func (c CustomTimes) Clone() CustomTimes {
	n := make(CustomTimes, len(c))
	for k, v := range c {
		n[k] = v
	}
	return n
}
