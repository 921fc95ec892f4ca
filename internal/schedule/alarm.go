// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package schedule

import (
	"errors"
	"strings"
	"time"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

// Sound is one of the fixed alarm sound choices.
type Sound string

const (
	// SoundAdhan is the primary sound. It plays until the alarm is dismissed.
	SoundAdhan Sound = "adhan"
	// SoundSoft is a short chime that is stopped automatically.
	SoundSoft Sound = "soft"
	// SoundBeep is a short beep that is stopped automatically.
	SoundBeep Sound = "beep"

	PrimarySound = SoundAdhan
)

var (
	ErrNoAlarmForSunrise = errors.New("sunrise does not support alarms")
	ErrInvalidSound      = errors.New("invalid alarm sound")
)

var soundNames = map[Sound]string{
	SoundAdhan: "Mecca Adhan",
	SoundSoft:  "Soft Chime",
	SoundBeep:  "Simple Beep",
}

// Sounds lists the sound catalog in display order.
var Sounds = []Sound{SoundAdhan, SoundSoft, SoundBeep}

// ParseSound resolves a sound identifier case-insensitively.
func ParseSound(id string) (Sound, error) {
	sound := Sound(strings.ToLower(strings.TrimSpace(id)))
	if !sound.Valid() {
		return "", ErrInvalidSound
	}
	return sound, nil
}

// Valid reports whether the sound is part of the catalog.
func (s Sound) Valid() bool {
	_, ok := soundNames[s]
	return ok
}

// Name returns the display name of the sound.
func (s Sound) Name() string {
	if name, ok := soundNames[s]; ok {
		return name
	}
	return string(s)
}

// Primary reports whether the sound is the primary designation.
func (s Sound) Primary() bool {
	return s == PrimarySound
}

// AlarmConfig configures the alarm of a single prayer.
type AlarmConfig struct {
	Enabled bool  `json:"enabled"`
	Sound   Sound `json:"sound"`
}

// Alarms maps prayers to their alarm configuration. Sunrise never has an entry.
type Alarms map[prayer.Key]AlarmConfig

// DefaultAlarms returns disabled adhan alarms for all five prayers.
func DefaultAlarms() Alarms {
	alarms := make(Alarms, len(prayer.Order)-1)
	for _, key := range prayer.Order {
		if key == prayer.Sunrise {
			continue
		}
		alarms[key] = AlarmConfig{Enabled: false, Sound: PrimarySound}
	}
	return alarms
}

// Get returns the alarm configuration for key, falling back to the default configuration.
func (a Alarms) Get(key prayer.Key) AlarmConfig {
	if cfg, ok := a[key]; ok {
		return cfg
	}
	return AlarmConfig{Sound: PrimarySound}
}

// Clone returns a copy of the alarms.
func (a Alarms) Clone() Alarms {
	c := make(Alarms, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// ValidateAlarm checks that key may carry an alarm and that cfg uses a known sound.
func ValidateAlarm(key prayer.Key, cfg AlarmConfig) error {
	if !key.Valid() {
		return prayer.ErrUnknownPrayer
	}
	if key == prayer.Sunrise {
		return ErrNoAlarmForSunrise
	}
	if !cfg.Sound.Valid() {
		return ErrInvalidSound
	}
	return nil
}

// AlarmEvent is emitted when the wall clock reaches the time of a prayer with an enabled alarm.
type AlarmEvent struct {
	Key   prayer.Key `json:"key"`
	Label string     `json:"label"`
	Sound Sound      `json:"sound"`
	At    time.Time  `json:"at"`
}

// Dispatcher fires at most one alarm event per wall-clock minute.
//
// A Dispatcher is not safe for concurrent use.
type Dispatcher struct {
	lastTriggered time.Time
}

// Check compares the current minute against the displayed prayer times. It returns an event for
// the first prayer in day order whose time equals the current minute and whose alarm is enabled.
// Once an event fired, no further event is returned for the same minute instant, regardless of
// whether the alarm has been dismissed in the meantime. The same clock time on another day fires
// again.
func (d *Dispatcher) Check(times prayer.Times, alarms Alarms, now time.Time) (AlarmEvent, bool) {
	minute := now.Truncate(time.Minute)
	if minute.Equal(d.lastTriggered) {
		return AlarmEvent{}, false
	}
	current := prayer.FormatTime(now)

	for _, key := range prayer.Order {
		if key == prayer.Sunrise {
			continue
		}
		cfg, ok := alarms[key]
		if !ok || !cfg.Enabled {
			continue
		}
		if !sameMinute(times.Get(key), current) {
			continue
		}

		d.lastTriggered = minute
		sound := cfg.Sound
		if !sound.Valid() {
			sound = PrimarySound
		}
		return AlarmEvent{Key: key, Label: key.Label(), Sound: sound, At: now}, true
	}
	return AlarmEvent{}, false
}

// Reset clears the last-triggered guard.
func (d *Dispatcher) Reset() {
	d.lastTriggered = time.Time{}
}

// sameMinute compares a displayed time with the canonical current minute. Custom times may use a
// different spelling ("5:30 am"), so they are compared in canonical form if they parse.
func sameMinute(displayed, current string) bool {
	if displayed == current {
		return true
	}
	clock, ok := prayer.ParseClock(displayed)
	return ok && clock.String() == current
}
