// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package schedule evaluates merged prayer times against the wall clock. It determines the next
// prayer with its countdown, dispatches prayer alarms and keeps all per-location state in a Session.
package schedule

import (
	"fmt"
	"time"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

const minutesPerDay = 24 * 60

// State is the derived evaluation result of a single tick.
type State struct {
	Next      prayer.Key    `json:"next"`
	Countdown string        `json:"countdown"`
	Remaining time.Duration `json:"remaining"`
}

// Evaluate determines the next upcoming prayer and the time left until it. If the current time
// is past the last prayer of the day, the next prayer is Fajr of the following day.
func Evaluate(times prayer.Times, now time.Time) State {
	current := now.Hour()*60 + now.Minute()

	next := prayer.Fajr
	nextMinutes := prayer.ToMinutes(times.Fajr)
	for _, key := range prayer.Order {
		val := times.Get(key)
		if val == "" {
			continue
		}
		minutes := prayer.ToMinutes(val)
		if minutes > current {
			next, nextMinutes = key, minutes
			break
		}
	}

	diff := nextMinutes - current
	if diff <= 0 {
		diff += minutesPerDay
	}
	remaining := time.Duration(diff)*time.Minute - time.Duration(now.Second())*time.Second

	return State{
		Next:      next,
		Countdown: FormatCountdown(remaining),
		Remaining: remaining,
	}
}

// FormatCountdown renders a remaining duration as "-HH:MM:SS".
func FormatCountdown(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	total := int(remaining / time.Second)
	return fmt.Sprintf("-%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
