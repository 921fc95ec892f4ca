// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package schedule

import (
	"testing"
	"time"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

var testTimes = prayer.Times{
	Fajr:    "05:00 AM",
	Sunrise: "06:20 AM",
	Dhuhr:   "12:05 PM",
	Asr:     "03:30 PM",
	Maghrib: "06:00 PM",
	Isha:    "07:30 PM",
}

func at(hour, minute, second int) time.Time {
	return time.Date(2025, time.May, 10, hour, minute, second, 0, time.Local)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		next      prayer.Key
		countdown string
	}{
		{"before fajr", at(4, 0, 0), prayer.Fajr, "-01:00:00"},
		{"exactly fajr", at(5, 0, 0), prayer.Sunrise, "-01:20:00"},
		{"between dhuhr and asr", at(13, 0, 30), prayer.Asr, "-02:29:30"},
		{"one second before maghrib", at(17, 59, 59), prayer.Maghrib, "-00:00:01"},
		{"after isha wraps to fajr", at(21, 0, 0), prayer.Fajr, "-08:00:00"},
		{"just before midnight", at(23, 59, 30), prayer.Fajr, "-05:00:30"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state := Evaluate(testTimes, tc.now)
			if state.Next != tc.next {
				t.Errorf("expected next prayer to be %q, got %q", tc.next, state.Next)
			}
			if state.Countdown != tc.countdown {
				t.Errorf("expected countdown to be %q, got %q", tc.countdown, state.Countdown)
			}
		})
	}
	t.Run("remaining matches the countdown", func(t *testing.T) {
		state := Evaluate(testTimes, at(21, 0, 0))
		if state.Remaining != 8*time.Hour {
			t.Errorf("expected 8h remaining, got %s", state.Remaining)
		}
	})
	t.Run("evaluation is side-effect free", func(t *testing.T) {
		times := testTimes
		first := Evaluate(times, at(10, 0, 0))
		second := Evaluate(times, at(10, 0, 0))
		if first != second || times != testTimes {
			t.Error("expected repeated evaluation to be identical")
		}
	})
	t.Run("custom spelling is understood", func(t *testing.T) {
		times := testTimes
		times.Asr = "4:15 pm"
		state := Evaluate(times, at(15, 45, 0))
		if state.Next != prayer.Asr {
			t.Errorf("expected next prayer to be asr, got %q", state.Next)
		}
	})
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "-00:00:00"},
		{-time.Second, "-00:00:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "-01:02:03"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "-23:59:59"},
	}
	for _, tc := range tests {
		if got := FormatCountdown(tc.in); got != tc.want {
			t.Errorf("FormatCountdown(%s): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
