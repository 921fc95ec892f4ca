// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package prayer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// ClockLayout is the layout of all times produced by this package, e.g. "05:30 PM".
	ClockLayout = "03:04 PM"
	// InputLayout is the 24h layout used for editing custom times, e.g. "17:30".
	InputLayout = "15:04"

	minutesPerDay = 24 * 60
)

// Handles "5:30 PM", "05:30 PM", "17:30" and "5:30 p.m."
var clockPattern = regexp.MustCompile(`(\d+):(\d+)\s*([AaPp][Mm.]{0,2})?`)

// Clock is a time of day in 24h notation.
type Clock struct {
	Hour   int
	Minute int
}

// Minutes returns the minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// String formats the clock with ClockLayout.
func (c Clock) String() string {
	return Format(c.Hour, c.Minute)
}

// ParseClock parses a human time string. The boolean is false if the text holds no
// recognizable time.
func ParseClock(text string) (Clock, bool) {
	match := clockPattern.FindStringSubmatch(text)
	if match == nil {
		return Clock{}, false
	}
	hour, err := strconv.Atoi(match[1])
	if err != nil {
		return Clock{}, false
	}
	minute, err := strconv.Atoi(match[2])
	if err != nil {
		return Clock{}, false
	}

	switch strings.ToLower(strings.ReplaceAll(match[3], ".", "")) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute}, true
}

// Parse is the permissive variant of ParseClock. Unparsable text yields midnight.
func Parse(text string) Clock {
	clock, _ := ParseClock(text)
	return clock
}

// ToMinutes returns the minutes since midnight of a human time string.
func ToMinutes(text string) int {
	return Parse(text).Minutes()
}

// Format renders a 24h hour and minute as "hh:mm AM/PM". Values outside a day are wrapped.
func Format(hour, minute int) string {
	total := ((hour*60+minute)%minutesPerDay + minutesPerDay) % minutesPerDay
	return time.Date(2000, time.January, 1, total/60, total%60, 0, 0, time.UTC).Format(ClockLayout)
}

// FormatTime renders the wall clock of t like Format.
func FormatTime(t time.Time) string {
	return Format(t.Hour(), t.Minute())
}

// ToInput converts a human time string to the 24h "HH:MM" form.
func ToInput(text string) string {
	clock := Parse(text)
	return fmt.Sprintf("%02d:%02d", clock.Hour, clock.Minute)
}

// FromInput converts a 24h "HH:MM" string back to the display form.
func FromInput(input string) (string, error) {
	t, err := time.Parse(InputLayout, strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("failed to parse time %q: %w", input, err)
	}
	return FormatTime(t), nil
}
