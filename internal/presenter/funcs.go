// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
	"github.com/vorlif/spreak/localize"
)

// ImminentThreshold marks the next prayer as imminent in the output classes.
const ImminentThreshold = time.Minute * 15

// MoonPhaseIcon maps moon phase names to their emoji.
var MoonPhaseIcon = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

var i18nVars = map[string]localize.MsgID{
	"fajr":            "Fajr",
	"sunrise":         "Sunrise",
	"dhuhr":           "Dhuhr",
	"asr":             "Asr",
	"maghrib":         "Maghrib",
	"isha":            "Isha",
	"sunset":          "Sunset",
	"qibla":           "Qibla",
	"custom":          "Custom",
	"new moon":        "New moon",
	"waxing crescent": "Waxing crescent",
	"first quarter":   "First quarter",
	"waxing gibbous":  "Waxing gibbous",
	"full moon":       "Full moon",
	"waning gibbous":  "Waning gibbous",
	"third quarter":   "Third quarter",
	"waning crescent": "Waning crescent",
}

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":    p.timeFormat,
		"localizedTime": p.localizedTime,
		"naturalTime":   p.naturalTime,
		"loc":           p.loc,
		"pad":           pad,
		"lc":            strings.ToLower,
		"uc":            strings.ToUpper,
	}
}

func (p *Presenter) loc(val string) string {
	if raw, ok := i18nVars[strings.ToLower(val)]; ok {
		return p.localizer.Get(raw)
	}
	return val
}

func (p *Presenter) localizedTime(val time.Time) string {
	return p.humanizer.FormatTime(val, humanize.TimeFormat)
}

func (p *Presenter) naturalTime(val time.Time) string {
	return p.humanizer.NaturalTime(val)
}

func (p *Presenter) timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

// pad fills val with spaces up to the given display width. Wide runes count twice.
func pad(val string, width int) string {
	return runewidth.FillRight(val, width)
}
