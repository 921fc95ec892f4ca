// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter turns a schedule snapshot into the text and tooltip shown in the status bar.
package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"
	"github.com/wneessen/go-moonphase"

	"github.com/wneessen/waybar-prayertimes/internal/config"
	"github.com/wneessen/waybar-prayertimes/internal/geocode"
	"github.com/wneessen/waybar-prayertimes/internal/i18n"
	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
)

// PrayerView is a single prayer row of the rendered schedule.
type PrayerView struct {
	Key        prayer.Key
	Label      string
	Time       string
	At         time.Time
	IsNext     bool
	Alarm      schedule.AlarmConfig
	Overridden bool
	Offset     int
}

type TemplateContext struct {
	Latitude  float64
	Longitude float64
	Address   geocode.Address

	Date       time.Time
	Method     prayer.CalculationMethod
	MethodName string
	Prayers    []PrayerView
	Next       PrayerView
	Countdown  string
	Remaining  time.Duration
	Qibla      int

	SunriseTime   time.Time
	SunsetTime    time.Time
	MoonPhase     string
	MoonPhaseIcon string

	AlarmActive bool
	Alarm       schedule.AlarmEvent
}

type Presenter struct {
	TextTemplate       *template.Template
	AltTextTemplate    *template.Template
	TooltipTemplate    *template.Template
	AltTooltipTemplate *template.Template

	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
}

// New parses the configured templates and renders them once against a sample context, so that
// broken field references fail at startup instead of on every tick.
func New(conf *config.Config, lang *spreak.Localizer) (*Presenter, error) {
	collection, err := humanize.New(humanize.WithLocale(de.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create humanizer: %w", err)
	}
	pres := &Presenter{
		localizer: lang,
		humanizer: collection.CreateHumanizer(i18n.Language(conf.Locale)),
	}

	templates := []struct {
		name   string
		text   string
		target **template.Template
	}{
		{"text", conf.Templates.Text, &pres.TextTemplate},
		{"alt_text", conf.Templates.AltText, &pres.AltTextTemplate},
		{"tooltip", conf.Templates.Tooltip, &pres.TooltipTemplate},
		{"alt_tooltip", conf.Templates.AltTooltip, &pres.AltTooltipTemplate},
	}
	for _, tpl := range templates {
		parsed, err := template.New(tpl.name).Funcs(pres.templateFuncMap()).Parse(tpl.text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", tpl.name, err)
		}
		*tpl.target = parsed
	}

	if _, err = pres.Render(pres.sampleContext()); err != nil {
		return nil, err
	}
	return pres, nil
}

// BuildContext derives the template context from a snapshot. now anchors the countdown target
// and the astronomical reference data.
func (p *Presenter) BuildContext(snap schedule.Snapshot, addr geocode.Address, now time.Time) TemplateContext {
	loc := now.Location()
	date := snap.Date
	if date.IsZero() {
		date = now
	}

	ctx := TemplateContext{
		Latitude:   snap.Coordinates.Latitude,
		Longitude:  snap.Coordinates.Longitude,
		Address:    addr,
		Date:       date,
		Method:     snap.Method,
		MethodName: p.localizer.Get(snap.Method.Name()),
		Countdown:  snap.State.Countdown,
		Remaining:  snap.State.Remaining,
		Qibla:      prayer.QiblaDirection(snap.Coordinates),
	}

	for _, key := range prayer.Order {
		val := snap.Times.Get(key)
		clock := prayer.Parse(val)
		view := PrayerView{
			Key:    key,
			Label:  key.Label(),
			Time:   val,
			At:     time.Date(date.Year(), date.Month(), date.Day(), clock.Hour, clock.Minute, 0, 0, loc),
			IsNext: key == snap.State.Next,
			Offset: snap.Offsets[key],
		}
		if key != prayer.Sunrise {
			view.Alarm = snap.Alarms.Get(key)
		}
		_, view.Overridden = snap.Overrides[key]
		if view.IsNext {
			// the next prayer may be tomorrow's fajr
			view.At = now.Add(snap.State.Remaining)
			ctx.Next = view
		}
		ctx.Prayers = append(ctx.Prayers, view)
	}

	ctx.SunriseTime, ctx.SunsetTime = sunrise.SunriseSunset(snap.Coordinates.Latitude, snap.Coordinates.Longitude,
		date.Year(), date.Month(), date.Day())
	ctx.SunriseTime, ctx.SunsetTime = ctx.SunriseTime.In(loc), ctx.SunsetTime.In(loc)

	moon := moonphase.New(now)
	ctx.MoonPhase = moon.PhaseName()
	ctx.MoonPhaseIcon = MoonPhaseIcon[ctx.MoonPhase]

	return ctx
}

// WithAlarm marks the context with the currently playing alarm.
func (c TemplateContext) WithAlarm(event schedule.AlarmEvent, active bool) TemplateContext {
	c.AlarmActive = active
	if active {
		c.Alarm = event
	}
	return c
}

// Render executes all four templates. The result is keyed by text, alt_text, tooltip and
// alt_tooltip.
func (p *Presenter) Render(ctx TemplateContext) (map[string]string, error) {
	templates := []struct {
		name string
		tpl  *template.Template
	}{
		{"text", p.TextTemplate},
		{"alt_text", p.AltTextTemplate},
		{"tooltip", p.TooltipTemplate},
		{"alt_tooltip", p.AltTooltipTemplate},
	}

	output := make(map[string]string, len(templates))
	for _, entry := range templates {
		buf := bytes.NewBuffer(nil)
		if err := entry.tpl.Execute(buf, ctx); err != nil {
			return nil, fmt.Errorf("failed to render %s template: %w", entry.name, err)
		}
		output[entry.name] = buf.String()
	}
	return output, nil
}

// Classes returns the CSS classes of the waybar output for ctx.
func Classes(ctx TemplateContext) []string {
	classes := []string{config.AppName, string(ctx.Next.Key)}
	if ctx.AlarmActive {
		classes = append(classes, "alarm")
	}
	if ctx.Remaining > 0 && ctx.Remaining <= ImminentThreshold {
		classes = append(classes, "imminent")
	}
	return classes
}

func (p *Presenter) sampleContext() TemplateContext {
	coords := prayer.Kaaba
	date := time.Date(2025, time.March, 21, 12, 0, 0, 0, time.UTC)
	times, _ := prayer.Calculate(date, coords, prayer.DefaultMethod)
	snap := schedule.Snapshot{
		Available:   true,
		Date:        date,
		Coordinates: coords,
		Method:      prayer.DefaultMethod,
		Calculated:  times,
		Times:       times,
		State:       schedule.Evaluate(times, date),
		Alarms:      schedule.DefaultAlarms(),
	}
	return p.BuildContext(snap, geocode.Address{}, date)
}
