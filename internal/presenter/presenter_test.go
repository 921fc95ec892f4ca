// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"text/template"
	"time"

	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-prayertimes/internal/config"
	"github.com/wneessen/waybar-prayertimes/internal/geocode"
	"github.com/wneessen/waybar-prayertimes/internal/i18n"
	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
)

var (
	now    = time.Date(2025, time.March, 21, 17, 7, 0, 0, time.UTC)
	coords = prayer.Coordinates{Latitude: 52.52, Longitude: 13.405}
	addr   = geocode.Address{
		AddressFound: true,
		Latitude:     coords.Latitude,
		Longitude:    coords.Longitude,
		City:         "Berlin",
		Country:      "Germany",
		DisplayName:  "Berlin, Germany",
	}
	times = prayer.Times{
		Fajr:    "05:05 AM",
		Sunrise: "06:20 AM",
		Dhuhr:   "12:25 PM",
		Asr:     "03:45 PM",
		Maghrib: "06:30 PM",
		Isha:    "07:45 PM",
	}
)

func TestNew(t *testing.T) {
	t.Run("creating a new presenter succeeds", func(t *testing.T) {
		conf, lang := testConfLang(t)
		pres, err := New(conf, lang)
		if err != nil {
			t.Fatalf("failed to create presenter: %s", err)
		}
		if pres == nil {
			t.Fatal("expected presenter to be non-nil")
		}
	})
	t.Run("creating presenter with invalid templates fails", func(t *testing.T) {
		tests := []struct {
			name       string
			templateFn func(conf *config.Config)
		}{
			{"text", func(conf *config.Config) { conf.Templates.Text = "{{invalid" }},
			{"alt_text", func(conf *config.Config) { conf.Templates.AltText = "{{invalid" }},
			{"tooltip", func(conf *config.Config) { conf.Templates.Tooltip = "{{invalid" }},
			{"alt_tooltip", func(conf *config.Config) { conf.Templates.AltTooltip = "{{invalid" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				conf, lang := testConfLang(t)
				tt.templateFn(conf)
				_, err := New(conf, lang)
				if err == nil {
					t.Fatal("expected presenter to fail, but didn't")
				}
				wantErr := "failed to parse"
				if !strings.Contains(err.Error(), wantErr) {
					t.Errorf("expected error to contain %q, got %q", wantErr, err)
				}
			})
		}
	})
	t.Run("creating presenter with template execution errors fails", func(t *testing.T) {
		tests := []struct {
			name       string
			templateFn func(conf *config.Config)
		}{
			{"text", func(conf *config.Config) { conf.Templates.Text = "{{.Data}}" }},
			{"alt_text", func(conf *config.Config) { conf.Templates.AltText = "{{.Data}}" }},
			{"tooltip", func(conf *config.Config) { conf.Templates.Tooltip = "{{.Data}}" }},
			{"alt_tooltip", func(conf *config.Config) { conf.Templates.AltTooltip = "{{.Data}}" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				conf, lang := testConfLang(t)
				tt.templateFn(conf)
				_, err := New(conf, lang)
				if err == nil {
					t.Fatal("expected presenter to fail, but didn't")
				}
				wantErr := "failed to render"
				if !strings.Contains(err.Error(), wantErr) {
					t.Errorf("expected error to contain %q, got %q", wantErr, err)
				}
			})
		}
	})
}

func TestPresenter_BuildContext(t *testing.T) {
	t.Run("building context succeeds", func(t *testing.T) {
		pres := testPresenter(t)
		tplCtx := pres.BuildContext(testSnapshot(), addr, now)

		if tplCtx.Address.City != addr.City {
			t.Errorf("expected address city to be %q, got %q", addr.City, tplCtx.Address.City)
		}
		if tplCtx.MethodName != "Muslim World League" {
			t.Errorf("unexpected method name: %s", tplCtx.MethodName)
		}
		if len(tplCtx.Prayers) != len(prayer.Order) {
			t.Fatalf("expected %d prayers, got %d", len(prayer.Order), len(tplCtx.Prayers))
		}
		if tplCtx.Next.Key != prayer.Maghrib || !tplCtx.Next.IsNext {
			t.Errorf("expected maghrib to be next, got %+v", tplCtx.Next)
		}
		wantAt := time.Date(2025, time.March, 21, 18, 30, 0, 0, time.UTC)
		if !tplCtx.Next.At.Equal(wantAt) {
			t.Errorf("expected next prayer at %s, got %s", wantAt, tplCtx.Next.At)
		}
		if tplCtx.Countdown != "-01:23:00" {
			t.Errorf("unexpected countdown: %s", tplCtx.Countdown)
		}
		if tplCtx.Qibla != prayer.QiblaDirection(coords) {
			t.Errorf("unexpected qibla: %d", tplCtx.Qibla)
		}
		if tplCtx.SunriseTime.IsZero() || !tplCtx.SunriseTime.Before(tplCtx.SunsetTime) {
			t.Errorf("unexpected sun times: %s / %s", tplCtx.SunriseTime, tplCtx.SunsetTime)
		}
		if _, ok := MoonPhaseIcon[tplCtx.MoonPhase]; !ok {
			t.Errorf("unexpected moon phase: %s", tplCtx.MoonPhase)
		}
	})
	t.Run("prayer rows carry offsets, overrides and alarms", func(t *testing.T) {
		pres := testPresenter(t)
		tplCtx := pres.BuildContext(testSnapshot(), addr, now)
		rows := make(map[prayer.Key]PrayerView)
		for _, row := range tplCtx.Prayers {
			rows[row.Key] = row
		}
		if !rows[prayer.Dhuhr].Overridden {
			t.Error("expected dhuhr to be overridden")
		}
		if rows[prayer.Asr].Offset != 2 {
			t.Errorf("expected asr offset to be 2, got %d", rows[prayer.Asr].Offset)
		}
		if !rows[prayer.Fajr].Alarm.Enabled {
			t.Error("expected fajr alarm to be enabled")
		}
		if rows[prayer.Sunrise].Alarm.Enabled || rows[prayer.Sunrise].Alarm.Sound != "" {
			t.Error("expected sunrise to carry no alarm")
		}
		wantFajr := time.Date(2025, time.March, 21, 5, 5, 0, 0, time.UTC)
		if !rows[prayer.Fajr].At.Equal(wantFajr) {
			t.Errorf("expected fajr at %s, got %s", wantFajr, rows[prayer.Fajr].At)
		}
	})
	t.Run("next prayer after isha is tomorrow's fajr", func(t *testing.T) {
		pres := testPresenter(t)
		late := time.Date(2025, time.March, 21, 22, 0, 0, 0, time.UTC)
		snap := testSnapshot()
		snap.State = schedule.Evaluate(snap.Times, late)
		tplCtx := pres.BuildContext(snap, addr, late)
		wantAt := time.Date(2025, time.March, 22, 5, 5, 0, 0, time.UTC)
		if tplCtx.Next.Key != prayer.Fajr || !tplCtx.Next.At.Equal(wantAt) {
			t.Errorf("expected fajr at %s, got %s at %s", wantAt, tplCtx.Next.Key, tplCtx.Next.At)
		}
	})
}

func TestPresenter_Render(t *testing.T) {
	t.Run("rendering succeeds", func(t *testing.T) {
		pres := testPresenter(t)
		outMap, err := pres.Render(pres.BuildContext(testSnapshot(), addr, now))
		if err != nil {
			t.Fatalf("failed to render: %s", err)
		}
		if len(outMap) != 4 {
			t.Errorf("expected output map to have length 4, got %d", len(outMap))
		}
		if want := "Maghrib -01:23:00"; outMap["text"] != want {
			t.Errorf("expected text output to be %q, got %q", want, outMap["text"])
		}
		if want := "Maghrib 06:30 PM"; outMap["alt_text"] != want {
			t.Errorf("expected alt_text output to be %q, got %q", want, outMap["alt_text"])
		}

		wantTooltip := []string{
			"Berlin, Germany\nMuslim World League\n\n",
			"  Fajr     05:05 AM 🔔\n",
			"  Sunrise  06:20 AM\n",
			"▸ Maghrib  06:30 PM\n",
			fmt.Sprintf("🕋 Qibla: %d°\n", prayer.QiblaDirection(coords)),
			"🌅 ",
		}
		for _, want := range wantTooltip {
			if !strings.Contains(outMap["tooltip"], want) {
				t.Errorf("expected tooltip to contain %q, got %q", want, outMap["tooltip"])
			}
		}
		wantAltTooltip := []string{
			"Dhuhr    12:25 PM (Custom)\n",
			"Asr      03:45 PM (+2m)\n",
			"Isha     07:45 PM\n",
		}
		for _, want := range wantAltTooltip {
			if !strings.Contains(outMap["alt_tooltip"], want) {
				t.Errorf("expected alt_tooltip to contain %q, got %q", want, outMap["alt_tooltip"])
			}
		}
	})
	t.Run("rendering german labels", func(t *testing.T) {
		conf, err := config.New()
		if err != nil {
			t.Fatalf("failed to create config: %s", err)
		}
		conf.Locale = "de-DE"
		lang, err := i18n.New(conf.Locale)
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		pres, err := New(conf, lang)
		if err != nil {
			t.Fatalf("failed to create presenter: %s", err)
		}
		snap := testSnapshot()
		snap.State = schedule.Evaluate(snap.Times, time.Date(2025, time.March, 21, 19, 0, 0, 0, time.UTC))
		outMap, err := pres.Render(pres.BuildContext(snap, addr, now))
		if err != nil {
			t.Fatalf("failed to render: %s", err)
		}
		if want := "Ischa 07:45 PM"; outMap["alt_text"] != want {
			t.Errorf("expected alt_text output to be %q, got %q", want, outMap["alt_text"])
		}
		if !strings.Contains(outMap["tooltip"], "Islamische Weltliga") {
			t.Errorf("expected localized method name in tooltip, got %q", outMap["tooltip"])
		}
	})
	t.Run("rendering with invalid templates fails", func(t *testing.T) {
		tests := []struct {
			name   string
			target func(*Presenter) **template.Template
		}{
			{"text", func(p *Presenter) **template.Template { return &p.TextTemplate }},
			{"alt_text", func(p *Presenter) **template.Template { return &p.AltTextTemplate }},
			{"tooltip", func(p *Presenter) **template.Template { return &p.TooltipTemplate }},
			{"alt_tooltip", func(p *Presenter) **template.Template { return &p.AltTooltipTemplate }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				pres := testPresenter(t)
				tpl, err := template.New(tt.name).Parse("{{.Data}}")
				if err != nil {
					t.Fatalf("failed to parse template: %s", err)
				}
				*tt.target(pres) = tpl
				if _, err = pres.Render(pres.BuildContext(testSnapshot(), addr, now)); err == nil {
					t.Error("expected rendering to fail, but didn't")
				}
			})
		}
	})
}

func TestClasses(t *testing.T) {
	pres := testPresenter(t)
	t.Run("next prayer is a class", func(t *testing.T) {
		classes := Classes(pres.BuildContext(testSnapshot(), addr, now))
		if !slices.Equal(classes, []string{config.AppName, "maghrib"}) {
			t.Errorf("unexpected classes: %v", classes)
		}
	})
	t.Run("active alarm and imminent prayer", func(t *testing.T) {
		soon := time.Date(2025, time.March, 21, 18, 20, 0, 0, time.UTC)
		snap := testSnapshot()
		snap.State = schedule.Evaluate(snap.Times, soon)
		event := schedule.AlarmEvent{Key: prayer.Asr, Label: "Asr", Sound: schedule.SoundAdhan, At: soon}
		tplCtx := pres.BuildContext(snap, addr, soon).WithAlarm(event, true)
		classes := Classes(tplCtx)
		if !slices.Contains(classes, "alarm") || !slices.Contains(classes, "imminent") {
			t.Errorf("unexpected classes: %v", classes)
		}
		if tplCtx.Alarm.Key != prayer.Asr {
			t.Errorf("expected alarm to be asr, got %s", tplCtx.Alarm.Key)
		}
	})
	t.Run("inactive alarm is not set", func(t *testing.T) {
		tplCtx := pres.BuildContext(testSnapshot(), addr, now).WithAlarm(schedule.AlarmEvent{Key: prayer.Asr}, false)
		if tplCtx.AlarmActive || tplCtx.Alarm.Key != "" {
			t.Errorf("expected no alarm, got %+v", tplCtx.Alarm)
		}
	})
}

func TestPresenter_loc(t *testing.T) {
	t.Run("localized value is found", func(t *testing.T) {
		pres := testPresenter(t)
		if got := pres.loc("maghrib"); got != "Maghrib" {
			t.Errorf("failed to get localized value: got %s, want %s", got, "Maghrib")
		}
		if got := pres.loc("Waxing Gibbous"); got != "Waxing gibbous" {
			t.Errorf("failed to get localized value: got %s, want %s", got, "Waxing gibbous")
		}
	})
	t.Run("localized value is not found", func(t *testing.T) {
		pres := testPresenter(t)
		want := "Tahajjud"
		if got := pres.loc(want); got != want {
			t.Errorf("failed to get localized value: got %s, want %s", got, want)
		}
	})
}

func TestPresenter_timeFormat(t *testing.T) {
	pres := new(Presenter)
	if got := pres.timeFormat(now, time.RFC3339); got != now.Format(time.RFC3339) {
		t.Errorf("failed to get time format: got %s, want %s", got, now.Format(time.RFC3339))
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		val   string
		width int
		want  string
	}{
		{"short", "Asr", 8, "Asr     "},
		{"exact", "Maghrib", 7, "Maghrib"},
		{"longer", "Sonnenaufgang", 8, "Sonnenaufgang"},
		{"wide runes", "日本", 6, "日本  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pad(tt.val, tt.width); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func testSnapshot() schedule.Snapshot {
	alarms := schedule.DefaultAlarms()
	alarms[prayer.Fajr] = schedule.AlarmConfig{Enabled: true, Sound: schedule.SoundAdhan}
	return schedule.Snapshot{
		Available:   true,
		Date:        now,
		Coordinates: coords,
		Method:      prayer.MWL,
		Calculated:  times,
		Times:       times,
		State:       schedule.Evaluate(times, now),
		Offsets:     prayer.Offsets{prayer.Asr: 2},
		Overrides:   prayer.CustomTimes{prayer.Dhuhr: "12:25 PM"},
		Alarms:      alarms,
	}
}

func testPresenter(t *testing.T) *Presenter {
	t.Helper()
	conf, lang := testConfLang(t)
	pres, err := New(conf, lang)
	if err != nil {
		t.Fatalf("failed to create presenter: %s", err)
	}
	return pres
}

func testConfLang(t *testing.T) (*config.Config, *spreak.Localizer) {
	t.Helper()
	conf, err := config.New()
	if err != nil {
		t.Fatalf("failed to create config: %s", err)
	}
	conf.Locale = "en"
	lang, err := i18n.New(conf.Locale)
	if err != nil {
		t.Fatalf("failed to create i18n provider: %s", err)
	}
	return conf, lang
}
