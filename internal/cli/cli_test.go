// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"

	"github.com/wneessen/waybar-prayertimes/internal/geocode"
	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
	"github.com/wneessen/waybar-prayertimes/internal/store"
)

var mecca = prayer.Coordinates{Latitude: 21.4225, Longitude: 39.8262}

func TestToday(t *testing.T) {
	t.Run("today lists all prayers", func(t *testing.T) {
		env := newTestEnv(t)
		out, err := env.run("today", "--latitude", "21.4225", "--longitude", "39.8262")
		if err != nil {
			t.Fatalf("failed to run today: %s", err)
		}
		if !strings.HasPrefix(out, "2025-03-21  Muslim World League") {
			t.Errorf("unexpected header: %q", out)
		}
		for _, key := range prayer.Order {
			if !strings.Contains(out, key.Label()) {
				t.Errorf("expected output to contain %s, got %q", key.Label(), out)
			}
		}
		if strings.Count(out, "<- -") != 1 {
			t.Errorf("expected exactly one next prayer marker, got %q", out)
		}
	})
	t.Run("today as JSON", func(t *testing.T) {
		env := newTestEnv(t)
		out, err := env.run("today", "--json", "--latitude", "21.4225", "--longitude", "39.8262")
		if err != nil {
			t.Fatalf("failed to run today: %s", err)
		}
		var today todayJSON
		if err = json.Unmarshal([]byte(out), &today); err != nil {
			t.Fatalf("failed to unmarshal JSON: %s", err)
		}
		if today.Date != "2025-03-21" || today.Method != prayer.MWL {
			t.Errorf("unexpected date or method: %+v", today)
		}
		if len(today.Times) != len(prayer.Order) {
			t.Errorf("expected %d times, got %d", len(prayer.Order), len(today.Times))
		}
		if !today.Next.Valid() || !strings.HasPrefix(today.Countdown, "-") {
			t.Errorf("unexpected next prayer: %+v", today)
		}
	})
	t.Run("missing location fails", func(t *testing.T) {
		env := newTestEnv(t)
		if _, err := env.run("today"); !errors.Is(err, ErrNoLocation) {
			t.Errorf("expected error to be %s, got %v", ErrNoLocation, err)
		}
	})
	t.Run("invalid coordinates fail", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.run("today", "--latitude", "91", "--longitude", "0")
		if !errors.Is(err, prayer.ErrInvalidCoordinates) {
			t.Errorf("expected error to be %s, got %v", prayer.ErrInvalidCoordinates, err)
		}
	})
	t.Run("static location from the config", func(t *testing.T) {
		t.Setenv("WAYBARPRAYERTIMES_LOCATION_STATIC", "true")
		t.Setenv("WAYBARPRAYERTIMES_LOCATION_LATITUDE", "52.52")
		t.Setenv("WAYBARPRAYERTIMES_LOCATION_LONGITUDE", "13.405")
		env := newTestEnv(t)
		out, err := env.run("today", "--json")
		if err != nil {
			t.Fatalf("failed to run today: %s", err)
		}
		var today todayJSON
		if err = json.Unmarshal([]byte(out), &today); err != nil {
			t.Fatalf("failed to unmarshal JSON: %s", err)
		}
		if today.Latitude != 52.52 || today.Longitude != 13.405 {
			t.Errorf("expected static location, got %f,%f", today.Latitude, today.Longitude)
		}
	})
}

func TestNext(t *testing.T) {
	t.Run("next prayer with countdown", func(t *testing.T) {
		env := newTestEnv(t)
		out, err := env.run("next", "--latitude", "21.4225", "--longitude", "39.8262")
		if err != nil {
			t.Fatalf("failed to run next: %s", err)
		}
		fields := strings.Fields(out)
		if len(fields) != 4 {
			t.Fatalf("expected label, time and countdown, got %q", out)
		}
		if !strings.HasPrefix(fields[3], "-") {
			t.Errorf("expected countdown, got %q", fields[3])
		}
	})
	t.Run("place name is resolved through the geocoder", func(t *testing.T) {
		env := newTestEnv(t)
		out, err := env.run("next", "--json", "--city", "Mecca")
		if err != nil {
			t.Fatalf("failed to run next: %s", err)
		}
		if env.geocoder.queries != 1 {
			t.Errorf("expected one geocoder search, got %d", env.geocoder.queries)
		}
		var next nextJSON
		if err = json.Unmarshal([]byte(out), &next); err != nil {
			t.Fatalf("failed to unmarshal JSON: %s", err)
		}
		if _, ok := prayer.ParseClock(next.Time); !ok {
			t.Errorf("expected a prayer time, got %q", next.Time)
		}
	})
	t.Run("geocoder failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.geocoder.shouldFail = true
		_, err := env.run("next", "--city", "Atlantis")
		if !errors.Is(err, geocode.ErrNotFound) {
			t.Errorf("expected error to be %s, got %v", geocode.ErrNotFound, err)
		}
	})
}

func TestQibla(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("qibla", "--latitude", "52.52", "--longitude", "13.405")
	if err != nil {
		t.Fatalf("failed to run qibla: %s", err)
	}
	want := prayer.QiblaDirection(prayer.Coordinates{Latitude: 52.52, Longitude: 13.405})
	if out != "Qibla: "+strconv.Itoa(want)+"°\n" {
		t.Errorf("unexpected qibla output: %q", out)
	}

	out, err = env.run("qibla", "--json", "--city", "Berlin")
	if err != nil {
		t.Fatalf("failed to run qibla: %s", err)
	}
	var result map[string]int
	if err = json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to unmarshal JSON: %s", err)
	}
	if result["qibla"] != prayer.QiblaDirection(mecca) {
		t.Errorf("expected qibla of the geocoded location, got %d", result["qibla"])
	}
}

func TestMethod(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("methods")
	if err != nil {
		t.Fatalf("failed to run methods: %s", err)
	}
	if !strings.Contains(out, "* MWL") || strings.Count(out, "\n") != len(prayer.Methods()) {
		t.Errorf("unexpected methods output: %q", out)
	}

	if out, err = env.run("method", "isna"); err != nil {
		t.Fatalf("failed to select method: %s", err)
	}
	if out != "method set to ISNA (Islamic Society of North America)\n" {
		t.Errorf("unexpected output: %q", out)
	}
	if got := env.settings().Method; got != prayer.ISNA {
		t.Errorf("expected stored method to be %s, got %s", prayer.ISNA, got)
	}
	if out, err = env.run("methods"); err != nil || !strings.Contains(out, "* ISNA") {
		t.Errorf("expected ISNA to be selected, got %q (%v)", out, err)
	}
	if out, err = env.run("method"); err != nil || out != "ISNA (Islamic Society of North America)\n" {
		t.Errorf("unexpected current method: %q (%v)", out, err)
	}

	if _, err = env.run("method", "unknown"); !errors.Is(err, prayer.ErrUnknownMethod) {
		t.Errorf("expected error to be %s, got %v", prayer.ErrUnknownMethod, err)
	}
}

func TestOffset(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run("offset", "set", "isha", "5"); err != nil {
		t.Fatalf("failed to set offset: %s", err)
	}
	if got := env.settings().Offsets[prayer.Isha]; got != 5 {
		t.Errorf("expected isha offset to be 5, got %d", got)
	}

	out, err := env.run("offset", "adjust", "isha", "--", "-2")
	if err != nil {
		t.Fatalf("failed to adjust offset: %s", err)
	}
	if out != "Isha offset set to +3 min\n" {
		t.Errorf("unexpected output: %q", out)
	}
	if got := env.settings().Offsets[prayer.Isha]; got != 3 {
		t.Errorf("expected isha offset to be 3, got %d", got)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"unknown prayer", []string{"offset", "set", "tahajjud", "5"}},
		{"invalid minutes", []string{"offset", "set", "isha", "five"}},
		{"missing delta", []string{"offset", "adjust", "isha"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.run(tc.args...); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestOverride(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("override", "set", "isha", "21:15")
	if err != nil {
		t.Fatalf("failed to set override: %s", err)
	}
	if out != "Isha set to 09:15 PM\n" {
		t.Errorf("unexpected output: %q", out)
	}
	if got := env.settings().Overrides[prayer.Isha]; got != "09:15 PM" {
		t.Errorf("expected isha override to be 09:15 PM, got %q", got)
	}

	out, err = env.run("today", "--json", "--latitude", "21.4225", "--longitude", "39.8262")
	if err != nil {
		t.Fatalf("failed to run today: %s", err)
	}
	var today todayJSON
	if err = json.Unmarshal([]byte(out), &today); err != nil {
		t.Fatalf("failed to unmarshal JSON: %s", err)
	}
	if today.Times[prayer.Isha] != "09:15 PM" {
		t.Errorf("expected overridden isha time, got %q", today.Times[prayer.Isha])
	}

	if _, err = env.run("override", "reset", "isha"); err != nil {
		t.Fatalf("failed to reset override: %s", err)
	}
	if _, ok := env.settings().Overrides[prayer.Isha]; ok {
		t.Error("expected isha override to be removed")
	}

	if _, err = env.run("override", "set", "isha", "25:99"); err == nil {
		t.Error("expected invalid time to fail")
	}
}

func TestAlarm(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("alarm", "maghrib", "on", "--sound", "soft")
	if err != nil {
		t.Fatalf("failed to set alarm: %s", err)
	}
	if out != "Maghrib  on  Soft Chime\n" {
		t.Errorf("unexpected output: %q", out)
	}
	want := schedule.AlarmConfig{Enabled: true, Sound: schedule.SoundSoft}
	if got := env.settings().Alarms[prayer.Maghrib]; got != want {
		t.Errorf("expected maghrib alarm to be %+v, got %+v", want, got)
	}

	if _, err = env.run("alarm", "maghrib", "off"); err != nil {
		t.Fatalf("failed to disable alarm: %s", err)
	}
	want.Enabled = false
	if got := env.settings().Alarms[prayer.Maghrib]; got != want {
		t.Errorf("expected sound to be kept when disabling, got %+v", got)
	}

	out, err = env.run("alarm")
	if err != nil {
		t.Fatalf("failed to list alarms: %s", err)
	}
	if strings.Count(out, "\n") != len(prayer.Order)-1 || strings.Contains(out, "Sunrise") {
		t.Errorf("unexpected alarm list: %q", out)
	}

	if _, err = env.run("alarm", "sunrise", "on"); !errors.Is(err, schedule.ErrNoAlarmForSunrise) {
		t.Errorf("expected error to be %s, got %v", schedule.ErrNoAlarmForSunrise, err)
	}
	if _, err = env.run("alarm", "fajr", "on", "--sound", "trumpet"); !errors.Is(err, schedule.ErrInvalidSound) {
		t.Errorf("expected error to be %s, got %v", schedule.ErrInvalidSound, err)
	}
	if _, err = env.run("alarm", "fajr", "maybe"); err == nil {
		t.Error("expected invalid state to fail")
	}
	if _, err = env.run("alarm", "fajr"); err == nil {
		t.Error("expected a single argument to fail")
	}
}

func TestFlagWasSet(t *testing.T) {
	local := pflag.NewFlagSet("local", pflag.ContinueOnError)
	local.String("sound", "", "")
	persistent := pflag.NewFlagSet("persistent", pflag.ContinueOnError)
	persistent.Float64("latitude", 0, "")
	persistent.Float64("longitude", 0, "")
	if err := local.Parse([]string{"--sound", "soft"}); err != nil {
		t.Fatalf("failed to parse flags: %s", err)
	}
	if err := persistent.Parse([]string{"--latitude", "0"}); err != nil {
		t.Fatalf("failed to parse flags: %s", err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{"sound", true},
		{"latitude", true},
		{"longitude", false},
		{"unknown", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := flagWasSet(local, persistent, tc.name); got != tc.want {
				t.Errorf("expected %s to be %t, got %t", tc.name, tc.want, got)
			}
		})
	}
}

type testEnv struct {
	t         *testing.T
	clock     clockwork.Clock
	geocoder  *mockGeocoder
	storeFile string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	storeFile := filepath.Join(home, "settings.json")
	t.Setenv("HOME", home)
	t.Setenv("WAYBARPRAYERTIMES_LOCALE", "en")
	t.Setenv("WAYBARPRAYERTIMES_STORE_FILE", storeFile)
	return &testEnv{
		t:         t,
		clock:     clockwork.NewFakeClockAt(time.Date(2025, time.March, 21, 13, 0, 0, 0, time.Local)),
		geocoder:  &mockGeocoder{},
		storeFile: storeFile,
	}
}

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := newRootCmd(&app{clock: e.clock, geocoder: e.geocoder})
	buf := bytes.NewBuffer(nil)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(e.t.Context())
	return buf.String(), err
}

func (e *testEnv) settings() schedule.Settings {
	e.t.Helper()
	st, err := store.NewFileStore(e.storeFile)
	if err != nil {
		e.t.Fatalf("failed to open store: %s", err)
	}
	settings, err := store.LoadSettings(e.t.Context(), st)
	if err != nil {
		e.t.Fatalf("failed to load settings: %s", err)
	}
	return settings
}

type mockGeocoder struct {
	queries    int
	shouldFail bool
}

func (m *mockGeocoder) Name() string { return "mock geocoder" }

func (m *mockGeocoder) Reverse(context.Context, prayer.Coordinates) (geocode.Address, error) {
	return geocode.Address{}, errors.New("not implemented")
}

func (m *mockGeocoder) Search(context.Context, string) (prayer.Coordinates, error) {
	m.queries++
	if m.shouldFail {
		return prayer.Coordinates{}, geocode.ErrNotFound
	}
	return mecca, nil
}
