// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package store persists the user's schedule settings in a simple key-value store.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
)

// Keys under which the settings are stored.
const (
	KeyMethod    = "calculation_method"
	KeyOffsets   = "prayer_offsets"
	KeyOverrides = "custom_prayer_times"
	KeyAlarms    = "prayer_alarms"
)

// ErrNotFound is returned by Get if no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// Store is a string key-value store.
type Store interface {
	Name() string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LoadSettings reads the settings from the store. Missing keys fall back to the defaults and an
// unknown method falls back to the default method.
func LoadSettings(ctx context.Context, st Store) (schedule.Settings, error) {
	return LoadSettingsWith(ctx, st, schedule.DefaultSettings())
}

// LoadSettingsWith is like LoadSettings but falls back to the given defaults.
func LoadSettingsWith(ctx context.Context, st Store, defaults schedule.Settings) (schedule.Settings, error) {
	settings := defaults.Clone()
	if settings.Alarms == nil {
		settings.Alarms = schedule.DefaultAlarms()
	}
	if settings.Offsets == nil {
		settings.Offsets = prayer.Offsets{}
	}
	if settings.Overrides == nil {
		settings.Overrides = prayer.CustomTimes{}
	}

	method, err := get(ctx, st, KeyMethod)
	if err != nil {
		return settings, err
	}
	if method != "" {
		if parsed, err := prayer.ParseMethod(strings.TrimSpace(method)); err == nil {
			settings.Method = parsed
		}
	}

	if err = getJSON(ctx, st, KeyOffsets, &settings.Offsets); err != nil {
		return settings, err
	}
	if err = getJSON(ctx, st, KeyOverrides, &settings.Overrides); err != nil {
		return settings, err
	}

	alarms := schedule.Alarms{}
	if err = getJSON(ctx, st, KeyAlarms, &alarms); err != nil {
		return settings, err
	}
	for key, cfg := range alarms {
		if schedule.ValidateAlarm(key, cfg) != nil {
			continue
		}
		settings.Alarms[key] = cfg
	}

	for key := range settings.Offsets {
		if !key.Valid() {
			delete(settings.Offsets, key)
		}
	}
	for key := range settings.Overrides {
		if !key.Valid() {
			delete(settings.Overrides, key)
		}
	}
	return settings, nil
}

// SaveSettings writes all settings to the store.
func SaveSettings(ctx context.Context, st Store, settings schedule.Settings) error {
	if err := st.Set(ctx, KeyMethod, string(settings.Method)); err != nil {
		return fmt.Errorf("failed to store %s: %w", KeyMethod, err)
	}
	values := map[string]any{
		KeyOffsets:   nonNil(settings.Offsets),
		KeyOverrides: nonNil(settings.Overrides),
		KeyAlarms:    nonNil(settings.Alarms),
	}
	for _, key := range []string{KeyOffsets, KeyOverrides, KeyAlarms} {
		data, err := json.Marshal(values[key])
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		if err = st.Set(ctx, key, string(data)); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
	}
	return nil
}

func get(ctx context.Context, st Store, key string) (string, error) {
	value, err := st.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("failed to read %s from %s store: %w", key, st.Name(), err)
	}
	return value, nil
}

// getJSON decodes the value of key into target. A missing or malformed value leaves target
// untouched.
func getJSON(ctx context.Context, st Store, key string, target any) error {
	value, err := get(ctx, st, key)
	if err != nil || value == "" {
		return err
	}
	_ = json.Unmarshal([]byte(value), target)
	return nil
}

func nonNil[M ~map[K]V, K comparable, V any](m M) M {
	if m == nil {
		return M{}
	}
	return m
}
