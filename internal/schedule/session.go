// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/vartype"
)

// Settings are the user-owned, persisted inputs of a Session.
type Settings struct {
	Method    prayer.CalculationMethod `json:"method"`
	Offsets   prayer.Offsets           `json:"offsets"`
	Overrides prayer.CustomTimes       `json:"overrides"`
	Alarms    Alarms                   `json:"alarms"`
}

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		Method:    prayer.DefaultMethod,
		Offsets:   prayer.Offsets{},
		Overrides: prayer.CustomTimes{},
		Alarms:    DefaultAlarms(),
	}
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	return Settings{
		Method:    s.Method,
		Offsets:   s.Offsets.Clone(),
		Overrides: s.Overrides.Clone(),
		Alarms:    s.Alarms.Clone(),
	}
}

// Snapshot is the published view of a Session after a tick.
type Snapshot struct {
	// Available is false as long as no coordinates are known.
	Available   bool
	Date        time.Time
	Coordinates prayer.Coordinates
	Method      prayer.CalculationMethod
	Calculated  prayer.Times
	Times       prayer.Times
	State       State
	Offsets     prayer.Offsets
	Overrides   prayer.CustomTimes
	Alarms      Alarms
}

// Session owns all schedule state of one coordinate and method selection: the injected settings,
// the calculated and merged times of the current day and the alarm guard.
//
// Settings are injected at construction and changed through the setters; persisting them is left
// to the caller. The setters re-merge against the last recomputed day, Recompute moves the session
// to a new day.
type Session struct {
	mu sync.RWMutex

	settings   Settings
	coords     vartype.Variable[prayer.Coordinates]
	date       time.Time
	calculated prayer.Times
	times      prayer.Times
	computed   bool
	dispatcher Dispatcher

	observerID int
	observers  map[int]func(Snapshot)
	alarmFns   []func(AlarmEvent)
}

// NewSession returns a Session for the given settings. It fails if the method is unknown.
func NewSession(settings Settings) (*Session, error) {
	if settings.Method == "" {
		settings.Method = prayer.DefaultMethod
	}
	if !settings.Method.Valid() {
		return nil, fmt.Errorf("failed to create schedule session: %w", prayer.ErrUnknownMethod)
	}
	if settings.Alarms == nil {
		settings.Alarms = DefaultAlarms()
	}
	settings = settings.Clone()

	return &Session{
		settings:  settings,
		observers: make(map[int]func(Snapshot)),
	}, nil
}

// Settings returns a copy of the current settings.
func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// Coordinates returns the active coordinates and whether any are set.
func (s *Session) Coordinates() (prayer.Coordinates, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coords.Get()
}

// SetCoordinates changes the location of the session.
func (s *Session) SetCoordinates(coords prayer.Coordinates) error {
	if !coords.Valid() {
		return prayer.ErrInvalidCoordinates
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coords.Set(coords)
	return s.rebuildLocked()
}

// ClearCoordinates removes the location. The session reports no schedule until new coordinates
// are set.
func (s *Session) ClearCoordinates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coords.Reset()
	s.computed = false
	s.calculated = prayer.Times{}
	s.times = prayer.Times{}
}

// SetMethod selects a different calculation method.
func (s *Session) SetMethod(method prayer.CalculationMethod) error {
	if !method.Valid() {
		return prayer.ErrUnknownMethod
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Method = method
	return s.rebuildLocked()
}

// SetOffset sets the minute offset of a prayer. A zero offset removes the adjustment.
func (s *Session) SetOffset(key prayer.Key, minutes int) error {
	if !key.Valid() {
		return prayer.ErrUnknownPrayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if minutes == 0 {
		delete(s.settings.Offsets, key)
	} else {
		s.settings.Offsets[key] = minutes
	}
	return s.rebuildLocked()
}

// AdjustOffset changes the minute offset of a prayer by delta and returns the new offset.
func (s *Session) AdjustOffset(key prayer.Key, delta int) (int, error) {
	if !key.Valid() {
		return 0, prayer.ErrUnknownPrayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	offset := s.settings.Offsets[key] + delta
	if offset == 0 {
		delete(s.settings.Offsets, key)
	} else {
		s.settings.Offsets[key] = offset
	}
	return offset, s.rebuildLocked()
}

// SetOverride replaces the time of a prayer with a custom 24h "HH:MM" input. The value is stored
// in display form.
func (s *Session) SetOverride(key prayer.Key, input string) error {
	if !key.Valid() {
		return prayer.ErrUnknownPrayer
	}
	display, err := prayer.FromInput(input)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Overrides[key] = display
	return s.rebuildLocked()
}

// ResetOverride removes the custom time of a prayer.
func (s *Session) ResetOverride(key prayer.Key) error {
	if !key.Valid() {
		return prayer.ErrUnknownPrayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings.Overrides, key)
	return s.rebuildLocked()
}

// SetAlarm configures the alarm of a prayer. Sunrise cannot carry an alarm.
func (s *Session) SetAlarm(key prayer.Key, cfg AlarmConfig) error {
	if err := ValidateAlarm(key, cfg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Alarms[key] = cfg
	return nil
}

// Apply replaces all settings at once, e.g. after they were changed by another process.
func (s *Session) Apply(settings Settings) error {
	if !settings.Method.Valid() {
		return prayer.ErrUnknownMethod
	}
	if settings.Alarms == nil {
		settings.Alarms = DefaultAlarms()
	}
	settings = settings.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.rebuildLocked()
}

// Recompute calculates the times for the day of now. Without coordinates it only records the day.
func (s *Session) Recompute(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	y, m, d := now.Date()
	s.date = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return s.rebuildLocked()
}

// Date returns the day the session was last recomputed for.
func (s *Session) Date() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.date
}

// Tick evaluates the schedule at now, dispatches due alarms and publishes the resulting snapshot
// to all subscribers. Tick does not change the day; call Recompute on a date change.
func (s *Session) Tick(now time.Time) Snapshot {
	s.mu.Lock()
	snap := s.snapshotLocked()
	var event AlarmEvent
	var fired bool
	if s.computed {
		snap.State = Evaluate(s.times, now)
		event, fired = s.dispatcher.Check(s.times, s.settings.Alarms, now)
	}
	observers := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	alarmFns := append([]func(AlarmEvent){}, s.alarmFns...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
	if fired {
		for _, fn := range alarmFns {
			fn(event)
		}
	}
	return snap
}

// Snapshot returns the current state without evaluating the clock or dispatching alarms.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive every snapshot published by Tick. The returned function
// removes the subscription.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.observerID
	s.observerID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// OnAlarm registers fn to receive alarm events.
func (s *Session) OnAlarm(fn func(AlarmEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarmFns = append(s.alarmFns, fn)
}

// rebuildLocked recalculates and re-merges the times of the current day. s.mu must be held.
func (s *Session) rebuildLocked() error {
	if !s.coords.IsSet() || s.date.IsZero() {
		s.computed = false
		return nil
	}
	calculated, err := prayer.Calculate(s.date, s.coords.Value(), s.settings.Method)
	if err != nil {
		s.computed = false
		return err
	}
	s.calculated = calculated
	s.times = prayer.Merge(calculated, s.settings.Offsets, s.settings.Overrides)
	s.computed = true
	return nil
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Available:   s.computed,
		Date:        s.date,
		Coordinates: s.coords.Value(),
		Method:      s.settings.Method,
		Calculated:  s.calculated,
		Times:       s.times,
		Offsets:     s.settings.Offsets.Clone(),
		Overrides:   s.settings.Overrides.Clone(),
		Alarms:      s.settings.Alarms.Clone(),
	}
}
