// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package alarm plays the alarm sounds of fired prayer alarms and announces them on the desktop.
package alarm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/waybar-prayertimes/internal/logger"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
)

// DefaultAutoStop is the playback ceiling for all sounds except the primary one.
const DefaultAutoStop = time.Second * 120

// Handle controls a running playback.
type Handle interface {
	Stop() error
	// Done is closed once the playback has ended, for whatever reason.
	Done() <-chan struct{}
}

// Backend starts the playback of an audio source.
type Backend interface {
	Play(ctx context.Context, source string, loop bool) (Handle, error)
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Resolver maps a sound to a playable source.
type Resolver interface {
	Resolve(ctx context.Context, sound schedule.Sound) string
}

// Options configures a Player.
type Options struct {
	Backend  Backend
	Notifier Notifier
	Resolver Resolver
	Clock    clockwork.Clock
	AutoStop time.Duration
	// Message renders the notification title and body. Defaults to English texts.
	Message func(schedule.AlarmEvent) (string, string)
}

// Player owns the single active alarm. Triggering a new alarm stops the previous one.
type Player struct {
	mu       sync.Mutex
	backend  Backend
	notifier Notifier
	resolver Resolver
	clock    clockwork.Clock
	autoStop time.Duration
	message  func(schedule.AlarmEvent) (string, string)
	logger   *logger.Logger

	active *activeAlarm
	gen    uint64
	// issued counts Trigger calls. A trigger that is overtaken while it resolves its sound
	// does not start playback.
	issued uint64
}

type activeAlarm struct {
	event  schedule.AlarmEvent
	handle Handle
	timer  clockwork.Timer
	gen    uint64
}

// NewPlayer returns a Player. A missing clock defaults to the real clock, a missing auto-stop
// duration to DefaultAutoStop.
func NewPlayer(log *logger.Logger, opts Options) *Player {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.AutoStop <= 0 {
		opts.AutoStop = DefaultAutoStop
	}
	if opts.Message == nil {
		opts.Message = defaultMessage
	}
	return &Player{
		backend:  opts.Backend,
		notifier: opts.Notifier,
		resolver: opts.Resolver,
		clock:    opts.Clock,
		autoStop: opts.AutoStop,
		message:  opts.Message,
		logger:   log,
	}
}

// Trigger announces the alarm and starts its sound. Notification and playback failures are
// logged and never returned; the alarm counts as fired either way. When triggers overlap, the
// one issued last owns the playback.
func (p *Player) Trigger(ctx context.Context, event schedule.AlarmEvent) {
	if !event.Sound.Valid() {
		event.Sound = schedule.PrimarySound
	}
	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.mu.Unlock()

	p.notify(ctx, event)

	source := string(event.Sound)
	if p.resolver != nil {
		source = p.resolver.Resolve(ctx, event.Sound)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.issued {
		p.logger.Debug("alarm superseded by a later alarm", logger.Prayer(event.Key))
		return
	}
	p.stopLocked()
	if p.backend == nil {
		return
	}

	// Every sound loops. Only the primary sound is allowed to run until it is dismissed.
	handle, err := p.backend.Play(ctx, source, true)
	if err != nil {
		p.logger.Warn("alarm sound could not be played", logger.Prayer(event.Key),
			slog.String("sound", string(event.Sound)), logger.Err(err))
		return
	}

	p.gen++
	alarm := &activeAlarm{event: event, handle: handle, gen: p.gen}
	if !event.Sound.Primary() {
		gen := p.gen
		alarm.timer = p.clock.AfterFunc(p.autoStop, func() {
			p.logger.Debug("alarm sound reached its playback limit", logger.Prayer(event.Key),
				slog.Duration("limit", p.autoStop))
			p.stopGen(gen)
		})
	}
	p.active = alarm
	p.logger.Info("alarm triggered", logger.Prayer(event.Key),
		slog.String("sound", string(event.Sound)))

	go p.watch(alarm.gen, handle)
}

// Dismiss stops the active alarm, if any.
func (p *Player) Dismiss() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return false
	}
	p.logger.Debug("alarm dismissed", logger.Prayer(p.active.event.Key))
	p.stopLocked()
	return true
}

// Active returns the event of the currently playing alarm.
func (p *Player) Active() (schedule.AlarmEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return schedule.AlarmEvent{}, false
	}
	return p.active.event, true
}

// watch clears the active alarm once its playback ends on its own.
func (p *Player) watch(gen uint64, handle Handle) {
	<-handle.Done()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil && p.active.gen == gen {
		if p.active.timer != nil {
			p.active.timer.Stop()
		}
		p.active = nil
	}
}

func (p *Player) stopGen(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil && p.active.gen == gen {
		p.stopLocked()
	}
}

// stopLocked stops the active playback. p.mu must be held.
func (p *Player) stopLocked() {
	if p.active == nil {
		return
	}
	if p.active.timer != nil {
		p.active.timer.Stop()
	}
	if err := p.active.handle.Stop(); err != nil {
		p.logger.Warn("failed to stop alarm sound", logger.Err(err))
	}
	p.active = nil
}

func (p *Player) notify(ctx context.Context, event schedule.AlarmEvent) {
	if p.notifier == nil {
		return
	}
	title, body := p.message(event)
	if err := p.notifier.Notify(ctx, title, body); err != nil {
		p.logger.Warn("failed to send alarm notification", logger.Err(err))
	}
}

func defaultMessage(event schedule.AlarmEvent) (string, string) {
	return fmt.Sprintf("Prayer time: %s", event.Label),
		fmt.Sprintf("It is time for %s (%s)", event.Label, event.At.Format("15:04"))
}
