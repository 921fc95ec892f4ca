// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/waybar-prayertimes/internal/logger"
)

const (
	login1Interface  = "org.freedesktop.login1.Manager"
	login1SleepEvent = "PrepareForSleep"

	resumeDebounce   = 2 // seconds
	signalBufferSize = 8

	networkWakeupDelay = 10 * time.Second
	busRetryDelay      = 5 * time.Second
)

// monitorSleepResume keeps a subscription to logind's PrepareForSleep signal alive until ctx
// is cancelled. A lost system bus connection is re-established after busRetryDelay.
func (s *Service) monitorSleepResume(ctx context.Context) {
	var lastResumeUnix int64
	for {
		conn, signals, err := subscribeSleepSignal()
		if err != nil {
			s.logger.Debug("sleep monitoring unavailable", logger.Err(err))
		} else {
			s.logger.Debug("watching for system resume", slog.String("interface", login1Interface),
				slog.String("member", login1SleepEvent))
			s.watchSleepSignals(ctx, signals, &lastResumeUnix)
			conn.RemoveSignal(signals)
			if err = conn.Close(); err != nil {
				s.logger.Error("failed to close system bus connection", logger.Err(err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(busRetryDelay):
		}
	}
}

// subscribeSleepSignal connects to the system bus and registers a match rule for
// PrepareForSleep. The returned channel is closed by godbus when the connection drops.
func subscribeSleepSignal() (*dbus.Conn, chan *dbus.Signal, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	if err = conn.AddMatchSignal(dbus.WithMatchInterface(login1Interface),
		dbus.WithMatchMember(login1SleepEvent)); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s.%s: %w", login1Interface, login1SleepEvent, err)
	}
	signals := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(signals)
	return conn, signals, nil
}

// watchSleepSignals returns when ctx is done or the signal channel is closed.
func (s *Service) watchSleepSignals(ctx context.Context, signals <-chan *dbus.Signal, lastResumeUnix *int64) {
	for {
		select {
		case <-ctx.Done():
			return
		case sgn, ok := <-signals:
			if !ok {
				return
			}
			s.processSleepSignal(ctx, sgn, lastResumeUnix)
		}
	}
}

// processSleepSignal reacts to PrepareForSleep(false), which logind emits after a wake-up.
func (s *Service) processSleepSignal(ctx context.Context, sgn *dbus.Signal, lastResumeUnix *int64) {
	if sgn == nil || len(sgn.Body) != 1 {
		return
	}
	if sleeping, ok := sgn.Body[0].(bool); !ok || sleeping {
		return
	}

	now := s.clock.Now().Unix()
	if now-atomic.LoadInt64(lastResumeUnix) < resumeDebounce {
		return
	}
	atomic.StoreInt64(lastResumeUnix, now)
	s.handleResume(ctx)
}

// handleResume moves the schedule to the current day right away and reloads the settings once
// the network is back.
func (s *Service) handleResume(ctx context.Context) {
	// the wall clock may have crossed midnight while suspended
	s.recompute(ctx)

	select {
	case <-ctx.Done():
		return
	case <-s.clock.After(networkWakeupDelay):
	}
	s.logger.Debug("resumed from sleep, reloading settings")
	s.syncSettings(ctx)
}
