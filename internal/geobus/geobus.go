// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geobus collects positions from several geolocation providers and publishes the best one
// to its subscribers.
package geobus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wneessen/waybar-prayertimes/internal/logger"
	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

const accuracyEpsilon = 1e-6

const (
	AccuracyCountry = 300000
	AccuracyRegion  = 100000
	AccuracyCity    = 15000
	AccuracyZip     = 3000
	AccuracyUnknown = 1000000
	TruncPrecision  = 4
)

// Provider is a source of geolocation results.
type Provider interface {
	Name() string
	LookupStream(ctx context.Context, key string) <-chan Result
}

// GeoBus keeps the best result per key and fans it out to the subscribers of that key.
type GeoBus struct {
	mu          sync.RWMutex
	logger      *logger.Logger
	now         func() time.Time
	best        map[string]Result
	subscribers map[string]map[chan Result]struct{}
}

// Result is a position published by a provider.
type Result struct {
	Key            string
	Lat, Lon       float64
	AccuracyMeters float64
	Source         string
	At             time.Time
	TTL            time.Duration
}

// Coordinate returns the position of the result.
func (r Result) Coordinate() Coordinate {
	return Coordinate{Lat: r.Lat, Lon: r.Lon, Acc: r.AccuracyMeters}
}

// Coordinates returns the position of the result for the prayer time calculation.
func (r Result) Coordinates() prayer.Coordinates {
	return r.Coordinate().Coordinates()
}

// BetterThan reports whether r is more accurate than prev without being older.
func (r Result) BetterThan(prev Result) bool {
	if prev.Key == "" {
		return true
	}
	if r.At.Before(prev.At) {
		return false
	}
	return r.AccuracyMeters < prev.AccuracyMeters-accuracyEpsilon
}

// expiredAt checks if the Result has exceeded its time-to-live at now.
func (r Result) expiredAt(now time.Time) bool {
	return r.TTL > 0 && now.Sub(r.At) > r.TTL
}

// New returns an empty GeoBus.
func New(log *logger.Logger) *GeoBus {
	return &GeoBus{
		logger:      log,
		now:         time.Now,
		best:        make(map[string]Result),
		subscribers: make(map[string]map[chan Result]struct{}),
	}
}

// NewOrchestrator returns an Orchestrator that feeds the results of providers into the bus.
func (b *GeoBus) NewOrchestrator(providers []Provider) *Orchestrator {
	return &Orchestrator{
		Bus:       b,
		Providers: providers,
	}
}

// Subscribe returns a channel receiving the results for key and a function to unsubscribe.
// A still valid best result is delivered immediately.
func (b *GeoBus) Subscribe(key string, size int) (<-chan Result, func()) {
	if size < 1 {
		size = 1
	}
	resultChan := make(chan Result, size)
	b.mu.Lock()
	if _, ok := b.subscribers[key]; !ok {
		b.subscribers[key] = make(map[chan Result]struct{})
	}
	b.subscribers[key][resultChan] = struct{}{}
	if best, ok := b.best[key]; ok && !best.expiredAt(b.now()) {
		resultChan <- best
	}
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			if subs, ok := b.subscribers[key]; ok {
				delete(subs, resultChan)
				if len(subs) == 0 {
					delete(b.subscribers, key)
				}
			}
			b.mu.Unlock()
			close(resultChan)
		})
	}

	return resultChan, unsub
}

// Publish offers a result to the bus. It is broadcast if there is no valid previous result, or
// if it is more accurate and at a significantly different position.
func (b *GeoBus) Publish(r Result) {
	if r.AccuracyMeters == 0 || !r.Coordinate().Valid() {
		return
	}
	now := b.now()
	if r.At.IsZero() {
		r.At = now
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	prev, have := b.best[r.Key]
	if !have || prev.expiredAt(now) ||
		(r.BetterThan(prev) && r.Coordinate().PosHasSignificantChange(prev.Coordinate())) {
		b.best[r.Key] = r
		b.logger.Debug("new geolocation published", slog.String("source", r.Source),
			slog.Float64("accuracy", r.AccuracyMeters))
		b.broadcastResult(r)
		return
	}

	// the source of the best result is still alive, so extend its lifetime
	if prev.Source == r.Source {
		prev.At = r.At
		b.best[r.Key] = prev
	}
}

func (b *GeoBus) broadcastResult(r Result) {
	for ch := range b.subscribers[r.Key] {
		select {
		case ch <- r:
		default:
		}
	}
}

// Best returns the best valid result for key.
func (b *GeoBus) Best(key string) (Result, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.best[key]
	return r, ok && !r.expiredAt(b.now())
}
