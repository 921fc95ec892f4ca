// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Orchestrator runs all providers and publishes their results on the bus.
type Orchestrator struct {
	Bus       *GeoBus
	Providers []Provider
}

// Track runs all providers for key until ctx is done.
func (o *Orchestrator) Track(ctx context.Context, key string) {
	var wg sync.WaitGroup
	for _, p := range o.Providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			o.trackProvider(ctx, p, key)
		}(p)
	}
	<-ctx.Done()
	wg.Wait()
}

// trackProvider restarts the stream of p with an increasing backoff whenever it ends.
func (o *Orchestrator) trackProvider(ctx context.Context, p Provider, key string) {
	backoff := initialBackoff
	for {
		lookupChan := o.safeLookup(ctx, p, key)
		if lookupChan != nil {
			o.consume(ctx, lookupChan, &backoff)
		}
		if ctx.Err() != nil {
			return
		}
		o.Bus.logger.Debug("geolocation provider stream ended, restarting", slog.String("provider", p.Name()),
			slog.Duration("backoff", backoff))
		if !sleepOrDone(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

// consume publishes results until the stream closes or ctx is done.
func (o *Orchestrator) consume(ctx context.Context, lookupChan <-chan Result, backoff *time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-lookupChan:
			if !ok {
				return
			}
			o.Bus.Publish(r)
			*backoff = initialBackoff
		}
	}
}

// safeLookup invokes LookupStream and recovers from a panicking provider.
func (o *Orchestrator) safeLookup(ctx context.Context, provider Provider, key string) (ch <-chan Result) {
	defer func() { _ = recover() }()
	return provider.LookupStream(ctx, key)
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d *= 2; d > maxBackoff {
		return maxBackoff
	}
	return d
}
