// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"context"
	"time"
)

// LocateFunc returns the current position of a provider.
type LocateFunc func(ctx context.Context) (Coordinate, error)

// Poller turns a LocateFunc into a result stream. It locates once immediately and then every
// Period, and only emits positional changes.
type Poller struct {
	Name   string
	Period time.Duration
	TTL    time.Duration
	Locate LocateFunc
}

// Stream runs the poll loop until ctx is done. The returned channel is closed afterwards.
func (p Poller) Stream(ctx context.Context, key string) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		state := GeolocationState{}
		firstRun := true

		for {
			if !firstRun {
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.Period):
				}
			}
			firstRun = false

			coord, err := p.Locate(ctx)
			if err != nil || !coord.Valid() {
				continue
			}
			if !state.HasChanged(coord) {
				continue
			}
			state.Update(coord)

			select {
			case <-ctx.Done():
				return
			case out <- p.Result(key, coord):
			}
		}
	}()
	return out
}

// Result composes a Result of this poller for coord.
func (p Poller) Result(key string, coord Coordinate) Result {
	return Result{
		Key:            key,
		Lat:            coord.Lat,
		Lon:            coord.Lon,
		AccuracyMeters: coord.Acc,
		Source:         p.Name,
		At:             time.Now(),
		TTL:            p.TTL,
	}
}
