// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/waybar-prayertimes/internal/geobus"
)

const (
	name        = "gpsd"
	DefaultAddr = "localhost:2947"
	// defaultAccuracy is used if the receiver reports no error estimate.
	defaultAccuracy = 25.0
	fixBufferSize   = 8
)

var ErrConnectionClosed = errors.New("gpsd connection closed")

// Fix is a position report of the GPS receiver.
type Fix struct {
	Lat  float64
	Lon  float64
	Acc  float64
	Mode gpsd.Mode
}

// GeolocationGPSDProvider streams positions from a gpsd daemon.
type GeolocationGPSDProvider struct {
	addr    string
	period  time.Duration
	ttl     time.Duration
	watchFn func(ctx context.Context, fixes chan<- Fix) error
}

// NewGeolocationGPSDProvider returns a provider for the gpsd daemon at addr.
func NewGeolocationGPSDProvider(addr string) *GeolocationGPSDProvider {
	if addr == "" {
		addr = DefaultAddr
	}
	provider := &GeolocationGPSDProvider{
		addr:   addr,
		period: time.Second * 30,
		ttl:    time.Minute * 2,
	}
	provider.watchFn = provider.watch
	return provider
}

func (p *GeolocationGPSDProvider) Name() string {
	return name
}

// LookupStream emits every positional change of a 2D or 3D fix. A lost connection to gpsd is
// retried after the provider period.
func (p *GeolocationGPSDProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	out := make(chan geobus.Result)
	go func() {
		defer close(out)
		state := geobus.GeolocationState{}
		fixes := make(chan Fix, fixBufferSize)
		poller := geobus.Poller{Name: name, TTL: p.ttl}

		for {
			watchDone := make(chan error, 1)
			go func() { watchDone <- p.watchFn(ctx, fixes) }()

		watch:
			for {
				select {
				case <-ctx.Done():
					return
				case <-watchDone:
					break watch
				case fix := <-fixes:
					if fix.Mode < gpsd.Mode2D {
						continue
					}
					coord := toCoordinate(fix)
					if !coord.Valid() || !state.HasChanged(coord) {
						continue
					}
					state.Update(coord)
					select {
					case <-ctx.Done():
						return
					case out <- poller.Result(key, coord):
					}
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(p.period):
			}
		}
	}()
	return out
}

// watch forwards the TPV reports of gpsd to fixes until the connection ends.
func (p *GeolocationGPSDProvider) watch(ctx context.Context, fixes chan<- Fix) error {
	session, err := gpsd.Dial(p.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to gpsd at %q: %w", p.addr, err)
	}
	session.AddFilter("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok {
			return
		}
		fix := Fix{Lat: tpv.Lat, Lon: tpv.Lon, Acc: math.Max(tpv.Epx, tpv.Epy), Mode: tpv.Mode}
		select {
		case fixes <- fix:
		case <-ctx.Done():
		}
	})

	done := session.Watch()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return ErrConnectionClosed
	}
}

func toCoordinate(fix Fix) geobus.Coordinate {
	acc := fix.Acc
	if acc <= 0 || math.IsNaN(acc) {
		acc = defaultAccuracy
	}
	return geobus.Coordinate{
		Lat: geobus.Truncate(fix.Lat, geobus.TruncPrecision),
		Lon: geobus.Truncate(fix.Lon, geobus.TruncPrecision),
		Acc: geobus.Truncate(acc, geobus.TruncPrecision),
	}
}
