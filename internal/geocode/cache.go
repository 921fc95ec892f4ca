// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

// coordPrecision is the precision used to quantize coordinates (0.01 degrees ≈ 1.1 km)
const coordPrecision = 1e-2

type cacheKey struct {
	Provider string
	LatQ     int32
	LonQ     int32
}

type cacheEntry struct {
	Address Address
	Expiry  time.Time
}

type searchEntry struct {
	Coords prayer.Coordinates
	Found  bool
	Expiry time.Time
}

// CachedGeocoder caches the results of another Geocoder. Found addresses are kept for ttlHit,
// misses for ttlMiss.
type CachedGeocoder struct {
	coder   Geocoder
	clock   clockwork.Clock
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu       sync.RWMutex
	cache    map[cacheKey]cacheEntry
	searches map[string]searchEntry
}

func NewCachedGeocoder(coder Geocoder, clock clockwork.Clock, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedGeocoder{
		coder:    coder,
		clock:    clock,
		ttlHit:   ttlHit,
		ttlMiss:  ttlMiss,
		cache:    make(map[cacheKey]cacheEntry),
		searches: make(map[string]searchEntry),
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Reverse(ctx context.Context, coords prayer.Coordinates) (Address, error) {
	key := newKey(c.coder.Name(), coords.Latitude, coords.Longitude)

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && c.clock.Now().Before(entry.Expiry) {
		addr := entry.Address
		addr.CacheHit = true
		return addr, nil
	}

	addr, err := c.coder.Reverse(ctx, coords)
	if err != nil {
		return addr, err
	}

	ttl := c.ttlHit
	if !addr.AddressFound {
		ttl = c.ttlMiss
	}
	c.mu.Lock()
	c.cache[key] = cacheEntry{Address: addr, Expiry: c.clock.Now().Add(ttl)}
	c.mu.Unlock()

	return addr, nil
}

func (c *CachedGeocoder) Search(ctx context.Context, query string) (prayer.Coordinates, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	c.mu.RLock()
	entry, ok := c.searches[key]
	c.mu.RUnlock()
	if ok && c.clock.Now().Before(entry.Expiry) {
		if !entry.Found {
			return prayer.Coordinates{}, ErrNotFound
		}
		return entry.Coords, nil
	}

	coords, err := c.coder.Search(ctx, query)
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return coords, err
	}

	ttl := c.ttlHit
	if !found {
		ttl = c.ttlMiss
	}
	c.mu.Lock()
	c.searches[key] = searchEntry{Coords: coords, Found: found, Expiry: c.clock.Now().Add(ttl)}
	c.mu.Unlock()

	return coords, err
}

func quantizeCoord(val float64) int32 {
	return int32(math.Round(val / coordPrecision))
}

func newKey(provider string, lat, lon float64) cacheKey {
	return cacheKey{
		Provider: provider,
		LatQ:     quantizeCoord(lat),
		LonQ:     quantizeCoord(lon),
	}
}
