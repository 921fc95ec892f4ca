// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geolocation_file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/waybar-prayertimes/internal/geobus"
)

const (
	name = "geolocation_file"
)

var ErrNoCoordinates = errors.New("no valid coordinates found in geolocation file")

// GeolocationFileProvider reads a "latitude,longitude" line from a file and emits it whenever
// the position in the file changes.
type GeolocationFileProvider struct {
	path     string
	poller   geobus.Poller
	locateFn func() (lat, lon float64, err error)
}

// NewGeolocationFileProvider returns a provider for the file at path.
func NewGeolocationFileProvider(path string) *GeolocationFileProvider {
	provider := &GeolocationFileProvider{path: path}
	provider.locateFn = provider.readFile
	provider.poller = geobus.Poller{
		Name:   name,
		Period: time.Minute * 2,
		TTL:    time.Hour * 1,
		Locate: provider.locate,
	}
	return provider
}

func (p *GeolocationFileProvider) Name() string {
	return name
}

func (p *GeolocationFileProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	return p.poller.Stream(ctx, key)
}

func (p *GeolocationFileProvider) locate(context.Context) (geobus.Coordinate, error) {
	lat, lon, err := p.locateFn()
	if err != nil {
		return geobus.Coordinate{}, err
	}
	return geobus.Coordinate{Lat: lat, Lon: lon, Acc: geobus.AccuracyZip}, nil
}

// readFile returns the first valid coordinate line of the file. Lines starting with # are
// comments.
func (p *GeolocationFileProvider) readFile() (lat, lon float64, err error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read geolocation file %q: %w", p.path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		coords := strings.Split(line, ",")
		if len(coords) != 2 {
			continue
		}
		lat, err = strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil || lat < -90 || lat > 90 {
			continue
		}
		lon, err = strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil || lon < -180 || lon > 180 {
			continue
		}
		return lat, lon, nil
	}
	return 0, 0, ErrNoCoordinates
}
