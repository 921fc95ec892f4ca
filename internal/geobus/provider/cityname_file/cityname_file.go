// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cityname_file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wneessen/waybar-prayertimes/internal/geobus"
	"github.com/wneessen/waybar-prayertimes/internal/geocode"
)

const (
	name     = "cityname_file"
	ttlTime  = time.Hour * 12
	pollTime = time.Minute * 5
)

var ErrNoCoordinates = errors.New("no valid city name found in cityname file")

// CitynameFileProvider reads a place name from a file and resolves it with a geocoder. This is
// the manual location search: the user writes the name of a city into the file.
type CitynameFileProvider struct {
	path   string
	coder  geocode.Geocoder
	poller geobus.Poller
}

// NewCitynameFileProvider returns a provider for the file at path.
func NewCitynameFileProvider(path string, coder geocode.Geocoder) (*CitynameFileProvider, error) {
	if coder == nil {
		return nil, errors.New("geocoder is required")
	}
	provider := &CitynameFileProvider{
		coder: coder,
		path:  path,
	}
	provider.poller = geobus.Poller{
		Name:   name,
		Period: pollTime,
		TTL:    ttlTime,
		Locate: provider.readFile,
	}
	return provider, nil
}

func (p *CitynameFileProvider) Name() string {
	return name
}

func (p *CitynameFileProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	return p.poller.Stream(ctx, key)
}

// readFile resolves the first non-comment line of the file that the geocoder knows.
func (p *CitynameFileProvider) readFile(ctx context.Context) (geobus.Coordinate, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to read cityname file %q: %w", p.path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		coords, err := p.coder.Search(ctx, line)
		if err != nil {
			continue
		}
		coord := geobus.FromCoordinates(coords)
		coord.Acc = geobus.AccuracyCity
		return coord, nil
	}
	return geobus.Coordinate{}, ErrNoCoordinates
}
