// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/waybar-prayertimes/internal/geocode"
	"github.com/wneessen/waybar-prayertimes/internal/http"
	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

const (
	APIReverseEndpoint = "https://api.geocode.earth/v1/reverse"
	APISearchEndpoint  = "https://api.geocode.earth/v1/search"
	APITimeout         = time.Second * 10
	name               = "geocode-earth"
)

var ErrMissingAPIKey = errors.New("geocode.earth requires an API key")

type GeocodeEarth struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Features []Feature `json:"features"`
	Type     string    `json:"type"`
}

type Feature struct {
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
	Type       string     `json:"type"`
}

// Geometry is a GeoJSON point. Coordinates are ordered longitude, latitude.
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
}

type Properties struct {
	DisplayName  string `json:"label"`
	City         string `json:"locality"`
	CityDistrict string `json:"county"`
	Country      string `json:"country"`
	Municipality string `json:"neighbourhood"`
	Postcode     string `json:"postalcode"`
	State        string `json:"region"`
}

func New(client *http.Client, lang language.Tag, apikey string) (*GeocodeEarth, error) {
	if apikey == "" {
		return nil, ErrMissingAPIKey
	}
	return &GeocodeEarth{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}, nil
}

func (g *GeocodeEarth) Name() string {
	return name
}

func (g *GeocodeEarth) Reverse(ctx context.Context, coords prayer.Coordinates) (geocode.Address, error) {
	query := url.Values{}
	query.Set("point.lat", strconv.FormatFloat(coords.Latitude, 'f', 6, 64))
	query.Set("point.lon", strconv.FormatFloat(coords.Longitude, 'f', 6, 64))
	query.Set("size", "1")

	response, err := g.get(ctx, APIReverseEndpoint, query)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to retrieve address details from geocode.earth API: %w", err)
	}
	if len(response.Features) < 1 {
		return geocode.Address{Latitude: coords.Latitude, Longitude: coords.Longitude}, nil
	}

	result := response.Features[0].Properties
	return geocode.Address{
		AddressFound: true,
		Latitude:     coords.Latitude,
		Longitude:    coords.Longitude,
		DisplayName:  result.DisplayName,
		Country:      result.Country,
		State:        result.State,
		Municipality: result.Municipality,
		CityDistrict: result.CityDistrict,
		Postcode:     result.Postcode,
		City:         result.City,
	}, nil
}

// Search returns the coordinates of the best match for query.
func (g *GeocodeEarth) Search(ctx context.Context, query string) (prayer.Coordinates, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return prayer.Coordinates{}, geocode.ErrNotFound
	}
	params := url.Values{}
	params.Set("text", query)
	params.Set("size", "1")

	response, err := g.get(ctx, APISearchEndpoint, params)
	if err != nil {
		return prayer.Coordinates{}, fmt.Errorf("failed to search place from geocode.earth API: %w", err)
	}
	if len(response.Features) < 1 {
		return prayer.Coordinates{}, fmt.Errorf("%w: %q", geocode.ErrNotFound, query)
	}
	point := response.Features[0].Geometry.Coordinates
	if len(point) != 2 {
		return prayer.Coordinates{}, fmt.Errorf("invalid geometry in geocode.earth API response: %v", point)
	}
	return prayer.Coordinates{Latitude: point[1], Longitude: point[0]}, nil
}

func (g *GeocodeEarth) get(ctx context.Context, endpoint string, query url.Values) (Response, error) {
	var response Response
	query.Set("api_key", g.apikey)
	query.Set("lang", g.lang.String())

	code, err := g.http.GetWithTimeout(ctx, endpoint, &response, query, nil, APITimeout)
	if err != nil {
		return response, err
	}
	if code != 200 {
		return response, fmt.Errorf("received non-positive response code: %d", code)
	}
	return response, nil
}
