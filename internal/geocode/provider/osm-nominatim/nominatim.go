// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
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
	APISearchEndpoint  = "https://nominatim.openstreetmap.org/search"
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	APITimeout         = time.Second * 10
	name               = "osm-nominatim"
)

type Nominatim struct {
	http *http.Client
	lang language.Tag
}

type ReverseResult struct {
	APILat      string  `json:"lat"`
	APILon      string  `json:"lon"`
	Error       string  `json:"error"`
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
}

type SearchResult struct {
	APILat      string `json:"lat"`
	APILon      string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type Address struct {
	Suburb       string `json:"suburb"`
	Municipality string `json:"municipality"`
	CityDistrict string `json:"city_district"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang: lang,
		http: client,
	}
}

func (n *Nominatim) Name() string {
	return name
}

// Reverse looks up the address of coords. Places without an address (e.g. the open sea) are
// returned with AddressFound set to false.
func (n *Nominatim) Reverse(ctx context.Context, coords prayer.Coordinates) (geocode.Address, error) {
	var result ReverseResult
	var err error

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', 6, 64))
	query.Set("zoom", "10")
	query.Set("accept-language", n.lang.String())

	if _, err = n.http.GetWithTimeout(ctx, APIReverseEndpoint, &result, query, nil, APITimeout); err != nil {
		return geocode.Address{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}
	if result.Error != "" {
		return geocode.Address{Latitude: coords.Latitude, Longitude: coords.Longitude}, nil
	}

	address := geocode.Address{
		AddressFound: true,
		DisplayName:  result.DisplayName,
		Country:      result.Address.Country,
		State:        result.Address.State,
		Municipality: result.Address.Municipality,
		CityDistrict: result.Address.CityDistrict,
		Postcode:     result.Address.Postcode,
		City:         firstOf(result.Address.City, result.Address.Town, result.Address.Village),
		Suburb:       result.Address.Suburb,
	}
	address.Latitude, err = strconv.ParseFloat(result.APILat, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	address.Longitude, err = strconv.ParseFloat(result.APILon, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return address, nil
}

// Search returns the coordinates of the best match for query.
func (n *Nominatim) Search(ctx context.Context, query string) (prayer.Coordinates, error) {
	var result []SearchResult
	var err error

	query = strings.TrimSpace(query)
	if query == "" {
		return prayer.Coordinates{}, geocode.ErrNotFound
	}
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("q", query)
	params.Set("accept-language", n.lang.String())

	if _, err = n.http.GetWithTimeout(ctx, APISearchEndpoint, &result, params, nil, APITimeout); err != nil {
		return prayer.Coordinates{}, fmt.Errorf("failed to fetch address details from Nominatim API: %w", err)
	}
	if len(result) < 1 {
		return prayer.Coordinates{}, fmt.Errorf("%w: %q", geocode.ErrNotFound, query)
	}

	var coords prayer.Coordinates
	coords.Latitude, err = strconv.ParseFloat(result[0].APILat, 64)
	if err != nil {
		return coords, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	coords.Longitude, err = strconv.ParseFloat(result[0].APILon, 64)
	if err != nil {
		return coords, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return coords, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
