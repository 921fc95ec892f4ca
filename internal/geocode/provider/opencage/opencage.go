// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/waybar-prayertimes/internal/geocode"
	"github.com/wneessen/waybar-prayertimes/internal/http"
	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

const (
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"
)

var ErrMissingAPIKey = errors.New("opencage requires an API key")

type OpenCage struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

type Result struct {
	Components  Components `json:"components"`
	DisplayName string     `json:"formatted"`
	Geometry    Geometry   `json:"geometry"`
}

type Components struct {
	NormalizedCity string `json:"_normalized_city"`
	City           string `json:"city"`
	CityDistrict   string `json:"city_district"`
	Country        string `json:"country"`
	Municipality   string `json:"municipality"`
	Postcode       string `json:"postcode"`
	State          string `json:"state"`
	Suburb         string `json:"suburb"`
	Town           string `json:"town"`
	Village        string `json:"village"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func New(client *http.Client, lang language.Tag, apikey string) (*OpenCage, error) {
	if apikey == "" {
		return nil, ErrMissingAPIKey
	}
	return &OpenCage{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}, nil
}

func (o *OpenCage) Name() string {
	return name
}

func (o *OpenCage) Reverse(ctx context.Context, coords prayer.Coordinates) (geocode.Address, error) {
	response, err := o.query(ctx, fmt.Sprintf("%f,%f", coords.Latitude, coords.Longitude))
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to retrieve address details from OpenCage API: %w", err)
	}
	if response.TotalResults > 1 {
		return geocode.Address{}, fmt.Errorf("ambiguous amount of results returned for coordinates: %d",
			response.TotalResults)
	}
	if len(response.Results) == 0 {
		return geocode.Address{Latitude: coords.Latitude, Longitude: coords.Longitude}, nil
	}

	result := response.Results[0]
	components := result.Components
	return geocode.Address{
		AddressFound: true,
		Latitude:     result.Geometry.Lat,
		Longitude:    result.Geometry.Lon,
		DisplayName:  result.DisplayName,
		Country:      components.Country,
		State:        components.State,
		Municipality: components.Municipality,
		CityDistrict: components.CityDistrict,
		Postcode:     components.Postcode,
		City: firstOf(components.Village, components.Town, components.NormalizedCity,
			components.City),
		Suburb: components.Suburb,
	}, nil
}

// Search returns the coordinates of the best forward geocoding match for query.
func (o *OpenCage) Search(ctx context.Context, query string) (prayer.Coordinates, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return prayer.Coordinates{}, geocode.ErrNotFound
	}
	response, err := o.query(ctx, query)
	if err != nil {
		return prayer.Coordinates{}, fmt.Errorf("failed to search place from OpenCage API: %w", err)
	}
	if len(response.Results) == 0 {
		return prayer.Coordinates{}, fmt.Errorf("%w: %q", geocode.ErrNotFound, query)
	}
	geometry := response.Results[0].Geometry
	return prayer.Coordinates{Latitude: geometry.Lat, Longitude: geometry.Lon}, nil
}

func (o *OpenCage) query(ctx context.Context, q string) (Response, error) {
	var response Response
	query := url.Values{}
	query.Set("key", o.apikey)
	query.Set("q", q)
	query.Set("limit", "1")
	query.Set("no_annotations", "1")
	query.Set("no_record", "1")
	query.Set("language", o.lang.String())

	code, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, query, nil, APITimeout)
	if err != nil {
		return response, err
	}
	if code != 200 {
		return response, fmt.Errorf("received non-positive response code: %d", code)
	}
	return response, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
