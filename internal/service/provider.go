// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/wneessen/waybar-prayertimes/internal/config"
	"github.com/wneessen/waybar-prayertimes/internal/geobus"
	"github.com/wneessen/waybar-prayertimes/internal/geobus/provider/cityname_file"
	"github.com/wneessen/waybar-prayertimes/internal/geobus/provider/geoip"
	"github.com/wneessen/waybar-prayertimes/internal/geobus/provider/geolocation_file"
	"github.com/wneessen/waybar-prayertimes/internal/geobus/provider/gpsd"
	"github.com/wneessen/waybar-prayertimes/internal/geobus/provider/ichnaea"
	"github.com/wneessen/waybar-prayertimes/internal/geocode"
	geocodeearth "github.com/wneessen/waybar-prayertimes/internal/geocode/provider/geocode-earth"
	"github.com/wneessen/waybar-prayertimes/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/waybar-prayertimes/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/waybar-prayertimes/internal/http"
	"github.com/wneessen/waybar-prayertimes/internal/i18n"
	"github.com/wneessen/waybar-prayertimes/internal/logger"
)

func (s *Service) selectGeobusProviders() ([]geobus.Provider, error) {
	httpClient := http.New(s.logger)
	var provider []geobus.Provider

	if !s.config.GeoLocation.DisableGeolocationFile {
		provider = append(provider, geolocation_file.NewGeolocationFileProvider(s.config.GeoLocation.GeoLocationFile))
	}

	if !s.config.GeoLocation.DisableCitynameFile {
		cnf, err := cityname_file.NewCitynameFileProvider(s.config.GeoLocation.CitynameFile, s.geocoder)
		if err != nil {
			return nil, fmt.Errorf("failed to create cityname file provider: %w", err)
		}
		provider = append(provider, cnf)
	}

	if !s.config.GeoLocation.DisableGPSD {
		provider = append(provider, gpsd.NewGeolocationGPSDProvider(s.config.GeoLocation.GPSDAddress))
	}

	if !s.config.GeoLocation.DisableGeoIP {
		gip, err := geoip.NewGeolocationGeoIPProvider(httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create GeoIP provider: %w", err)
		}
		provider = append(provider, gip)
	}

	if !s.config.GeoLocation.DisableICHNAEA {
		mls, err := ichnaea.NewGeolocationICHNAEAProvider(httpClient)
		if err != nil {
			s.logger.Error("failed to create ICHNAEA provider", logger.Err(err))
		} else {
			provider = append(provider, mls)
		}
	}
	if len(provider) == 0 {
		return nil, errors.New("no geolocation providers enabled")
	}

	return provider, nil
}

// NewGeocoder returns the configured geocoder wrapped in a cache. Successful lookups are kept for a
// day, failed ones for half an hour.
func NewGeocoder(conf *config.Config, log *logger.Logger, clock clockwork.Clock) (geocode.Geocoder, error) {
	var coder geocode.Geocoder
	var err error

	client, lang := http.New(log), i18n.Language(conf.Locale)
	switch strings.ToLower(conf.GeoCoder.Provider) {
	case "nominatim":
		coder = nominatim.New(client, lang)
	case "opencage":
		coder, err = opencage.New(client, lang, conf.GeoCoder.APIKey)
	case "geocode-earth":
		coder, err = geocodeearth.New(client, lang, conf.GeoCoder.APIKey)
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.GeoCoder.Provider)
	}
	if err != nil {
		return nil, err
	}
	return geocode.NewCachedGeocoder(coder, clock, cacheHitTTL, cacheMissTTL), nil
}
