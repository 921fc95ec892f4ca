// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/wneessen/waybar-prayertimes/internal/geocode"
	"github.com/wneessen/waybar-prayertimes/internal/http"
	"github.com/wneessen/waybar-prayertimes/internal/logger"
	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/testhelper"
)

const meccaFile = "../../../../testdata/geocode-earth_mecca.json"

var meccaCoords = prayer.Coordinates{Latitude: 21.4225, Longitude: 39.8262}

func TestNew(t *testing.T) {
	t.Run("creating a new provider succeeds", func(t *testing.T) {
		coder := testCoder(t, nil)
		if coder.Name() != name {
			t.Errorf("expected provider name to be %q, got %q", name, coder.Name())
		}
	})
	t.Run("missing API key fails", func(t *testing.T) {
		_, err := New(http.New(logger.NewLogger(slog.LevelError, io.Discard)), language.English, "")
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("expected error to be %s, got %v", ErrMissingAPIKey, err)
		}
	})
}

func TestGeocodeEarth_Reverse(t *testing.T) {
	t.Run("reverse geocoding succeeds", func(t *testing.T) {
		var path, query string
		respond := testhelper.FileResponse(meccaFile, 200)
		coder := testCoder(t, func(req *stdhttp.Request) (*stdhttp.Response, error) {
			path, query = req.URL.Path, req.URL.RawQuery
			return respond(req)
		})
		addr, err := coder.Reverse(t.Context(), meccaCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound || addr.City != "Mecca" || addr.State != "Makkah" {
			t.Errorf("unexpected address: %+v", addr)
		}
		if addr.Latitude != meccaCoords.Latitude {
			t.Errorf("expected the requested latitude, got %f", addr.Latitude)
		}
		if path != "/v1/reverse" {
			t.Errorf("expected reverse endpoint, got %q", path)
		}
		for _, want := range []string{"api_key=test-key", "point.lat=21.422500", "point.lon=39.826200"} {
			if !strings.Contains(query, want) {
				t.Errorf("expected query %q to contain %q", query, want)
			}
		}
	})
	t.Run("places without address are not found", func(t *testing.T) {
		coder := testCoder(t, testhelper.StringResponse(`{"type":"FeatureCollection","features":[]}`, 200))
		addr, err := coder.Reverse(t.Context(), meccaCoords)
		if err != nil {
			t.Fatal(err)
		}
		if addr.AddressFound {
			t.Error("expected address to not be found")
		}
	})
	t.Run("non-positive status code fails", func(t *testing.T) {
		coder := testCoder(t, testhelper.StringResponse(`{}`, 403))
		if _, err := coder.Reverse(t.Context(), meccaCoords); err == nil {
			t.Error("expected reverse lookup to fail")
		}
	})
}

func TestGeocodeEarth_Search(t *testing.T) {
	t.Run("search succeeds", func(t *testing.T) {
		var path string
		respond := testhelper.FileResponse(meccaFile, 200)
		coder := testCoder(t, func(req *stdhttp.Request) (*stdhttp.Response, error) {
			path = req.URL.Path
			return respond(req)
		})
		coords, err := coder.Search(t.Context(), "Mecca")
		if err != nil {
			t.Fatal(err)
		}
		if coords.Latitude != 21.42664 || coords.Longitude != 39.82563 {
			t.Errorf("unexpected coordinates: %+v", coords)
		}
		if path != "/v1/search" {
			t.Errorf("expected search endpoint, got %q", path)
		}
	})
	t.Run("empty result is not found", func(t *testing.T) {
		coder := testCoder(t, testhelper.StringResponse(`{"features":[]}`, 200))
		if _, err := coder.Search(t.Context(), "Atlantis"); !errors.Is(err, geocode.ErrNotFound) {
			t.Errorf("expected error to be %s, got %v", geocode.ErrNotFound, err)
		}
	})
	t.Run("broken geometry fails", func(t *testing.T) {
		coder := testCoder(t, testhelper.StringResponse(`{"features":[{"geometry":{"coordinates":[1]}}]}`, 200))
		if _, err := coder.Search(t.Context(), "Mecca"); err == nil {
			t.Error("expected search to fail")
		}
	})
}

func testCoder(t *testing.T, fn func(*stdhttp.Request) (*stdhttp.Response, error)) *GeocodeEarth {
	t.Helper()
	client := http.New(logger.NewLogger(slog.LevelError, io.Discard))
	if fn != nil {
		client.Transport = testhelper.MockRoundTripper{Fn: fn}
	}
	coder, err := New(client, language.English, "test-key")
	if err != nil {
		t.Fatalf("failed to create geocoder: %s", err)
	}
	return coder
}
