// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package ichnaea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/wneessen/waybar-prayertimes/internal/geobus"
	"github.com/wneessen/waybar-prayertimes/internal/http"
)

const (
	apiEndpoint   = "https://api.beacondb.net/v1/geolocate"
	lookupTimeout = time.Second * 5
	wifiScanTime  = time.Minute * 2
	name          = "ichnaea"
)

// wlanClient is the part of the nl80211 client used for access point scans.
type wlanClient interface {
	Interfaces() ([]*wifi.Interface, error)
	AccessPoints(ifi *wifi.Interface) ([]*wifi.BSS, error)
}

// GeolocationICHNAEAProvider locates the host with an Ichnaea compatible service (beacondb),
// using the visible WLAN access points. Without WLAN it falls back to the IP address.
type GeolocationICHNAEAProvider struct {
	http   *http.Client
	wlan   wlanClient
	poller geobus.Poller

	apLock sync.RWMutex
	aps    []WirelessNetwork
}

type APIResult struct {
	Location struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

type WirelessNetwork struct {
	LastSeen       int64  `json:"age"`
	MACAddress     string `json:"macAddress"`
	SignalStrength int32  `json:"signalStrength"`
}

// NewGeolocationICHNAEAProvider returns a new provider. A missing WLAN subsystem is not an error.
func NewGeolocationICHNAEAProvider(client *http.Client) (*GeolocationICHNAEAProvider, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	provider := &GeolocationICHNAEAProvider{http: client}
	if wlan, err := wifi.New(); err == nil {
		provider.wlan = wlan
	}
	provider.poller = geobus.Poller{
		Name:   name,
		Period: time.Minute * 5,
		TTL:    time.Hour,
		Locate: provider.locate,
	}
	return provider, nil
}

func (p *GeolocationICHNAEAProvider) Name() string {
	return name
}

func (p *GeolocationICHNAEAProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	if p.wlan != nil {
		p.scanAccessPoints()
		go p.monitorWifiAccessPoints(ctx)
	}
	return p.poller.Stream(ctx, key)
}

func (p *GeolocationICHNAEAProvider) monitorWifiAccessPoints(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wifiScanTime):
		}
		p.scanAccessPoints()
	}
}

func (p *GeolocationICHNAEAProvider) scanAccessPoints() {
	list, err := p.wifiAccessPoints()
	if err != nil {
		return
	}
	p.apLock.Lock()
	p.aps = list
	p.apLock.Unlock()
}

// wifiAccessPoints lists the access points seen by all station interfaces. Hidden networks and
// networks that opted out of mapping (_nomap) are skipped.
func (p *GeolocationICHNAEAProvider) wifiAccessPoints() ([]WirelessNetwork, error) {
	ifaces, err := p.wlan.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	var list []WirelessNetwork
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		aps, err := p.wlan.AccessPoints(iface)
		if err != nil {
			continue
		}
		for _, ap := range aps {
			if ap.SSID == "" || ap.SSID[0] == '\x00' || strings.HasSuffix(ap.SSID, "_nomap") {
				continue
			}
			list = append(list, WirelessNetwork{
				SignalStrength: ap.Signal / 100,
				MACAddress:     ap.BSSID.String(),
				LastSeen:       ap.LastSeen.Milliseconds(),
			})
		}
	}
	return list, nil
}

func (p *GeolocationICHNAEAProvider) locate(ctx context.Context) (geobus.Coordinate, error) {
	p.apLock.RLock()
	wifiList := p.aps
	p.apLock.RUnlock()

	type request struct {
		ConsiderIP   bool              `json:"considerIp"`
		Accesspoints []WirelessNetwork `json:"wifiAccessPoints,omitempty"`
	}
	body := bytes.NewBuffer(nil)
	if err := json.NewEncoder(body).Encode(request{ConsiderIP: true, Accesspoints: wifiList}); err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to encode wifi list to JSON: %w", err)
	}

	result := new(APIResult)
	if _, err := p.http.PostWithTimeout(ctx, apiEndpoint, result, body,
		map[string]string{"Content-Type": "application/json"}, lookupTimeout); err != nil {
		return geobus.Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if result.Accuracy <= 0 {
		return geobus.Coordinate{}, errors.New("geolocation API returned no location")
	}

	return geobus.Coordinate{
		Lat: geobus.Truncate(result.Location.Latitude, geobus.TruncPrecision),
		Lon: geobus.Truncate(result.Location.Longitude, geobus.TruncPrecision),
		Acc: geobus.Truncate(result.Accuracy, geobus.TruncPrecision),
	}, nil
}
