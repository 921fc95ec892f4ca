// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

const (
	configEnv = "WAYBARPRAYERTIMES"
	// AppName is used for the config, state and cache directories.
	AppName = "waybar-prayertimes"

	DefaultTextTpl       = "{{loc .Next.Label}} {{.Countdown}}"
	DefaultAltTextTpl    = "{{loc .Next.Label}} {{.Next.Time}}"
	DefaultTooltipTpl    = "{{if .Address.City}}{{.Address.City}}, {{.Address.Country}}\n{{end}}{{.MethodName}}\n\n" +
		"{{range .Prayers}}{{if .IsNext}}▸{{else}} {{end}} {{pad (loc .Label) 8}} {{.Time}}" +
		"{{if .Alarm.Enabled}} 🔔{{end}}\n{{end}}\n" +
		"🕋 {{loc \"qibla\"}}: {{.Qibla}}°\n" +
		"🌅 {{localizedTime .SunriseTime}} • 🌇 {{localizedTime .SunsetTime}}\n" +
		"{{.MoonPhaseIcon}} {{loc .MoonPhase}}"
	DefaultAltTooltipTpl = "{{range .Prayers}}{{pad (loc .Label) 8}} {{.Time}}" +
		"{{if .Overridden}} ({{loc \"custom\"}}){{else if .Offset}} ({{printf \"%+d\" .Offset}}m){{end}}\n{{end}}\n" +
		"{{loc .Next.Label}} {{naturalTime .Next.At}}"

	DefaultSoundAdhan = "https://www.islamcan.com/audio/adhan/azan1.mp3"
	DefaultSoundSoft  = "https://assets.mixkit.co/active_storage/sfx/221/221-preview.mp3"
	DefaultSoundBeep  = "https://assets.mixkit.co/active_storage/sfx/2578/2578-preview.mp3"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Intervals struct {
		Tick         time.Duration `fig:"tick" default:"1s"`
		SettingsSync time.Duration `fig:"settings_sync" default:"1m"`
	} `fig:"intervals"`

	Prayer struct {
		// Allowed values: MWL, ISNA, EGYPT, MAKKAH, KARACHI, TEHRAN, JAFARI
		Method string `fig:"method" default:"MWL"`
	} `fig:"prayer"`

	Location struct {
		// Static disables the geolocation providers and uses the configured coordinates.
		Static    bool    `fig:"static"`
		Latitude  float64 `fig:"latitude"`
		Longitude float64 `fig:"longitude"`
	} `fig:"location"`

	Templates struct {
		Text       string `fig:"text"`
		AltText    string `fig:"alt_text"`
		Tooltip    string `fig:"tooltip"`
		AltTooltip string `fig:"alt_tooltip"`
	} `fig:"templates"`

	GeoLocation struct {
		GeoLocationFile        string `fig:"geolocation_file"`
		CitynameFile           string `fig:"cityname_file"`
		GPSDAddress            string `fig:"gpsd_address" default:"localhost:2947"`
		DisableGeolocationFile bool   `fig:"disable_geolocation_file"`
		DisableCitynameFile    bool   `fig:"disable_cityname_file"`
		DisableGPSD            bool   `fig:"disable_gpsd"`
		DisableGeoIP           bool   `fig:"disable_geoip"`
		DisableICHNAEA         bool   `fig:"disable_ichnaea"`
	} `fig:"geolocation"`

	GeoCoder struct {
		// Allowed values: nominatim, opencage, geocode-earth
		Provider string `fig:"provider" default:"nominatim"`
		// APIKey is required by opencage and geocode-earth.
		APIKey string `fig:"apikey"`
	} `fig:"geocoder"`

	Store struct {
		// Allowed values: file, redis
		Backend string `fig:"backend" default:"file"`
		File    string `fig:"file"`
		Redis   struct {
			Address  string `fig:"address" default:"localhost:6379"`
			Username string `fig:"username"`
			Password string `fig:"password"`
			DB       int    `fig:"db"`
			Prefix   string `fig:"prefix" default:"waybar-prayertimes:"`
		} `fig:"redis"`
	} `fig:"store"`

	Alarm struct {
		Player        string        `fig:"player" default:"mpv"`
		PlayerArgs    string        `fig:"player_args" default:"--no-video --really-quiet"`
		LoopArgs      string        `fig:"loop_args" default:"--loop=inf"`
		AutoStop      time.Duration `fig:"auto_stop" default:"120s"`
		CacheDir      string        `fig:"cache_dir"`
		DisableNotify bool          `fig:"disable_notify"`
		DisableCache  bool          `fig:"disable_cache"`
		Sounds        struct {
			Adhan string `fig:"adhan"`
			Soft  string `fig:"soft"`
			Beep  string `fig:"beep"`
		} `fig:"sounds"`
	} `fig:"alarm"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// Load reads the config file at path if given, falls back to the default config file location and
// finally to defaults and environment only.
func Load(path string) (*Config, error) {
	if path != "" {
		return NewFromFile(filepath.Dir(path), filepath.Base(path))
	}
	if dir, file := FindConfigFile(); dir != "" && file != "" {
		return NewFromFile(dir, file)
	}
	return New()
}

// FindConfigFile looks for config.{toml,yaml,yml,json} in the user's config directory.
func FindConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", AppName, "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	method, err := prayer.ParseMethod(c.Prayer.Method)
	if err != nil {
		return fmt.Errorf("invalid calculation method %q: %w", c.Prayer.Method, err)
	}
	c.Prayer.Method = string(method)

	if c.Intervals.Tick <= 0 {
		return fmt.Errorf("invalid tick interval: %s", c.Intervals.Tick)
	}
	if c.Intervals.SettingsSync < time.Second {
		return fmt.Errorf("invalid settings sync interval: %s", c.Intervals.SettingsSync)
	}
	if c.Location.Static {
		coords := prayer.Coordinates{Latitude: c.Location.Latitude, Longitude: c.Location.Longitude}
		if !coords.Valid() {
			return fmt.Errorf("invalid static location: %f,%f", coords.Latitude, coords.Longitude)
		}
	}

	switch strings.ToLower(c.Store.Backend) {
	case "file", "redis":
		c.Store.Backend = strings.ToLower(c.Store.Backend)
	default:
		return fmt.Errorf("invalid store backend: %s", c.Store.Backend)
	}
	if c.Alarm.AutoStop <= 0 {
		return fmt.Errorf("invalid alarm auto stop duration: %s", c.Alarm.AutoStop)
	}
	if strings.TrimSpace(c.Alarm.Player) == "" {
		return errors.New("alarm player must not be empty")
	}

	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.AltText == "" {
		c.Templates.AltText = DefaultAltTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}
	if c.Templates.AltTooltip == "" {
		c.Templates.AltTooltip = DefaultAltTooltipTpl
	}
	if c.Alarm.Sounds.Adhan == "" {
		c.Alarm.Sounds.Adhan = DefaultSoundAdhan
	}
	if c.Alarm.Sounds.Soft == "" {
		c.Alarm.Sounds.Soft = DefaultSoundSoft
	}
	if c.Alarm.Sounds.Beep == "" {
		c.Alarm.Sounds.Beep = DefaultSoundBeep
	}

	home, _ := os.UserHomeDir()
	if c.GeoLocation.GeoLocationFile == "" {
		c.GeoLocation.GeoLocationFile = filepath.Join(home, ".config", AppName, "geolocation")
	}
	if c.GeoLocation.CitynameFile == "" {
		c.GeoLocation.CitynameFile = filepath.Join(home, ".config", AppName, "cityname")
	}
	if c.Store.File == "" {
		c.Store.File = filepath.Join(home, ".local", "state", AppName, "settings.json")
	}
	if c.Alarm.CacheDir == "" {
		c.Alarm.CacheDir = filepath.Join(home, ".cache", AppName, "sounds")
	}

	return nil
}

// Coordinates returns the statically configured coordinates.
func (c *Config) Coordinates() prayer.Coordinates {
	return prayer.Coordinates{Latitude: c.Location.Latitude, Longitude: c.Location.Longitude}
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
