// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package cli implements the waybar-prayertimes command line. Without a subcommand it runs the
// status bar module, the subcommands query the schedule and change the persisted settings.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-prayertimes/internal/config"
	"github.com/wneessen/waybar-prayertimes/internal/geocode"
	"github.com/wneessen/waybar-prayertimes/internal/i18n"
	"github.com/wneessen/waybar-prayertimes/internal/logger"
	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
	"github.com/wneessen/waybar-prayertimes/internal/service"
	"github.com/wneessen/waybar-prayertimes/internal/store"
)

var ErrNoLocation = errors.New("no location given: use --latitude/--longitude, --city or a static location")

// Build information, set by the calling binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type options struct {
	configPath string
	latitude   float64
	longitude  float64
	city       string
	json       bool
}

type app struct {
	build    BuildInfo
	opts     options
	clock    clockwork.Clock
	geocoder geocode.Geocoder

	conf *config.Config
	log  *logger.Logger
	t    *spreak.Localizer
}

// NewRootCmd returns the root command of the waybar-prayertimes CLI.
func NewRootCmd(build BuildInfo) *cobra.Command {
	return newRootCmd(&app{build: build, clock: clockwork.NewRealClock()})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Prayer times module for waybar",
		Long: "Computes the daily prayer times for the current location, prints them as waybar JSON " +
			"once per second and plays the configured prayer alarms.",
		Version:           a.build.Version,
		PersistentPreRunE: a.setup,
		RunE:              a.runService,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.opts.configPath, "config", "c", "", "path to the config file")
	pf.Float64Var(&a.opts.latitude, "latitude", 0, "latitude of the location (overrides config)")
	pf.Float64Var(&a.opts.longitude, "longitude", 0, "longitude of the location (overrides config)")
	pf.StringVar(&a.opts.city, "city", "", "look up the location by place name")
	pf.BoolVar(&a.opts.json, "json", false, "print JSON (where supported)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the waybar module (default)",
			Args:  cobra.NoArgs,
			RunE:  a.runService,
		},
		a.newTodayCmd(),
		a.newNextCmd(),
		a.newQiblaCmd(),
		a.newMethodsCmd(),
		a.newMethodCmd(),
		a.newOffsetCmd(),
		a.newOverrideCmd(),
		a.newAlarmCmd(),
	)
	return rootCmd
}

// setup loads the config and initializes the logger and localizer for every command.
func (a *app) setup(*cobra.Command, []string) error {
	conf, err := config.Load(a.opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.conf = conf
	a.log = logger.New(conf.LogLevel)

	a.t, err = i18n.New(conf.Locale)
	if err != nil {
		return fmt.Errorf("failed to initialize localizer: %w", err)
	}
	return nil
}

func (a *app) runService(cmd *cobra.Command, _ []string) error {
	if coords, ok, err := a.flagCoordinates(cmd); err != nil {
		return err
	} else if ok {
		a.conf.Location.Static = true
		a.conf.Location.Latitude, a.conf.Location.Longitude = coords.Latitude, coords.Longitude
	}

	serv, err := service.New(a.conf, a.log, a.t)
	if err != nil {
		return fmt.Errorf("failed to initialize %s service: %w", config.AppName, err)
	}

	a.log.Info("starting "+config.AppName+" service", slog.String("version", a.build.Version),
		slog.String("commit", a.build.Commit), slog.String("date", a.build.Date))
	defer a.log.Info("shutting down " + config.AppName + " service")
	if err = serv.Run(cmd.Context()); err != nil {
		return fmt.Errorf("failed to run %s service: %w", config.AppName, err)
	}
	return nil
}

// flagCoordinates returns the coordinates given on the command line.
func (a *app) flagCoordinates(cmd *cobra.Command) (prayer.Coordinates, bool, error) {
	flags, root := cmd.Flags(), cmd.Root().PersistentFlags()
	if !flagWasSet(flags, root, "latitude") && !flagWasSet(flags, root, "longitude") {
		return prayer.Coordinates{}, false, nil
	}
	coords := prayer.Coordinates{Latitude: a.opts.latitude, Longitude: a.opts.longitude}
	if !coords.Valid() {
		return coords, false, fmt.Errorf("%w: %f,%f", prayer.ErrInvalidCoordinates, coords.Latitude,
			coords.Longitude)
	}
	return coords, true, nil
}

// resolveCoordinates picks the location of a one-shot query. Command line coordinates win over a
// place name, which wins over the configured static location.
func (a *app) resolveCoordinates(cmd *cobra.Command) (prayer.Coordinates, error) {
	coords, ok, err := a.flagCoordinates(cmd)
	if err != nil || ok {
		return coords, err
	}
	if a.opts.city != "" {
		if a.geocoder == nil {
			if a.geocoder, err = service.NewGeocoder(a.conf, a.log, a.clock); err != nil {
				return coords, fmt.Errorf("failed to create geocode provider: %w", err)
			}
		}
		coords, err = a.geocoder.Search(cmd.Context(), a.opts.city)
		if err != nil {
			return coords, fmt.Errorf("failed to look up %q: %w", a.opts.city, err)
		}
		return coords, nil
	}
	if a.conf.Location.Static {
		return a.conf.Coordinates(), nil
	}
	return prayer.Coordinates{}, ErrNoLocation
}

// loadSession builds a schedule session from the persisted settings. With locate set, the
// session is moved to the resolved location and computed for today.
func (a *app) loadSession(cmd *cobra.Command, locate bool) (*schedule.Session, error) {
	var settings schedule.Settings
	err := a.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
		var err error
		settings, err = store.LoadSettingsWith(ctx, st, service.DefaultSettings(a.conf))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	session, err := schedule.NewSession(settings)
	if err != nil {
		return nil, err
	}
	if !locate {
		return session, nil
	}

	coords, err := a.resolveCoordinates(cmd)
	if err != nil {
		return nil, err
	}
	if err = session.SetCoordinates(coords); err != nil {
		return nil, err
	}
	if err = session.Recompute(a.clock.Now()); err != nil {
		return nil, fmt.Errorf("failed to compute prayer times: %w", err)
	}
	return session, nil
}

// updateSettings applies fn to the persisted settings and saves the result. A running module
// picks up the change on its next settings sync.
func (a *app) updateSettings(cmd *cobra.Command, fn func(*schedule.Session) error) error {
	session, err := a.loadSession(cmd, false)
	if err != nil {
		return err
	}
	if err = fn(session); err != nil {
		return err
	}
	return a.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
		if err := store.SaveSettings(ctx, st, session.Settings()); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		return nil
	})
}

func (a *app) withStore(ctx context.Context, fn func(context.Context, store.Store) error) error {
	st, err := store.Open(ctx, a.conf)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			a.log.Error("failed to close settings store", logger.Err(err))
		}
	}()
	return fn(ctx, st)
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
