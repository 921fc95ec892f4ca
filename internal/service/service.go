// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service runs the status bar module: it follows the location, keeps the prayer schedule
// of the day, prints one JSON line per tick and plays the prayer alarms.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-prayertimes/internal/alarm"
	"github.com/wneessen/waybar-prayertimes/internal/config"
	"github.com/wneessen/waybar-prayertimes/internal/geobus"
	"github.com/wneessen/waybar-prayertimes/internal/geocode"
	"github.com/wneessen/waybar-prayertimes/internal/http"
	"github.com/wneessen/waybar-prayertimes/internal/job"
	"github.com/wneessen/waybar-prayertimes/internal/logger"
	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/presenter"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
	"github.com/wneessen/waybar-prayertimes/internal/store"
)

const (
	DesktopID = config.AppName

	classUnavailable = "unavailable"
	cacheHitTTL      = time.Hour * 24
	cacheMissTTL     = time.Minute * 30
	geocodeTimeout   = time.Second * 10
	storeTimeout     = time.Second * 5
)

type outputData struct {
	Text    string   `json:"text"`
	Tooltip string   `json:"tooltip"`
	Class   []string `json:"class"`
}

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	t         *spreak.Localizer
	clock     clockwork.Clock
	scheduler gocron.Scheduler
	presenter *presenter.Presenter
	session   *schedule.Session
	player    *alarm.Player
	notifier  *alarm.DBusNotifier
	geobus    *geobus.GeoBus
	geocoder  geocode.Geocoder
	store     store.Store
	output    io.Writer
	ticker    *job.Job
	SignalSrc signalSource

	addressLock sync.RWMutex
	address     geocode.Address

	displayAltLock sync.RWMutex
	displayAltText bool

	outputLock sync.Mutex
}

func New(conf *config.Config, log *logger.Logger, lang *spreak.Localizer) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	clock := clockwork.NewRealClock()
	scheduler, err := gocron.NewScheduler(gocron.WithClock(clock), gocron.WithLocation(time.Local))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	pres, err := presenter.New(conf, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	session, err := schedule.NewSession(DefaultSettings(conf))
	if err != nil {
		return nil, err
	}

	service := &Service{
		config:    conf,
		logger:    log,
		t:         lang,
		clock:     clock,
		scheduler: scheduler,
		presenter: pres,
		session:   session,
		geobus:    geobus.New(log),
		output:    os.Stdout,
		SignalSrc: stdLibSignalSource{},
	}
	service.player = service.newPlayer(http.New(log))
	service.ticker = job.New(conf.Intervals.Tick, service.tick)
	return service, nil
}

func (s *Service) Run(ctx context.Context) error {
	st, err := store.Open(ctx, s.config)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	s.store = st
	defer s.closeStore()
	s.syncSettings(ctx)

	if s.geocoder == nil {
		s.geocoder, err = NewGeocoder(s.config, s.logger, s.clock)
		if err != nil {
			return fmt.Errorf("failed to create geocode provider: %w", err)
		}
	}

	if err = s.session.Recompute(s.clock.Now()); err != nil {
		return fmt.Errorf("failed to compute prayer times: %w", err)
	}
	s.session.OnAlarm(s.alarmHandler(ctx))

	if s.config.Location.Static {
		coords := s.config.Coordinates()
		s.logger.Debug("using static location", slog.Float64("lat", coords.Latitude),
			slog.Float64("lon", coords.Longitude))
		go func() {
			if err := s.updateLocation(ctx, geobus.FromCoordinates(coords)); err != nil {
				s.logger.Error("failed to apply static location", logger.Err(err))
			}
		}()
	} else {
		providers, err := s.selectGeobusProviders()
		if err != nil {
			return fmt.Errorf("failed to create geobus orchestrator: %w", err)
		}
		sub, unsub := s.geobus.Subscribe(DesktopID, 32)
		defer unsub()
		go s.processLocationUpdates(ctx, sub)
		go s.geobus.NewOrchestrator(providers).Track(ctx, DesktopID)
	}

	if err = s.createScheduledJobs(ctx); err != nil {
		return err
	}
	s.scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	defer s.SignalSrc.Stop(sigChan)
	go s.HandleSignals(ctx, sigChan)
	go s.monitorSleepResume(ctx)

	if err = s.ticker.Start(ctx); err != nil {
		return fmt.Errorf("failed to start tick job: %w", err)
	}

	s.player.Dismiss()
	if s.notifier != nil {
		if err = s.notifier.Close(); err != nil {
			s.logger.Error("failed to close notification bus connection", logger.Err(err))
		}
	}
	return s.scheduler.Shutdown()
}

func (s *Service) createScheduledJobs(ctx context.Context) error {
	jobs := []struct {
		name       string
		definition gocron.JobDefinition
		task       func(context.Context)
	}{
		{
			"daily_recompute_job",
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 5))),
			s.recompute,
		},
		{
			"settings_sync_job",
			gocron.DurationJob(s.config.Intervals.SettingsSync),
			s.syncSettings,
		},
	}
	for _, j := range jobs {
		_, err := s.scheduler.NewJob(j.definition, gocron.NewTask(j.task),
			gocron.WithContext(ctx),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithName(j.name),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", j.name, err)
		}
	}
	return nil
}

// tick evaluates the schedule and prints the output line. A day change that the daily job
// missed, e.g. during suspend, is caught up here.
func (s *Service) tick(ctx context.Context) {
	now := s.clock.Now()
	if !sameDay(s.session.Date(), now) {
		s.recompute(ctx)
	}
	s.printOutput(s.session.Tick(now), now)
}

func (s *Service) recompute(context.Context) {
	now := s.clock.Now()
	if err := s.session.Recompute(now); err != nil {
		s.logger.Error("failed to recompute prayer times", logger.Err(err))
		return
	}
	s.logger.Debug("prayer times recomputed", slog.Time("date", s.session.Date()))
}

// printOutput renders the snapshot and writes it as a single JSON line.
func (s *Service) printOutput(snap schedule.Snapshot, now time.Time) {
	output := outputData{
		Text:    s.t.Get("Location required"),
		Tooltip: s.t.Get("Location required"),
		Class:   []string{config.AppName, classUnavailable},
	}

	if snap.Available {
		s.addressLock.RLock()
		address := s.address
		s.addressLock.RUnlock()

		event, active := s.player.Active()
		tplCtx := s.presenter.BuildContext(snap, address, now).WithAlarm(event, active)
		rendered, err := s.presenter.Render(tplCtx)
		if err != nil {
			s.logger.Error("failed to render templates", logger.Err(err))
			return
		}

		s.displayAltLock.RLock()
		alt := s.displayAltText
		s.displayAltLock.RUnlock()

		output.Text, output.Tooltip = rendered["text"], rendered["tooltip"]
		if alt {
			output.Text, output.Tooltip = rendered["alt_text"], rendered["alt_tooltip"]
		}
		output.Class = presenter.Classes(tplCtx)
	}

	s.outputLock.Lock()
	defer s.outputLock.Unlock()
	if err := json.NewEncoder(s.output).Encode(output); err != nil {
		s.logger.Error("failed to encode prayer times output", logger.Err(err))
	}
}

// printCurrent prints the output outside the tick without dispatching alarms.
func (s *Service) printCurrent() {
	now := s.clock.Now()
	snap := s.session.Snapshot()
	if snap.Available {
		snap.State = schedule.Evaluate(snap.Times, now)
	}
	s.printOutput(snap, now)
}

// updateLocation moves the schedule to the given coordinate and resolves its address. The
// schedule is updated even if the address cannot be resolved.
func (s *Service) updateLocation(ctx context.Context, coord geobus.Coordinate) error {
	coords := coord.Coordinates()
	if err := s.session.SetCoordinates(coords); err != nil {
		return fmt.Errorf("failed to set coordinates: %w", err)
	}
	if s.session.Date().IsZero() {
		s.recompute(ctx)
	}
	s.logger.Debug("schedule location updated", slog.Float64("lat", coords.Latitude),
		slog.Float64("lon", coords.Longitude))
	s.printCurrent()

	ctxGeo, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()
	address, err := s.geocoder.Reverse(ctxGeo, coords)
	if err != nil {
		return fmt.Errorf("failed reverse geocode coordinates: %w", err)
	}

	s.addressLock.Lock()
	s.address = address
	s.addressLock.Unlock()
	s.logger.Debug("address successfully resolved", slog.String("address", address.DisplayName))
	return nil
}

// processLocationUpdates applies the geolocation updates from the geobus.
func (s *Service) processLocationUpdates(ctx context.Context, sub <-chan geobus.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-sub:
			if !ok {
				return
			}
			s.logger.Debug("received geolocation update",
				slog.Float64("lat", r.Lat), slog.Float64("lon", r.Lon), slog.String("source", r.Source))
			if err := s.updateLocation(ctx, r.Coordinate()); err != nil {
				s.logger.Error("failed to apply geo update", logger.Err(err), slog.String("source", r.Source))
			}
		}
	}
}

// syncSettings reloads the persisted settings, so that changes made with the CLI reach the
// running module.
func (s *Service) syncSettings(ctx context.Context) {
	ctxStore, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	settings, err := store.LoadSettingsWith(ctxStore, s.store, DefaultSettings(s.config))
	if err != nil {
		s.logger.Error("failed to load settings", slog.String("store", s.store.Name()), logger.Err(err))
		return
	}
	if err = s.session.Apply(settings); err != nil {
		s.logger.Error("failed to apply settings", logger.Err(err))
	}
}

func (s *Service) closeStore() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("failed to close settings store", logger.Err(err))
	}
}

func (s *Service) newPlayer(client *http.Client) *alarm.Player {
	sources := map[schedule.Sound]string{
		schedule.SoundAdhan: s.config.Alarm.Sounds.Adhan,
		schedule.SoundSoft:  s.config.Alarm.Sounds.Soft,
		schedule.SoundBeep:  s.config.Alarm.Sounds.Beep,
	}
	cacheDir := s.config.Alarm.CacheDir
	if s.config.Alarm.DisableCache {
		cacheDir = ""
	}

	opts := alarm.Options{
		Backend:  alarm.NewCommandBackend(s.config.Alarm.Player, s.config.Alarm.PlayerArgs, s.config.Alarm.LoopArgs),
		Resolver: alarm.NewSoundCatalog(s.logger, sources, cacheDir, client),
		Clock:    s.clock,
		AutoStop: s.config.Alarm.AutoStop,
		Message:  s.alarmMessage,
	}
	if !s.config.Alarm.DisableNotify {
		s.notifier = alarm.NewDBusNotifier(config.AppName)
		opts.Notifier = s.notifier
	}
	return alarm.NewPlayer(s.logger, opts)
}

// alarmHandler starts fired alarms in the background, so that downloading a sound never blocks
// the tick.
func (s *Service) alarmHandler(ctx context.Context) func(schedule.AlarmEvent) {
	return func(event schedule.AlarmEvent) {
		go s.player.Trigger(ctx, event)
	}
}

func (s *Service) alarmMessage(event schedule.AlarmEvent) (string, string) {
	label := s.t.Get(event.Label)
	return s.t.Getf("Prayer time: %s", label),
		s.t.Getf("It is time for %s (%s)", label, event.At.Format("15:04"))
}

// DefaultSettings are the settings used for keys missing in the settings store.
func DefaultSettings(conf *config.Config) schedule.Settings {
	settings := schedule.DefaultSettings()
	if method, err := prayer.ParseMethod(conf.Prayer.Method); err == nil {
		settings.Method = method
	}
	return settings
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
