// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
)

type todayJSON struct {
	Date      string                   `json:"date"`
	Latitude  float64                  `json:"latitude"`
	Longitude float64                  `json:"longitude"`
	Method    prayer.CalculationMethod `json:"method"`
	Times     map[prayer.Key]string    `json:"times"`
	Next      prayer.Key               `json:"next"`
	Countdown string                   `json:"countdown"`
}

type nextJSON struct {
	Prayer    prayer.Key `json:"prayer"`
	Time      string     `json:"time"`
	Countdown string     `json:"countdown"`
}

func (a *app) newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's prayer times",
		Args:  cobra.NoArgs,
		RunE:  a.runToday,
	}
}

func (a *app) newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with its countdown",
		Args:  cobra.NoArgs,
		RunE:  a.runNext,
	}
}

func (a *app) newQiblaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qibla",
		Short: "Show the Qibla bearing in degrees from true north",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coords, err := a.resolveCoordinates(cmd)
			if err != nil {
				return err
			}
			bearing := prayer.QiblaDirection(coords)
			if a.opts.json {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"qibla": bearing})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d°\n", a.t.Get("Qibla"), bearing)
			return err
		},
	}
}

func (a *app) newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the supported calculation methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.loadSession(cmd, false)
			if err != nil {
				return err
			}
			current := session.Settings().Method
			if a.opts.json {
				return writeJSON(cmd.OutOrStdout(), prayer.Methods())
			}

			out := cmd.OutOrStdout()
			for _, method := range prayer.Methods() {
				marker := " "
				if method.ID == current {
					marker = "*"
				}
				if _, err = fmt.Fprintf(out, "%s %-8s %s\n", marker, method.ID, a.t.Get(method.Name)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) runToday(cmd *cobra.Command, _ []string) error {
	session, err := a.loadSession(cmd, true)
	if err != nil {
		return err
	}
	snap := session.Snapshot()
	state := schedule.Evaluate(snap.Times, a.clock.Now())

	if a.opts.json {
		times := make(map[prayer.Key]string, len(prayer.Order))
		for _, key := range prayer.Order {
			times[key] = snap.Times.Get(key)
		}
		return writeJSON(cmd.OutOrStdout(), todayJSON{
			Date:      snap.Date.Format("2006-01-02"),
			Latitude:  snap.Coordinates.Latitude,
			Longitude: snap.Coordinates.Longitude,
			Method:    snap.Method,
			Times:     times,
			Next:      state.Next,
			Countdown: state.Countdown,
		})
	}

	width := 0
	for _, key := range prayer.Order {
		width = max(width, runewidth.StringWidth(a.t.Get(key.Label())))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s  %s\n\n", snap.Date.Format("2006-01-02"), a.t.Get(snap.Method.Name())))
	for _, key := range prayer.Order {
		sb.WriteString(runewidth.FillRight(a.t.Get(key.Label()), width))
		sb.WriteString("  " + snap.Times.Get(key))
		var notes []string
		if offset := snap.Offsets[key]; offset != 0 && snap.Overrides[key] == "" {
			notes = append(notes, fmt.Sprintf("%+d min", offset))
		}
		if snap.Overrides[key] != "" {
			notes = append(notes, strings.ToLower(a.t.Get("Custom")))
		}
		if alarm := snap.Alarms.Get(key); alarm.Enabled && key != prayer.Sunrise {
			notes = append(notes, "alarm: "+alarm.Sound.Name())
		}
		if key == state.Next {
			notes = append(notes, "<- "+state.Countdown)
		}
		if len(notes) > 0 {
			sb.WriteString("  " + strings.Join(notes, ", "))
		}
		sb.WriteString("\n")
	}
	_, err = io.WriteString(cmd.OutOrStdout(), sb.String())
	return err
}

func (a *app) runNext(cmd *cobra.Command, _ []string) error {
	session, err := a.loadSession(cmd, true)
	if err != nil {
		return err
	}
	snap := session.Snapshot()
	state := schedule.Evaluate(snap.Times, a.clock.Now())
	at := snap.Times.Get(state.Next)

	if a.opts.json {
		return writeJSON(cmd.OutOrStdout(), nextJSON{Prayer: state.Next, Time: at, Countdown: state.Countdown})
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", a.t.Get(state.Next.Label()), at, state.Countdown)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
