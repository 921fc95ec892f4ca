// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
)

func (a *app) newMethodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "method [id]",
		Short: "Show or select the calculation method",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				session, err := a.loadSession(cmd, false)
				if err != nil {
					return err
				}
				method := session.Settings().Method
				return a.printf(cmd, "%s (%s)\n", method, a.t.Get(method.Name()))
			}

			method, err := prayer.ParseMethod(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			if err = a.updateSettings(cmd, func(session *schedule.Session) error {
				return session.SetMethod(method)
			}); err != nil {
				return err
			}
			return a.printf(cmd, "method set to %s (%s)\n", method, a.t.Get(method.Name()))
		},
	}
}

func (a *app) newOffsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offset",
		Short: "Shift a prayer time by whole minutes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "set <prayer> <minutes>",
			Short:   "Set the offset of a prayer, 0 removes it",
			Example: "  offset set isha 5\n  offset set fajr -- -3",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, minutes, err := parseKeyMinutes(args)
				if err != nil {
					return err
				}
				if err = a.updateSettings(cmd, func(session *schedule.Session) error {
					return session.SetOffset(key, minutes)
				}); err != nil {
					return err
				}
				return a.printf(cmd, "%s offset set to %+d min\n", a.t.Get(key.Label()), minutes)
			},
		},
		&cobra.Command{
			Use:     "adjust <prayer> <delta>",
			Short:   "Change the offset of a prayer by delta minutes",
			Example: "  offset adjust dhuhr 1\n  offset adjust dhuhr -- -1",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, delta, err := parseKeyMinutes(args)
				if err != nil {
					return err
				}
				var minutes int
				if err = a.updateSettings(cmd, func(session *schedule.Session) error {
					var adjErr error
					minutes, adjErr = session.AdjustOffset(key, delta)
					return adjErr
				}); err != nil {
					return err
				}
				return a.printf(cmd, "%s offset set to %+d min\n", a.t.Get(key.Label()), minutes)
			},
		},
	)
	return cmd
}

func (a *app) newOverrideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Replace a prayer time with a fixed time",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "set <prayer> <HH:MM>",
			Short:   "Set a fixed 24h time for a prayer",
			Example: "  override set isha 21:15",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := prayer.ParseKey(args[0])
				if err != nil {
					return fmt.Errorf("%w: %s", err, args[0])
				}
				if err = a.updateSettings(cmd, func(session *schedule.Session) error {
					return session.SetOverride(key, args[1])
				}); err != nil {
					return err
				}
				display, _ := prayer.FromInput(args[1])
				return a.printf(cmd, "%s set to %s\n", a.t.Get(key.Label()), display)
			},
		},
		&cobra.Command{
			Use:   "reset <prayer>",
			Short: "Remove the fixed time of a prayer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := prayer.ParseKey(args[0])
				if err != nil {
					return fmt.Errorf("%w: %s", err, args[0])
				}
				if err = a.updateSettings(cmd, func(session *schedule.Session) error {
					return session.ResetOverride(key)
				}); err != nil {
					return err
				}
				return a.printf(cmd, "%s uses the calculated time\n", a.t.Get(key.Label()))
			},
		},
	)
	return cmd
}

func (a *app) newAlarmCmd() *cobra.Command {
	var sound string
	cmd := &cobra.Command{
		Use:     "alarm [<prayer> <on|off>]",
		Short:   "List or configure the prayer alarms",
		Example: "  alarm\n  alarm maghrib on --sound soft\n  alarm fajr off",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.listAlarms(cmd)
			}

			key, err := prayer.ParseKey(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			enabled, err := parseSwitch(args[1])
			if err != nil {
				return err
			}

			var cfg schedule.AlarmConfig
			if err = a.updateSettings(cmd, func(session *schedule.Session) error {
				cfg = session.Settings().Alarms.Get(key)
				cfg.Enabled = enabled
				if cmd.Flags().Changed("sound") {
					parsed, soundErr := schedule.ParseSound(sound)
					if soundErr != nil {
						return fmt.Errorf("%w: %s", soundErr, sound)
					}
					cfg.Sound = parsed
				}
				return session.SetAlarm(key, cfg)
			}); err != nil {
				return err
			}
			return a.printAlarm(cmd, key, cfg)
		},
	}
	cmd.Flags().StringVar(&sound, "sound", string(schedule.PrimarySound), "alarm sound: adhan, soft or beep")
	return cmd
}

func (a *app) listAlarms(cmd *cobra.Command) error {
	session, err := a.loadSession(cmd, false)
	if err != nil {
		return err
	}
	alarms := session.Settings().Alarms
	if a.opts.json {
		return writeJSON(cmd.OutOrStdout(), alarms)
	}
	for _, key := range prayer.Order {
		if key == prayer.Sunrise {
			continue
		}
		if err = a.printAlarm(cmd, key, alarms.Get(key)); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) printAlarm(cmd *cobra.Command, key prayer.Key, cfg schedule.AlarmConfig) error {
	state := "off"
	if cfg.Enabled {
		state = "on"
	}
	return a.printf(cmd, "%-8s %-3s %s\n", a.t.Get(key.Label()), state, cfg.Sound.Name())
}

func (a *app) printf(cmd *cobra.Command, format string, args ...any) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	return err
}

func parseKeyMinutes(args []string) (prayer.Key, int, error) {
	key, err := prayer.ParseKey(args[0])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", err, args[0])
	}
	minutes, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid number of minutes: %s", args[1])
	}
	return key, minutes, nil
}

func parseSwitch(value string) (bool, error) {
	switch value {
	case "on", "true", "enable":
		return true, nil
	case "off", "false", "disable":
		return false, nil
	default:
		return false, fmt.Errorf("invalid alarm state %q: use on or off", value)
	}
}
