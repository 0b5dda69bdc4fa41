// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/validation"
)

var (
	notifyColor string
	notifyOn    int
	notifyOff   int
	notifyClear bool
)

var errSetNotification = errors.New("unable to set notification light")

var notificationCmd = &cobra.Command{
	Use:   "notification",
	Short: "Set or clear the notification light",
	Long: `Lights the notification LED in the given color, optionally blinking
with the given on and off times.

Examples:
  droidleds notification --color 0x00ff00
  droidleds notification --color "#ff0000" --on 500 --off 1500
  droidleds notification --clear`,
	Args: cobra.NoArgs,
	RunE: runNotification,
}

func init() {
	rootCmd.AddCommand(notificationCmd)
	notificationCmd.Flags().StringVar(&notifyColor, "color", "", "Color as RRGGBB (0x and # prefixes accepted)")
	notificationCmd.Flags().IntVar(&notifyOn, "on", 0, "Blink on time in milliseconds")
	notificationCmd.Flags().IntVar(&notifyOff, "off", 0, "Blink off time in milliseconds")
	notificationCmd.Flags().BoolVar(&notifyClear, "clear", false, "Turn the notification light off")
	notificationCmd.MarkFlagsMutuallyExclusive("color", "clear")
	notificationCmd.MarkFlagsOneRequired("color", "clear")
}

// parseColor accepts RRGGBB with an optional 0x or # prefix and returns
// it as an opaque ARGB value
func parseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x"), "#")
	if hex == "" {
		return 0, fmt.Errorf("empty color")
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if err := validation.ValidateColor(uint32(v)); err != nil {
		return 0, err
	}
	return 0xFF<<24 | uint32(v), nil
}

func runNotification(cmd *cobra.Command, args []string) error {
	var color uint32
	if !notifyClear {
		var err error
		if color, err = parseColor(notifyColor); err != nil {
			return err
		}

		collector := validation.NewCollector()
		collector.CheckMsg(validation.ValidateFlashDuration(notifyOn), "--on")
		collector.CheckMsg(validation.ValidateFlashDuration(notifyOff), "--off")
		if err := collector.Error(); err != nil {
			return err
		}
	}

	cfg, err := loadRuntimeConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if err := initializeLogger(cfg.Logging, "notification"); err != nil {
		return err
	}
	defer logger.Close()

	s := openSession(cmd.Context(), cfg)
	defer s.Close()

	var ok bool
	if notifyClear {
		ok = s.leds.ClearNotification()
	} else {
		ok = s.leds.SetNotification(color, int32(notifyOn), int32(notifyOff))
	}
	if !ok {
		return errSetNotification
	}
	return nil
}
