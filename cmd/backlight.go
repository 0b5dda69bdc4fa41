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

	"github.com/spf13/cobra"

	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/leds"
)

var (
	backlightLevel   uint
	backlightSave    bool
	backlightRestore bool
	backlightInfo    bool
)

var errSetBacklight = errors.New("unable to set backlight")

var backlightCmd = &cobra.Command{
	Use:   "backlight",
	Short: "Set, save or restore the display backlight",
	Long: `Sets the display backlight to a level between 0 and 255.

With --restore the saved level is applied instead; --info prints what the
light service supports and exits.`,
	Args: cobra.NoArgs,
	RunE: runBacklight,
}

func init() {
	rootCmd.AddCommand(backlightCmd)
	backlightCmd.Flags().UintVarP(&backlightLevel, "level", "l", 255, "The backlight level to set")
	backlightCmd.Flags().BoolVarP(&backlightSave, "save", "s", false, "Save the backlight level")
	backlightCmd.Flags().BoolVarP(&backlightRestore, "restore", "r", false, "Restore the saved backlight level")
	backlightCmd.Flags().BoolVarP(&backlightInfo, "info", "i", false, "Show supported lights and the saved level, then exit")
}

func runBacklight(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if err := initializeLogger(cfg.Logging, "backlight"); err != nil {
		return err
	}
	defer logger.Close()

	s := openSession(cmd.Context(), cfg)
	defer s.Close()

	if backlightInfo {
		printLightInfo(cmd, s.leds)
		return nil
	}

	level, save := backlightLevel, backlightSave
	if backlightRestore {
		level, save = s.leds.GetBacklight(), false
	}

	if !s.leds.SetBacklight(level, save) {
		return errSetBacklight
	}
	return nil
}

func printLightInfo(cmd *cobra.Command, l *leds.Leds) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backlight supported:          %s\n", yesNo(l.IsKindSupported(leds.KindBacklight)))
	fmt.Fprintf(out, "Backlight stored level:       %d\n", l.GetBacklight())
	fmt.Fprintf(out, "Notification light supported: %s\n", yesNo(l.IsKindSupported(leds.KindNotification)))
}
