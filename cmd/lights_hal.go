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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/daemon"
	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/hal/lights"
	"github.com/we-are-mono/droidleds/system"
	"github.com/we-are-mono/droidleds/types"
	"github.com/we-are-mono/droidleds/validation"
)

var (
	halDevice string
	halIface  string
	halName   string
)

var lightsHalCmd = &cobra.Command{
	Use:   "lights-hal",
	Short: "Serve the lights HAL on the bus",
	Long: `Probes the kernel LED and backlight classes and registers a light
service on the bus. Exits 0 only if registration ever succeeded.`,
	Args: cobra.NoArgs,
	RunE: runLightsHal,
}

func init() {
	rootCmd.AddCommand(lightsHalCmd)
	lightsHalCmd.Flags().StringVarP(&halDevice, "device", "d", "/dev/hwbinder", "Bus device to register on")
	lightsHalCmd.Flags().StringVarP(&halIface, "iface", "i", "android.hardware.light@2.0::ILight", "Interface name to serve")
	lightsHalCmd.Flags().StringVarP(&halName, "name", "n", "libdroid", "Instance name to register under")
}

// halIdentity starts from the configured identity; flags given on the
// command line win
func halIdentity(flags *pflag.FlagSet, cfg *types.Config) types.ServiceIdentity {
	id := cfg.HAL.Service
	if flags.Changed("device") {
		id.Device = halDevice
	}
	if flags.Changed("iface") {
		id.Interface = halIface
	}
	if flags.Changed("name") {
		id.Slot = halName
	}
	return id
}

func runLightsHal(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig(cmd.Flags())
	if err != nil {
		return err
	}

	id := halIdentity(cmd.Flags(), cfg)
	if err := validation.ValidateServiceIdentity(id); err != nil {
		return err
	}

	if err := initializeLogger(cfg.Logging, "lights-hal"); err != nil {
		return err
	}
	defer logger.Close()

	impl := lights.New(lights.NewProber(system.NewUdev(cfg.HAL.SysfsRoot)))
	svc := daemon.NewHalService(id, impl, binder.WithBusDir(cfg.Bus.Dir))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := svc.Run(ctx)
	svc.Close()

	if code != 0 {
		logger.Close()
		exitWithCode(code)
	}
	return nil
}
