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

	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/validation"
)

var smDevice string

var serviceManagerCmd = &cobra.Command{
	Use:   "servicemanager",
	Short: "Run the service registry for a bus device",
	Long:  `Serves the name registry that light services register with and clients look services up in.`,
	Args:  cobra.NoArgs,
	RunE:  runServiceManager,
}

func init() {
	rootCmd.AddCommand(serviceManagerCmd)
	serviceManagerCmd.Flags().StringVarP(&smDevice, "device", "d", "/dev/hwbinder", "Bus device to serve")
}

func runServiceManager(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if err := validation.ValidateDevicePath(smDevice); err != nil {
		return err
	}

	if err := initializeLogger(cfg.Logging, "servicemanager"); err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting service registry",
		logger.Field{Key: "device", Value: smDevice},
		logger.Field{Key: "bus_dir", Value: cfg.Bus.Dir})
	return binder.RunRegistry(ctx, cfg.Bus.Dir, smDevice)
}
