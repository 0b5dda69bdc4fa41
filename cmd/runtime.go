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
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/leds"
	"github.com/we-are-mono/droidleds/state"
	"github.com/we-are-mono/droidleds/types"
)

// connectTimeout bounds each light service candidate
const connectTimeout = 5 * time.Second

// loadRuntimeConfig loads the config file, applies changed global flags
// and validates the result
func loadRuntimeConfig(flags *pflag.FlagSet) (*types.Config, error) {
	cfg, err := state.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}

	if err := state.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initializeLogger sets up the global logger from the logging section.
// A journald output that cannot be opened falls back to the console.
func initializeLogger(cfg types.LoggingConfig, component string) error {
	config := logger.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		Component: component,
	}

	var backends []logger.Backend
	var fallback error
	for _, output := range cfg.Outputs {
		switch output {
		case "console":
			backends = append(backends, logger.NewConsoleBackend("droidleds", cfg.Format, os.Stderr))
		case "file":
			fileBackend, err := logger.NewFileBackend(cfg.File, cfg.Format)
			if err != nil {
				for _, b := range backends {
					b.Close()
				}
				return fmt.Errorf("failed to initialize file backend: %w", err)
			}
			backends = append(backends, fileBackend)
		case "journald":
			journaldBackend, err := logger.NewJournaldBackend("droidleds-"+component, cfg.Format)
			if err != nil {
				fallback = err
				continue
			}
			backends = append(backends, journaldBackend)
		}
	}

	if len(backends) == 0 {
		backends = append(backends, logger.NewConsoleBackend("droidleds", cfg.Format, os.Stderr))
	}

	logger.Init(config, backends)
	if fallback != nil {
		logger.Warn("Could not initialize journald backend", logger.Err(fallback))
	}
	logger.Debug("Logging initialized",
		logger.Field{Key: "outputs", Value: cfg.Outputs},
		logger.Field{Key: "format", Value: cfg.Format})
	return nil
}

// session is what the light commands work with: the façade and the
// settings store behind it
type session struct {
	leds     *leds.Leds
	settings *state.SettingsStore
}

// openSession negotiates a light service and opens the settings store.
// Neither failure is fatal: without a service nothing is supported, and
// without a store the saved level reads as the default.
func openSession(ctx context.Context, cfg *types.Config) *session {
	s := &session{}

	settings, err := state.OpenSettings(cfg.Settings.Database)
	if err != nil {
		logger.Warn("Settings unavailable", logger.Err(err))
	} else {
		s.settings = settings
	}

	dial := leds.DialConnect(binder.WithBusDir(cfg.Bus.Dir))
	connect := func(ctx context.Context, c leds.Candidate) (leds.Backend, error) {
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return dial(ctx, c)
	}

	n := leds.NewNegotiator(leds.DefaultCandidates(cfg.Backends), connect)

	var store leds.Settings
	if s.settings != nil {
		store = s.settings
	}
	l, err := leds.New(ctx, n, store)
	if err != nil {
		if errors.Is(err, leds.ErrNoBackend) {
			logger.Warn("No light service found")
		}
		logger.Debug("Negotiation failed", logger.Err(err))
	}
	s.leds = l
	return s
}

func (s *session) Close() {
	s.leds.Close()
	if s.settings != nil {
		s.settings.Close()
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
