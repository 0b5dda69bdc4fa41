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

// Package state manages configuration and persisted settings for droidleds.
package state

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/we-are-mono/droidleds/types"
	"github.com/we-are-mono/droidleds/validation"
)

const (
	defaultConfigBasePath = "/etc/droidleds"
	configFileName        = "droidleds.toml"

	DefaultSettingsPath = "/var/lib/droidleds/settings.db"
	DefaultLogFile      = "/var/log/droidleds/droidleds.log"
	DefaultBusDir       = "/run/droidleds/bus"
	DefaultSysfsRoot    = "/sys"
)

// GetConfigDir returns the configuration directory path.
// Checks DROIDLEDS_CONFIG_DIR environment variable, falls back to /etc/droidleds
func GetConfigDir() string {
	if dir := os.Getenv("DROIDLEDS_CONFIG_DIR"); dir != "" {
		return dir
	}
	return defaultConfigBasePath
}

// ConfigPath returns the default configuration file path
func ConfigPath() string {
	return filepath.Join(GetConfigDir(), configFileName)
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *types.Config {
	return &types.Config{
		Logging: types.LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console"},
			File:    DefaultLogFile,
		},
		Bus: types.BusConfig{
			Dir: DefaultBusDir,
		},
		Settings: types.SettingsConfig{
			Database: DefaultSettingsPath,
		},
		HAL: types.HALConfig{
			Service: types.ServiceIdentity{
				Device:    "/dev/hwbinder",
				Interface: "android.hardware.light@2.0::ILight",
				Slot:      "libdroid",
			},
			SysfsRoot: DefaultSysfsRoot,
		},
		Backends: types.BackendConfig{
			Array: types.ServiceIdentity{
				Device:    "/dev/binder",
				Interface: "android.hardware.light.ILights",
				Slot:      "default",
			},
			VectorDevice:    "/dev/hwbinder",
			VectorInterface: "android.hardware.light@2.0::ILight",
			VectorSlots:     []string{"libdroid", "default"},
		},
	}
}

// LoadConfig reads the TOML file at path (ConfigPath() when empty) over
// the defaults, then applies environment overrides. A missing file is not
// an error. The result is not validated; see Validate.
func LoadConfig(path string) (*types.Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeConfig(path, data, config); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// Defaults only
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(config)
	return config, nil
}

func decodeConfig(path string, data []byte, config *types.Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(config); err != nil {
		// Provide more helpful error messages for syntax errors and unknown keys
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			line, col := decodeErr.Position()
			return fmt.Errorf("failed to parse config at %s line %d, column %d: %w", path, line, col, err)
		}
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return fmt.Errorf("unknown keys in config %s:\n%s", path, strictErr.String())
		}
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides file values with DROIDLEDS_* environment variables
func applyEnv(config *types.Config) {
	if v := os.Getenv("DROIDLEDS_BUS_DIR"); v != "" {
		config.Bus.Dir = v
	}
	if v := os.Getenv("DROIDLEDS_SETTINGS_DB"); v != "" {
		config.Settings.Database = v
	}
	if v := os.Getenv("DROIDLEDS_SYSFS_ROOT"); v != "" {
		config.HAL.SysfsRoot = v
	}
	if v := os.Getenv("DROIDLEDS_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// Validate checks the configuration after all overrides are applied
func Validate(config *types.Config) error {
	if err := validation.ValidateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	return nil
}
