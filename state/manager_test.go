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

package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tempConfigDir points DROIDLEDS_CONFIG_DIR at a fresh temporary directory
func tempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DROIDLEDS_CONFIG_DIR", dir)
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "droidleds.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("DROIDLEDS_CONFIG_DIR", "")
	assert.Equal(t, "/etc/droidleds", GetConfigDir())

	dir := tempConfigDir(t)
	assert.Equal(t, dir, GetConfigDir())
	assert.Equal(t, filepath.Join(dir, "droidleds.toml"), ConfigPath())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	tempConfigDir(t)

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	assert.NoError(t, Validate(config))
}

func TestLoadConfigFromTOML(t *testing.T) {
	dir := tempConfigDir(t)
	writeConfig(t, dir, `
[logging]
level = "debug"
outputs = ["console", "journald"]

[hal.service]
slot = "default"

[backends]
vector_slots = ["default"]
`)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, []string{"console", "journald"}, config.Logging.Outputs)
	assert.Equal(t, "text", config.Logging.Format)
	assert.Equal(t, "default", config.HAL.Service.Slot)
	assert.Equal(t, "/dev/hwbinder", config.HAL.Service.Device)
	assert.Equal(t, []string{"default"}, config.Backends.VectorSlots)
	assert.Equal(t, "/dev/binder", config.Backends.Array.Device)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := tempConfigDir(t)
	path := writeConfig(t, dir, `
[bus]
dir = "/from/file"

[logging]
level = "warn"
`)

	t.Setenv("DROIDLEDS_BUS_DIR", "/from/env")
	t.Setenv("DROIDLEDS_SETTINGS_DB", "/tmp/settings.db")
	t.Setenv("DROIDLEDS_SYSFS_ROOT", "/tmp/sys")
	t.Setenv("DROIDLEDS_LOG_LEVEL", "error")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", config.Bus.Dir)
	assert.Equal(t, "/tmp/settings.db", config.Settings.Database)
	assert.Equal(t, "/tmp/sys", config.HAL.SysfsRoot)
	assert.Equal(t, "error", config.Logging.Level)
}

func TestLoadConfigSyntaxError(t *testing.T) {
	dir := tempConfigDir(t)
	writeConfig(t, dir, "[logging\nlevel = 1\n")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadConfigUnknownKey(t *testing.T) {
	dir := tempConfigDir(t)
	writeConfig(t, dir, "[hal]\nslots = \"x\"\n")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")
}

func TestValidateRejectsBadOverride(t *testing.T) {
	tempConfigDir(t)
	t.Setenv("DROIDLEDS_LOG_LEVEL", "chatty")

	config, err := LoadConfig("")
	require.NoError(t, err)

	err = Validate(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
