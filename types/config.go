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

package types

// LoggingConfig represents configuration for the logging system
type LoggingConfig struct {
	Level   string   `toml:"level"`   // debug, info, warn, error (default: info)
	Format  string   `toml:"format"`  // text, json (default: text)
	Outputs []string `toml:"outputs"` // ["console", "file", "journald"] (default: console)
	File    string   `toml:"file"`    // Log file path (default: /var/log/droidleds/droidleds.log)
}

// BusConfig locates the bus sockets
type BusConfig struct {
	Dir string `toml:"dir"` // Root directory holding one subdirectory per bus device
}

// SettingsConfig locates the persisted settings database
type SettingsConfig struct {
	Database string `toml:"database"`
}

// HALConfig configures the lights service host
type HALConfig struct {
	Service   ServiceIdentity `toml:"service"`
	SysfsRoot string          `toml:"sysfs_root"` // Root of the sysfs tree (default: /sys)
}

// BackendConfig lists where clients look for a light service.
// The array flavor is tried first, then every vector slot in order.
type BackendConfig struct {
	Array           ServiceIdentity `toml:"array"`
	VectorDevice    string          `toml:"vector_device"`
	VectorInterface string          `toml:"vector_interface"`
	VectorSlots     []string        `toml:"vector_slots"`
}

// VectorIdentities expands the vector flavor into one identity per slot
func (c BackendConfig) VectorIdentities() []ServiceIdentity {
	ids := make([]ServiceIdentity, 0, len(c.VectorSlots))
	for _, slot := range c.VectorSlots {
		ids = append(ids, ServiceIdentity{
			Device:    c.VectorDevice,
			Interface: c.VectorInterface,
			Slot:      slot,
		})
	}
	return ids
}

// Config represents the main configuration (/etc/droidleds/droidleds.toml)
type Config struct {
	Logging  LoggingConfig  `toml:"logging"`
	Bus      BusConfig      `toml:"bus"`
	Settings SettingsConfig `toml:"settings"`
	HAL      HALConfig      `toml:"hal"`
	Backends BackendConfig  `toml:"backends"`
}
