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

package binder

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	// DefaultBusDir holds one directory per bus device
	DefaultBusDir = "/run/droidleds/bus"

	// RegistrySocketName is the servicemanager socket inside a device directory
	RegistrySocketName = "servicemanager.sock"
)

var (
	// ErrNoDevice is returned when the bus device does not exist
	ErrNoDevice = errors.New("binder: no such device")

	// ErrServiceNotFound is returned when the registry has no live service under a name
	ErrServiceNotFound = errors.New("binder: service not found")
)

// BusDir returns the bus root, preferring DROIDLEDS_BUS_DIR env var
func BusDir() string {
	if dir := os.Getenv("DROIDLEDS_BUS_DIR"); dir != "" {
		return dir
	}
	return DefaultBusDir
}

// DeviceDir maps a device node such as /dev/hwbinder onto its bus directory
func DeviceDir(busDir, device string) string {
	return filepath.Join(busDir, filepath.Base(device))
}

// RegistrySocket returns the servicemanager socket path for a device
func RegistrySocket(busDir, device string) string {
	return filepath.Join(DeviceDir(busDir, device), RegistrySocketName)
}
