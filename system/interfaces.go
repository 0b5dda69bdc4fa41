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

// Package system provides low-level system integration: sysfs device
// queries and attribute writes.
package system

// DeviceManager abstracts sysfs device discovery for testability.
type DeviceManager interface {
	// QueryBySysfsPath returns the device at a sysfs directory
	QueryBySysfsPath(path string) (*Device, error)
	// QueryBySubsystem lists the devices of a subsystem class
	QueryBySubsystem(subsystem string) ([]*Device, error)
}
