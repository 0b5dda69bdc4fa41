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

package system

import (
	"fmt"
	"sync"
)

// MockDeviceManager is a mock implementation of DeviceManager for testing.
// Devices are served from Udev when set, otherwise from the maps.
type MockDeviceManager struct {
	mu sync.Mutex

	// State
	Udev       *Udev
	Paths      map[string]*Device
	Subsystems map[string][]*Device

	// Call counters for verification
	QueryBySysfsPathCalls int
	QueryBySubsystemCalls int

	// Error injection for testing error paths
	QueryBySysfsPathError error
	QueryBySubsystemError error
}

// NewMockDeviceManager creates a new MockDeviceManager backed by a sysfs tree at root.
func NewMockDeviceManager(root string) *MockDeviceManager {
	return &MockDeviceManager{
		Udev:       NewUdev(root),
		Paths:      make(map[string]*Device),
		Subsystems: make(map[string][]*Device),
	}
}

func (m *MockDeviceManager) QueryBySysfsPath(path string) (*Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryBySysfsPathCalls++

	if m.QueryBySysfsPathError != nil {
		return nil, m.QueryBySysfsPathError
	}
	if d, ok := m.Paths[path]; ok {
		return d, nil
	}
	if m.Udev != nil {
		return m.Udev.QueryBySysfsPath(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
}

func (m *MockDeviceManager) QueryBySubsystem(subsystem string) ([]*Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryBySubsystemCalls++

	if m.QueryBySubsystemError != nil {
		return nil, m.QueryBySubsystemError
	}
	if devices, ok := m.Subsystems[subsystem]; ok {
		return devices, nil
	}
	if m.Udev != nil {
		return m.Udev.QueryBySubsystem(subsystem)
	}
	return nil, nil
}
