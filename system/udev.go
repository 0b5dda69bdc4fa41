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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultSysfsRoot is where sysfs is mounted
const DefaultSysfsRoot = "/sys"

// ErrDeviceNotFound is returned when a sysfs path does not name a device directory
var ErrDeviceNotFound = errors.New("device not found")

// Udev answers device queries by walking a sysfs tree. The root is
// configurable so tests can point it at a temporary directory.
type Udev struct {
	root string
}

// NewUdev creates a device manager over the sysfs tree at root
func NewUdev(root string) *Udev {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &Udev{root: root}
}

// Root returns the sysfs mount point
func (u *Udev) Root() string {
	return u.root
}

func (u *Udev) resolve(path string) string {
	if filepath.IsAbs(path) && (path == u.root || strings.HasPrefix(path, u.root+string(filepath.Separator))) {
		return filepath.Clean(path)
	}
	return filepath.Join(u.root, path)
}

// QueryBySysfsPath accepts a path relative to the sysfs root, or an
// absolute path inside it.
func (u *Udev) QueryBySysfsPath(path string) (*Device, error) {
	full := u.resolve(path)

	info, err := os.Stat(full)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, full)
	}
	return &Device{path: full}, nil
}

// QueryBySubsystem returns the devices under class/<subsystem>, ordered by name
func (u *Udev) QueryBySubsystem(subsystem string) ([]*Device, error) {
	classDir := filepath.Join(u.root, "class", subsystem)

	entries, err := os.ReadDir(classDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", classDir, err)
	}

	devices := make([]*Device, 0, len(entries))
	for _, entry := range entries {
		// Class entries are usually symlinks; Stat follows them
		path := filepath.Join(classDir, entry.Name())
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			devices = append(devices, &Device{path: path, subsystem: subsystem})
		}
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Name() < devices[j].Name()
	})
	return devices, nil
}

// Device is a sysfs device directory
type Device struct {
	path      string
	subsystem string
}

// SysfsPath returns the device directory
func (d *Device) SysfsPath() string {
	return d.path
}

// Name returns the kernel name of the device
func (d *Device) Name() string {
	return filepath.Base(d.path)
}

// Subsystem returns the device class, from the subsystem link when present
func (d *Device) Subsystem() string {
	if d.subsystem != "" {
		return d.subsystem
	}
	if target, err := os.Readlink(filepath.Join(d.path, "subsystem")); err == nil {
		return filepath.Base(target)
	}
	return filepath.Base(filepath.Dir(d.path))
}

// AttrPath returns the path of an attribute file
func (d *Device) AttrPath(name string) string {
	return filepath.Join(d.path, name)
}

// SysfsAttr returns the trimmed attribute value, or "" when it cannot be read
func (d *Device) SysfsAttr(name string) string {
	data, err := os.ReadFile(d.AttrPath(name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SysfsAttrAsInt parses the attribute as an integer, returning 0 when it
// is missing or malformed
func (d *Device) SysfsAttrAsInt(name string) int {
	v, err := strconv.Atoi(d.SysfsAttr(name))
	if err != nil {
		return 0
	}
	return v
}

// HasSysfsAttr reports whether the attribute file exists
func (d *Device) HasSysfsAttr(name string) bool {
	return FileExists(d.AttrPath(name))
}
