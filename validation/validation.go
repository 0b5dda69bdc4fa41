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

// Package validation provides reusable validation helpers for droidleds configuration types.
package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Package-qualified interface name, optionally versioned: a.b.c.IFace or a.b@1.0::IFace
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*(@[0-9]+\.[0-9]+::[A-Z][a-zA-Z0-9_]*)?$`)
	slotRegex      = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// ValidateDevicePath validates that a bus device is an absolute node path such as /dev/hwbinder.
func ValidateDevicePath(device string) error {
	if device == "" {
		return fmt.Errorf("device path cannot be empty")
	}
	if !filepath.IsAbs(device) {
		return fmt.Errorf("device path %q must be absolute", device)
	}
	if base := filepath.Base(device); base == "/" || base == "." {
		return fmt.Errorf("device path %q has no device name", device)
	}
	return nil
}

// ValidateInterfaceName validates a service interface name.
// Valid formats: "android.hardware.light.ILights", "android.hardware.light@2.0::ILight"
func ValidateInterfaceName(iface string) error {
	if iface == "" {
		return fmt.Errorf("interface name cannot be empty")
	}
	if !interfaceRegex.MatchString(iface) {
		return fmt.Errorf("invalid interface name: %s", iface)
	}
	return nil
}

// ValidateSlot validates an instance slot name. Slots may not contain "/".
func ValidateSlot(slot string) error {
	if slot == "" {
		return fmt.Errorf("slot cannot be empty")
	}
	if !slotRegex.MatchString(slot) {
		return fmt.Errorf("invalid slot name: %s", slot)
	}
	return nil
}

// ValidateLogLevel validates a logger level name.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", level)
}

// ValidateLogFormat validates a log output format.
func ValidateLogFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format %q (expected text or json)", format)
	}
	return nil
}

// ValidateLogOutput validates a single log output name.
func ValidateLogOutput(output string) error {
	switch output {
	case "console", "file", "journald":
		return nil
	}
	return fmt.Errorf("invalid log output %q (expected console, file or journald)", output)
}

// ValidateAbsPath validates that a filesystem path is absolute.
func ValidateAbsPath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path %q must be absolute", path)
	}
	return nil
}

// ValidateColor validates a 24-bit RGB color.
func ValidateColor(color uint32) error {
	if color > 0xFFFFFF {
		return fmt.Errorf("color 0x%X out of valid range [0x000000, 0xFFFFFF]", color)
	}
	return nil
}

// ValidateFlashDuration validates a blink on/off time in milliseconds.
func ValidateFlashDuration(ms int) error {
	if ms < 0 {
		return fmt.Errorf("flash duration %d cannot be negative", ms)
	}
	return nil
}
