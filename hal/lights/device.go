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

// Package lights implements the light-control service: it probes sysfs
// for a backlight and RGB notification LEDs and actuates them on request.
package lights

import (
	"strconv"

	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/system"
)

// BlinkType is how an LED can be made to blink on its own
type BlinkType int

const (
	BlinkNone BlinkType = iota
	BlinkBlink
	BlinkBreath
)

func (b BlinkType) String() string {
	switch b {
	case BlinkBlink:
		return "blink"
	case BlinkBreath:
		return "breath"
	default:
		return "none"
	}
}

// LightDevice is one probed sysfs LED or backlight
type LightDevice struct {
	Device *system.Device
	Max    uint32 // max_brightness, 0 when unreadable
	Blink  BlinkType
}

// NewLightDevice reads the device's range and blink capability. breath
// wins over blink when both are present.
func NewLightDevice(d *system.Device) *LightDevice {
	maxBrightness := d.SysfsAttrAsInt("max_brightness")
	if maxBrightness < 0 {
		maxBrightness = 0
	}

	l := &LightDevice{Device: d, Max: uint32(maxBrightness)}
	switch {
	case d.HasSysfsAttr("breath"):
		l.Blink = BlinkBreath
	case d.HasSysfsAttr("blink"):
		l.Blink = BlinkBlink
	}
	return l
}

// Path returns the sysfs directory of the device
func (l *LightDevice) Path() string {
	return l.Device.SysfsPath()
}

// ScaleToMax maps an 8-bit intensity onto [0, maxBrightness]
func ScaleToMax(v uint8, maxBrightness uint32) uint32 {
	return uint32(uint64(v) * uint64(maxBrightness) / 255)
}

func (l *LightDevice) writeInt(attr string, v uint32) bool {
	path := l.Device.AttrPath(attr)
	if !system.CanWriteTo(path) {
		logger.Component("lights").Debug("Attribute not writable", logger.Field{Key: "path", Value: path})
		return false
	}
	return system.WriteToFile(path, strconv.FormatUint(uint64(v), 10)) == nil
}

// SetBrightness writes an 8-bit intensity scaled to the device range
func (l *LightDevice) SetBrightness(v uint8) bool {
	return l.writeInt("brightness", ScaleToMax(v, l.Max))
}

// SetBlink toggles hardware blinking. Devices without blink support
// report success without writing anything.
func (l *LightDevice) SetBlink(enable bool) bool {
	var v uint32
	if enable {
		v = 1
	}

	switch l.Blink {
	case BlinkBreath:
		return l.writeInt("breath", v)
	case BlinkBlink:
		return l.writeInt("blink", v)
	default:
		return true
	}
}
