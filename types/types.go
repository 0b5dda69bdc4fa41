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

// Package types defines the light-control data structures shared by the
// lights HAL and its clients. Enum ordinals are part of the wire contract.
package types

import "fmt"

// LightType identifies a logical light. Values are wire ordinals.
type LightType int32

const (
	LightTypeBacklight     LightType = 0
	LightTypeKeyboard      LightType = 1
	LightTypeButtons       LightType = 2
	LightTypeBattery       LightType = 3
	LightTypeNotifications LightType = 4
	LightTypeAttention     LightType = 5
	LightTypeBluetooth     LightType = 6
	LightTypeWifi          LightType = 7

	// LightTypeCount is the number of defined light types
	LightTypeCount = 8
)

func (t LightType) String() string {
	switch t {
	case LightTypeBacklight:
		return "backlight"
	case LightTypeKeyboard:
		return "keyboard"
	case LightTypeButtons:
		return "buttons"
	case LightTypeBattery:
		return "battery"
	case LightTypeNotifications:
		return "notifications"
	case LightTypeAttention:
		return "attention"
	case LightTypeBluetooth:
		return "bluetooth"
	case LightTypeWifi:
		return "wifi"
	default:
		return fmt.Sprintf("unknown(%d)", int32(t))
	}
}

// FlashType selects how a light flashes
type FlashType int32

const (
	FlashNone     FlashType = 0
	FlashTimed    FlashType = 1
	FlashHardware FlashType = 2
)

func (f FlashType) String() string {
	switch f {
	case FlashNone:
		return "none"
	case FlashTimed:
		return "timed"
	case FlashHardware:
		return "hardware"
	default:
		return fmt.Sprintf("unknown(%d)", int32(f))
	}
}

// BrightnessType selects who drives the brightness
type BrightnessType int32

const (
	BrightnessUser           BrightnessType = 0
	BrightnessSensor         BrightnessType = 1
	BrightnessLowPersistence BrightnessType = 2
)

func (b BrightnessType) String() string {
	switch b {
	case BrightnessUser:
		return "user"
	case BrightnessSensor:
		return "sensor"
	case BrightnessLowPersistence:
		return "low-persistence"
	default:
		return fmt.Sprintf("unknown(%d)", int32(b))
	}
}

// ServiceIdentity locates a service on the bus: the device it lives on,
// the interface it implements and the instance slot it is registered under.
type ServiceIdentity struct {
	Device    string `toml:"device"`
	Interface string `toml:"interface"`
	Slot      string `toml:"slot"`
}

// FQName returns the fully qualified registry name ("iface/slot")
func (id ServiceIdentity) FQName() string {
	return id.Interface + "/" + id.Slot
}

func (id ServiceIdentity) String() string {
	return id.FQName() + "@" + id.Device
}
