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

package lights

import (
	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/system"
)

// Known sysfs locations, relative to the sysfs root
var (
	KnownBacklightPaths = []string{
		"class/leds/lcd-backlight",
		"class/backlight/panel0-backlight",
	}

	RedPath   = "class/leds/red"
	GreenPath = "class/leds/green"
	BluePath  = "class/leds/blue"

	// Backlight types accepted from the subsystem fallback
	acceptedBacklightTypes = map[string]bool{
		"firmware": true,
		"platform": true,
		"raw":      true,
	}
)

// Devices is the result of probing
type Devices struct {
	Backlight *LightDevice
	Red       *LightDevice
	Green     *LightDevice
	Blue      *LightDevice
}

// HasRGB reports whether any notification channel was found
func (d *Devices) HasRGB() bool {
	return d.Red != nil || d.Green != nil || d.Blue != nil
}

// strategy is one way of locating the backlight; nil means not found
type strategy func() *LightDevice

// Prober locates LEDs through a DeviceManager
type Prober struct {
	dm  system.DeviceManager
	log logger.Logger
}

func NewProber(dm system.DeviceManager) *Prober {
	return &Prober{
		dm:  dm,
		log: logger.Component("lights"),
	}
}

// Probe finds the backlight and RGB channels. Missing hardware is not an error.
func (p *Prober) Probe() *Devices {
	devices := &Devices{
		Backlight: p.probeBacklight(),
		Red:       p.knownPath(RedPath)(),
		Green:     p.knownPath(GreenPath)(),
		Blue:      p.knownPath(BluePath)(),
	}

	if devices.Backlight == nil {
		p.log.Warn("No backlight found")
	}
	if !devices.HasRGB() {
		p.log.Info("No notification LEDs found")
	}
	return devices
}

// probeBacklight runs the strategies in order and stops at the first hit
func (p *Prober) probeBacklight() *LightDevice {
	strategies := make([]strategy, 0, len(KnownBacklightPaths)+1)
	for _, path := range KnownBacklightPaths {
		strategies = append(strategies, p.knownPath(path))
	}
	strategies = append(strategies, p.subsystemFallback)

	for _, s := range strategies {
		if dev := s(); dev != nil {
			return dev
		}
	}
	return nil
}

// knownPath accepts the device at path when it has a brightness attribute
func (p *Prober) knownPath(path string) strategy {
	return func() *LightDevice {
		dev, err := p.dm.QueryBySysfsPath(path)
		if err != nil || !dev.HasSysfsAttr("brightness") {
			return nil
		}

		light := NewLightDevice(dev)
		p.log.Info("Found LED",
			logger.Field{Key: "path", Value: light.Path()},
			logger.Field{Key: "max", Value: light.Max},
			logger.Field{Key: "blink", Value: light.Blink.String()})
		return light
	}
}

// subsystemFallback takes the first backlight-class device of an accepted type
func (p *Prober) subsystemFallback() *LightDevice {
	devs, err := p.dm.QueryBySubsystem("backlight")
	if err != nil {
		p.log.Warn("Backlight subsystem query failed", logger.Err(err))
		return nil
	}

	for _, dev := range devs {
		kind := dev.SysfsAttr("type")
		p.log.Debug("Fallback candidate",
			logger.Field{Key: "path", Value: dev.SysfsPath()},
			logger.Field{Key: "type", Value: kind},
			logger.Field{Key: "name", Value: dev.Name()})

		if !acceptedBacklightTypes[kind] || !dev.HasSysfsAttr("brightness") {
			continue
		}

		light := NewLightDevice(dev)
		p.log.Info("Found backlight",
			logger.Field{Key: "path", Value: light.Path()},
			logger.Field{Key: "max", Value: light.Max})
		return light
	}
	return nil
}
