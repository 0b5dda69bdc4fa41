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
	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/types"
)

// Lights serves the vector-flavor light interface over probed devices
type Lights struct {
	devices *Devices
	log     logger.Logger
}

// New probes once and returns a service over what it found
func New(prober *Prober) *Lights {
	return NewWithDevices(prober.Probe())
}

// NewWithDevices builds a service over already probed devices
func NewWithDevices(devices *Devices) *Lights {
	if devices == nil {
		devices = &Devices{}
	}
	return &Lights{
		devices: devices,
		log:     logger.Component("lights"),
	}
}

// Name identifies the implementation in logs
func (l *Lights) Name() string {
	return "lights"
}

// Devices returns the probed hardware
func (l *Lights) Devices() *Devices {
	return l.devices
}

// Luma converts a 0xRRGGBB color to a perceptual 8-bit intensity
func Luma(color uint32) uint8 {
	r := (color >> 16) & 0xFF
	g := (color >> 8) & 0xFF
	b := color & 0xFF
	return uint8((77*r + 150*g + 29*b) >> 8)
}

// SupportedTypes lists backlight when a backlight was found and
// notifications when any RGB channel was found
func (l *Lights) SupportedTypes() []types.LightType {
	supported := make([]types.LightType, 0, 2)
	if l.devices.Backlight != nil {
		supported = append(supported, types.LightTypeBacklight)
	}
	if l.devices.HasRGB() {
		supported = append(supported, types.LightTypeNotifications)
	}
	return supported
}

// Set actuates one light. Flash and brightness modes are accepted but the
// hardware paths do not use them. Unsupported light types return false
// without touching sysfs.
func (l *Lights) Set(color uint32, t types.LightType, flash types.FlashType,
	brightness types.BrightnessType, flashOnMs, flashOffMs int32) bool {

	switch {
	case t == types.LightTypeBacklight && l.devices.Backlight != nil:
		value := Luma(color)
		l.log.Debug("Backlight change requested", logger.Field{Key: "value", Value: value})
		return l.devices.Backlight.SetBrightness(value)

	case t == types.LightTypeNotifications:
		l.log.Debug("Notification change requested",
			logger.Field{Key: "color", Value: color},
			logger.Field{Key: "flash", Value: flash.String()},
			logger.Field{Key: "on_ms", Value: flashOnMs},
			logger.Field{Key: "off_ms", Value: flashOffMs})
		return l.setNotification(color)

	default:
		l.log.Debug("Unsupported light type", logger.Field{Key: "type", Value: t.String()})
		return false
	}
}

// setNotification drives every present channel and succeeds when any one did
func (l *Lights) setNotification(color uint32) bool {
	channels := []struct {
		dev   *LightDevice
		value uint8
	}{
		{l.devices.Red, uint8(color >> 16)},
		{l.devices.Green, uint8(color >> 8)},
		{l.devices.Blue, uint8(color)},
	}

	result := false
	for _, ch := range channels {
		if ch.dev == nil {
			continue
		}
		if ch.dev.SetBrightness(ch.value) && ch.dev.SetBlink(ch.value > 0) {
			result = true
		} else {
			l.log.Warn("Failed to drive LED", logger.Field{Key: "path", Value: ch.dev.Path()})
		}
	}
	return result
}

// Reply answers one inbound transaction.
//
// setLight replies with the transport status word followed by a light
// status; a payload that cannot be decoded gets a failed status word and
// nothing is written. Unknown codes are answered with
// StatusUnknownTransaction.
func (l *Lights) Reply(req *binder.RemoteRequest) (*binder.Writer, int32) {
	w := binder.NewWriter()

	switch req.Code {
	case types.VectorSetLight:
		r := req.Reader()

		lightType, err := r.ReadInt32()
		var buf []byte
		if err == nil {
			buf, err = r.ReadBuffer()
		}

		var state types.LightState
		if err == nil {
			err = state.UnmarshalBinary(buf)
		}
		if err != nil {
			l.log.Warn("Malformed setLight request", logger.Err(err))
			w.WriteInt32(binder.StatusFailed)
			return w, binder.StatusOK
		}

		w.WriteInt32(binder.StatusOK)
		status := types.LightStatusSuccess
		if !l.Set(state.Color, types.LightType(lightType), state.FlashMode,
			state.BrightnessMode, state.FlashOnMs, state.FlashOffMs) {
			status = l.failureStatus(types.LightType(lightType))
		}
		w.WriteInt32(int32(status))
		return w, binder.StatusOK

	case types.VectorGetSupportedTypes:
		supported := l.SupportedTypes()
		ordinals := make([]int32, len(supported))
		for i, t := range supported {
			ordinals[i] = int32(t)
		}

		w.WriteInt32(binder.StatusOK)
		w.WriteInt32Vector(ordinals)
		return w, binder.StatusOK

	default:
		l.log.Warn("Unknown transaction code", logger.Field{Key: "code", Value: req.Code})
		w.WriteInt32(binder.StatusUnknownTransaction)
		return w, binder.StatusUnknownTransaction
	}
}

func (l *Lights) failureStatus(t types.LightType) types.LightStatus {
	for _, supported := range l.SupportedTypes() {
		if supported == t {
			return types.LightStatusUnknown
		}
	}
	return types.LightStatusNotSupported
}
