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

package leds

import (
	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/types"
)

// ArrayBackend talks to an android.hardware.light.ILights service
type ArrayBackend struct {
	backendBase
}

// NewArrayBackend wraps a connection and caches the lights it reports
func NewArrayBackend(conn *binder.Connection) *ArrayBackend {
	b := &ArrayBackend{}
	b.attach(conn, FlavorArray, b.getLights)
	return b
}

func (b *ArrayBackend) getLights() ([]types.LightType, bool) {
	reply, ok := b.transact(types.ArrayGetLights, binder.NewWriter())
	if !ok {
		return nil, false
	}

	count, err := reply.ReadInt32()
	if err != nil {
		b.log.Warn("Malformed getLights reply", logger.Err(err))
		return nil, false
	}
	// every descriptor takes at least its presence marker
	if count < 0 || int(count) > reply.Remaining()/4 {
		b.log.Warn("Malformed getLights reply",
			logger.Field{Key: "count", Value: count},
			logger.Field{Key: "remaining", Value: reply.Remaining()})
		return nil, false
	}

	lightTypes := make([]types.LightType, 0, count)
	for i := int32(0); i < count; i++ {
		var light types.HwLight
		present, err := reply.ReadParcelable(&light)
		if err != nil {
			b.log.Warn("Malformed light descriptor", logger.Field{Key: "index", Value: i}, logger.Err(err))
			return nil, false
		}
		if !present {
			continue
		}
		b.log.Debug("Light available",
			logger.Field{Key: "id", Value: light.ID},
			logger.Field{Key: "type", Value: light.Type.String()})
		lightTypes = append(lightTypes, light.Type)
	}
	return lightTypes, true
}

// Set sends setLightState with the light type as the light id
func (b *ArrayBackend) Set(color uint32, t types.LightType, flash types.FlashType,
	brightness types.BrightnessType, flashOnMs, flashOffMs int32) bool {

	state := types.LightState{
		Color:          color,
		FlashMode:      flash,
		FlashOnMs:      flashOnMs,
		FlashOffMs:     flashOffMs,
		BrightnessMode: brightness,
	}

	w := binder.NewWriter()
	w.WriteInt32(int32(t))
	if err := w.WriteParcelable(state); err != nil {
		b.log.Warn("Failed to encode light state", logger.Err(err))
		return false
	}
	w.WriteInt32(types.StabilityVINTF)

	_, ok := b.transact(types.ArraySetLightState, w)
	return ok
}
