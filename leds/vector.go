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

// VectorBackend talks to an android.hardware.light@2.0::ILight service
type VectorBackend struct {
	backendBase
}

// NewVectorBackend wraps a connection and caches the supported types
func NewVectorBackend(conn *binder.Connection) *VectorBackend {
	b := &VectorBackend{}
	b.attach(conn, FlavorVector, b.getSupportedTypes)
	return b
}

func (b *VectorBackend) getSupportedTypes() ([]types.LightType, bool) {
	reply, ok := b.transact(types.VectorGetSupportedTypes, binder.NewWriter())
	if !ok {
		return nil, false
	}

	ordinals, err := reply.ReadInt32Vector()
	if err != nil {
		b.log.Warn("Malformed getSupportedTypes reply", logger.Err(err))
		return nil, false
	}

	lightTypes := make([]types.LightType, len(ordinals))
	for i, o := range ordinals {
		lightTypes[i] = types.LightType(o)
	}
	return lightTypes, true
}

// Set sends setLight with the state as an embedded buffer
func (b *VectorBackend) Set(color uint32, t types.LightType, flash types.FlashType,
	brightness types.BrightnessType, flashOnMs, flashOffMs int32) bool {

	body, err := types.LightState{
		Color:          color,
		FlashMode:      flash,
		FlashOnMs:      flashOnMs,
		FlashOffMs:     flashOffMs,
		BrightnessMode: brightness,
	}.MarshalBinary()
	if err != nil {
		b.log.Warn("Failed to encode light state", logger.Err(err))
		return false
	}

	w := binder.NewWriter()
	w.WriteInt32(int32(t))
	w.WriteBuffer(body)

	reply, ok := b.transact(types.VectorSetLight, w)
	if ok {
		if status, err := reply.ReadInt32(); err == nil && types.LightStatus(status) != types.LightStatusSuccess {
			b.log.Debug("Light service returned non-success light status",
				logger.Field{Key: "type", Value: t.String()},
				logger.Field{Key: "light_status", Value: status})
		}
	}
	return ok
}
