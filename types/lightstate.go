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

package types

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// LightStateSize is the fixed wire size of a LightState record
	LightStateSize = 20

	// HwLightSize is the fixed wire size of a HwLight descriptor
	HwLightSize = 12
)

var (
	// ErrLightStateSize is returned when decoding a buffer that is not exactly LightStateSize bytes
	ErrLightStateSize = errors.New("light state: invalid size")

	// ErrHwLightSize is returned when decoding a buffer shorter than HwLightSize bytes
	ErrHwLightSize = errors.New("hw light: invalid size")
)

// LightState is the vendor light state record.
//
// Wire layout (little-endian, every field on a 4-byte boundary):
//
//	0  color          u32 ARGB
//	4  flashMode      i32
//	8  flashOnMs      i32
//	12 flashOffMs     i32
//	16 brightnessMode i32
type LightState struct {
	Color          uint32
	FlashMode      FlashType
	FlashOnMs      int32
	FlashOffMs     int32
	BrightnessMode BrightnessType
}

// MarshalBinary encodes the state into its 20-byte wire form
func (s LightState) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, LightStateSize))
}

// AppendBinary appends the 20-byte wire form to b
func (s LightState) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, s.Color)
	b = binary.LittleEndian.AppendUint32(b, uint32(s.FlashMode))
	b = binary.LittleEndian.AppendUint32(b, uint32(s.FlashOnMs))
	b = binary.LittleEndian.AppendUint32(b, uint32(s.FlashOffMs))
	b = binary.LittleEndian.AppendUint32(b, uint32(s.BrightnessMode))
	return b, nil
}

// UnmarshalBinary decodes a 20-byte wire record. Enum values are not
// range-checked; out-of-range modes pass through unchanged.
func (s *LightState) UnmarshalBinary(data []byte) error {
	if len(data) != LightStateSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrLightStateSize, len(data), LightStateSize)
	}

	s.Color = binary.LittleEndian.Uint32(data[0:4])
	s.FlashMode = FlashType(int32(binary.LittleEndian.Uint32(data[4:8])))
	s.FlashOnMs = int32(binary.LittleEndian.Uint32(data[8:12]))
	s.FlashOffMs = int32(binary.LittleEndian.Uint32(data[12:16]))
	s.BrightnessMode = BrightnessType(int32(binary.LittleEndian.Uint32(data[16:20])))
	return nil
}

// HwLight describes one light exposed by an array-flavor light service
type HwLight struct {
	ID      int32
	Ordinal int32
	Type    LightType
}

// MarshalBinary encodes the descriptor into its 12-byte wire form
func (l HwLight) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, HwLightSize)
	b = binary.LittleEndian.AppendUint32(b, uint32(l.ID))
	b = binary.LittleEndian.AppendUint32(b, uint32(l.Ordinal))
	b = binary.LittleEndian.AppendUint32(b, uint32(l.Type))
	return b, nil
}

// UnmarshalBinary decodes the leading 12 bytes of a descriptor. Newer
// services may append fields; those bytes are ignored.
func (l *HwLight) UnmarshalBinary(data []byte) error {
	if len(data) < HwLightSize {
		return fmt.Errorf("%w: got %d bytes, want at least %d", ErrHwLightSize, len(data), HwLightSize)
	}

	l.ID = int32(binary.LittleEndian.Uint32(data[0:4]))
	l.Ordinal = int32(binary.LittleEndian.Uint32(data[4:8]))
	l.Type = LightType(int32(binary.LittleEndian.Uint32(data[8:12])))
	return nil
}
