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

// Transaction codes of the array flavor (android.hardware.light.ILights)
const (
	ArraySetLightState uint32 = 1
	ArrayGetLights     uint32 = 2

	// StabilityVINTF tags parcelables crossing the vendor interface
	StabilityVINTF int32 = 0b111111
)

// Transaction codes of the vector flavor (android.hardware.light@2.0::ILight)
const (
	VectorSetLight          uint32 = 1
	VectorGetSupportedTypes uint32 = 2
)

// LightStatus is the result word a vector-flavor setLight reply carries
// after the transport status
type LightStatus int32

const (
	LightStatusSuccess                LightStatus = 0
	LightStatusNotSupported           LightStatus = 1
	LightStatusBrightnessNotSupported LightStatus = 2
	LightStatusUnknown                LightStatus = 3
)
