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
	"context"

	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/state"
	"github.com/we-are-mono/droidleds/types"
)

// Kind is a user-facing light category
type Kind int

const (
	KindBacklight Kind = iota
	KindNotification
)

// DefaultBacklightLevel is reported when no level was ever saved
const DefaultBacklightLevel uint = 255

// Settings persists user preferences
type Settings interface {
	GetUint(key string, def uint) (uint, error)
	SetUint(key string, v uint) error
}

// Leds drives the backlight and the notification light. Support is
// determined once, when the backend is attached.
type Leds struct {
	backend  Backend
	settings Settings
	log      logger.Logger

	backlight    bool
	notification bool
}

// New negotiates a backend. When none answers, the returned Leds reports
// nothing as supported and every operation returns false; the error is
// still returned so callers can log it.
func New(ctx context.Context, n *Negotiator, settings Settings) (*Leds, error) {
	backend, err := n.Connect(ctx)
	if err != nil {
		return NewWithBackend(nil, settings), err
	}
	return NewWithBackend(backend, settings), nil
}

// NewWithBackend wraps an already connected backend, which may be nil
func NewWithBackend(backend Backend, settings Settings) *Leds {
	l := &Leds{
		backend:  backend,
		settings: settings,
		log:      logger.Component("leds"),
	}
	if backend != nil {
		l.backlight = backend.IsSupported(types.LightTypeBacklight)
		l.notification = backend.IsSupported(types.LightTypeNotifications)
	}
	return l
}

// IsKindSupported reports whether a light kind can be driven
func (l *Leds) IsKindSupported(kind Kind) bool {
	switch kind {
	case KindBacklight:
		return l.backlight
	case KindNotification:
		return l.notification
	default:
		return false
	}
}

// SetBacklight sets the panel to a grey level in 0..255 (larger values
// clamp) and optionally saves it
func (l *Leds) SetBacklight(level uint, save bool) bool {
	if !l.backlight {
		return false
	}
	if level > 255 {
		level = 255
	}

	v := uint32(level)
	color := uint32(0xFF)<<24 | v<<16 | v<<8 | v
	if !l.backend.Set(color, types.LightTypeBacklight, types.FlashHardware, types.BrightnessUser, 0, 0) {
		return false
	}

	if save && l.settings != nil {
		if err := l.settings.SetUint(state.KeyBacklightLevel, level); err != nil {
			l.log.Warn("Failed to save backlight level", logger.Err(err))
		}
	}
	return true
}

// GetBacklight returns the saved backlight level
func (l *Leds) GetBacklight() uint {
	if l.settings == nil {
		return DefaultBacklightLevel
	}

	level, err := l.settings.GetUint(state.KeyBacklightLevel, DefaultBacklightLevel)
	if err != nil {
		l.log.Warn("Failed to read backlight level", logger.Err(err))
		return DefaultBacklightLevel
	}
	return level
}

func (l *Leds) SetNotification(color uint32, onMs, offMs int32) bool {
	if !l.notification {
		return false
	}
	return l.backend.Set(color, types.LightTypeNotifications, types.FlashNone, types.BrightnessUser, onMs, offMs)
}

func (l *Leds) ClearNotification() bool {
	return l.SetNotification(0, 0, 0)
}

// Close releases the backend
func (l *Leds) Close() error {
	if l.backend == nil {
		return nil
	}
	err := l.backend.Close()
	l.backend = nil
	l.backlight = false
	l.notification = false
	return err
}
