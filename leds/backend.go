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

// Package leds controls the device's lights through whichever light
// service flavor the platform exposes.
package leds

import (
	"sync"

	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/daemon/logger"
	"github.com/we-are-mono/droidleds/types"
)

// Backend is one connected light service
type Backend interface {
	IsSupported(t types.LightType) bool
	Set(color uint32, t types.LightType, flash types.FlashType,
		brightness types.BrightnessType, flashOnMs, flashOffMs int32) bool
	Close() error
}

// querySupported fetches the light types a service can drive
type querySupported func() ([]types.LightType, bool)

// backendBase holds what both flavors share: the connection and the
// supported-type cache. The cache is filled at connect time; if that
// query failed it is retried on every IsSupported until one succeeds.
type backendBase struct {
	conn  *binder.Connection
	log   logger.Logger
	query querySupported

	mu        sync.Mutex
	supported map[types.LightType]bool
	cached    bool
}

func (b *backendBase) attach(conn *binder.Connection, flavor Flavor, query querySupported) {
	b.conn = conn
	b.query = query
	b.log = logger.Component("leds").With(
		logger.Field{Key: "flavor", Value: flavor.String()},
		logger.Field{Key: "service", Value: conn.Identity.String()})

	b.mu.Lock()
	b.refreshLocked()
	b.mu.Unlock()
}

func (b *backendBase) refreshLocked() {
	lightTypes, ok := b.query()
	if !ok {
		b.log.Warn("Failed to get supported LED types")
		return
	}

	b.supported = make(map[types.LightType]bool, len(lightTypes))
	for _, t := range lightTypes {
		b.supported[t] = true
	}
	b.cached = true
}

func (b *backendBase) IsSupported(t types.LightType) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.cached {
		b.refreshLocked()
	}
	return b.supported[t]
}

// transact sends a request and accepts the reply only when both the
// transport status and the reply's leading status word are OK
func (b *backendBase) transact(code uint32, w *binder.Writer) (*binder.Reader, bool) {
	reply, status := b.conn.Client.Transact(code, w)
	if !binder.StatusIsOK(status) {
		b.log.Warn("Transaction failed",
			logger.Field{Key: "code", Value: code},
			logger.Field{Key: "status", Value: binder.StatusString(status)})
		return nil, false
	}

	first, err := reply.ReadInt32()
	if err != nil || first != binder.StatusOK {
		b.log.Warn("Light service reported failure",
			logger.Field{Key: "code", Value: code},
			logger.Field{Key: "status", Value: first})
		return nil, false
	}
	return reply, true
}

func (b *backendBase) Close() error {
	return b.conn.Close()
}
