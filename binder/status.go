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

// Package binder implements the light-control bus: parcel encoding, status
// words, the servicemanager registry, and the client and object ends of a
// transaction.
package binder

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Transport status words. Negative values follow the kernel driver's
// negated-errno convention.
const (
	StatusOK                 int32 = 0
	StatusBadInterface       int32 = -1
	StatusFailed                   = -int32(unix.EFAULT)
	StatusDeadObject               = -int32(unix.EPIPE)
	StatusUnknownTransaction       = -int32(unix.EBADMSG)
)

// StatusIsOK reports whether a transport status word means success
func StatusIsOK(status int32) bool {
	return status == StatusOK
}

// StatusString renders a status word for logs
func StatusString(status int32) string {
	switch status {
	case StatusOK:
		return "ok"
	case StatusBadInterface:
		return "bad-interface"
	case StatusFailed:
		return "failed"
	case StatusDeadObject:
		return "dead-object"
	case StatusUnknownTransaction:
		return "unknown-transaction"
	default:
		return fmt.Sprintf("status(%d)", status)
	}
}
