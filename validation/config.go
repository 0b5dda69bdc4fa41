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

package validation

import (
	"fmt"

	"github.com/we-are-mono/droidleds/types"
)

// ValidateServiceIdentity validates every part of a bus service identity.
func ValidateServiceIdentity(id types.ServiceIdentity) error {
	v := NewCollector()
	v.CheckMsg(ValidateDevicePath(id.Device), "device")
	v.CheckMsg(ValidateInterfaceName(id.Interface), "interface")
	v.CheckMsg(ValidateSlot(id.Slot), "slot")
	return v.Error()
}

// ValidateConfig checks a loaded configuration and reports every problem at once.
func ValidateConfig(cfg *types.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	v := NewCollector()

	v.WithContext("logging")
	v.Check(ValidateLogLevel(cfg.Logging.Level))
	v.Check(ValidateLogFormat(cfg.Logging.Format))
	for _, out := range cfg.Logging.Outputs {
		v.Check(ValidateLogOutput(out))
		if out == "file" {
			v.CheckMsg(ValidateAbsPath(cfg.Logging.File), "file")
		}
	}

	v.WithContext("bus")
	v.CheckMsg(ValidateAbsPath(cfg.Bus.Dir), "dir")

	v.WithContext("settings")
	v.CheckMsg(ValidateAbsPath(cfg.Settings.Database), "database")

	v.WithContext("hal")
	v.Check(ValidateServiceIdentity(cfg.HAL.Service))
	v.CheckMsg(ValidateAbsPath(cfg.HAL.SysfsRoot), "sysfs_root")

	v.WithContext("backends")
	v.CheckMsg(ValidateServiceIdentity(cfg.Backends.Array), "array")
	if len(cfg.Backends.VectorSlots) == 0 {
		v.Check(fmt.Errorf("vector_slots cannot be empty"))
	}
	for _, id := range cfg.Backends.VectorIdentities() {
		v.CheckMsg(ValidateServiceIdentity(id), "vector")
	}

	return v.Error()
}
