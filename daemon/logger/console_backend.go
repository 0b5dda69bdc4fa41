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

package logger

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// ConsoleBackend writes entries to a terminal (stderr by default) through hclog
type ConsoleBackend struct {
	hc hclog.Logger
}

// NewConsoleBackend creates a console backend. All filtering happens in the
// Logger, so the hclog level is left at Trace.
func NewConsoleBackend(name, format string, out io.Writer) *ConsoleBackend {
	if out == nil {
		out = os.Stderr
	}

	return &ConsoleBackend{
		hc: hclog.New(&hclog.LoggerOptions{
			Name:       name,
			Level:      hclog.Trace,
			Output:     out,
			JSONFormat: format == "json",
		}),
	}
}

func (b *ConsoleBackend) Write(entry *Entry) error {
	hc := b.hc
	if entry.Component != "" {
		hc = hc.Named(entry.Component)
	}

	args := make([]interface{}, 0, len(entry.Fields)*2)
	for _, k := range sortedKeys(entry.Fields) {
		args = append(args, k, entry.Fields[k])
	}

	switch entry.Level {
	case "debug":
		hc.Debug(entry.Message, args...)
	case "warn":
		hc.Warn(entry.Message, args...)
	case "error":
		hc.Error(entry.Message, args...)
	default:
		hc.Info(entry.Message, args...)
	}
	return nil
}

func (b *ConsoleBackend) Close() error {
	return nil
}
