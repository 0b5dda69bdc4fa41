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
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/journal"
)

// JournaldBackend writes log entries to the systemd journal with
// structured fields, one journal field per log field.
type JournaldBackend struct {
	identifier string
	format     string // "json" or "text"
	mu         sync.Mutex
}

// NewJournaldBackend returns an error when the journal socket is not reachable
func NewJournaldBackend(identifier, format string) (*JournaldBackend, error) {
	if !journal.Enabled() {
		return nil, fmt.Errorf("systemd journal not available")
	}

	return &JournaldBackend{
		identifier: identifier,
		format:     format,
	}, nil
}

func (b *JournaldBackend) Write(entry *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	message := entry.Message
	if b.format == "json" {
		jsonBytes, err := entry.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal log entry: %w", err)
		}
		message = string(jsonBytes)
	}

	vars := map[string]string{
		"SYSLOG_IDENTIFIER": b.identifier,
	}
	if entry.Component != "" {
		vars["COMPONENT"] = entry.Component
	}
	for k, v := range entry.Fields {
		vars[journalKey(k)] = fieldText(v)
	}

	if err := journal.Send(message, journalPriority(entry.Level), vars); err != nil {
		return fmt.Errorf("failed to write to journal: %w", err)
	}

	return nil
}

func (b *JournaldBackend) Close() error {
	return nil
}

func journalPriority(level string) journal.Priority {
	switch level {
	case "debug":
		return journal.PriDebug
	case "warn":
		return journal.PriWarning
	case "error":
		return journal.PriErr
	default:
		return journal.PriInfo
	}
}

// journalKey maps a field name onto the journal's [A-Z0-9_] key alphabet
func journalKey(key string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	out := strings.TrimLeft(sb.String(), "_")
	if out == "" {
		return "FIELD"
	}
	return out
}

// sortedKeys returns the field names in stable order
func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
