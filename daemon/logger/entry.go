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
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entry is one log record as handed to backends
type Entry struct {
	Timestamp string                 `json:"timestamp"` // RFC3339, UTC
	Level     string                 `json:"level"`
	Component string                 `json:"component"` // hal, registry, leds, etc.
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
}

// NewEntry stamps a record with the current time
func NewEntry(level, component, message string, fields map[string]interface{}) *Entry {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: component,
		Message:   message,
		Fields:    fields,
	}
}

func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ToText renders "<time> [level] [component] message k=v ..." with keys sorted
func (e *Entry) ToText() string {
	var sb strings.Builder
	sb.WriteString(e.Timestamp)
	sb.WriteString(" [" + e.Level + "]")
	if e.Component != "" {
		sb.WriteString(" [" + e.Component + "]")
	}
	sb.WriteString(" " + e.Message)

	for _, k := range sortedKeys(e.Fields) {
		sb.WriteString(" " + k + "=" + fieldText(e.Fields[k]))
	}
	return sb.String()
}

// Line renders the entry in format ("json" or text) as one
// newline-terminated record
func (e *Entry) Line(format string) ([]byte, error) {
	if format != "json" {
		return []byte(e.ToText() + "\n"), nil
	}

	b, err := e.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(b, '\n'), nil
}

func fieldText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
