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
	"io"
	"os"
	"path/filepath"
	"sync"
)

// StreamBackend writes one rendered entry per line to a writer
type StreamBackend struct {
	mu     sync.Mutex
	out    io.Writer
	format string
}

func NewStreamBackend(out io.Writer, format string) *StreamBackend {
	return &StreamBackend{out: out, format: format}
}

func (b *StreamBackend) Write(entry *Entry) error {
	line, err := entry.Line(b.format)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.out.Write(line); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}

// Close closes the writer if it is closable
func (b *StreamBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// FileBackend appends entries to a log file
type FileBackend struct {
	*StreamBackend
	path string
}

// NewFileBackend opens path for appending, creating its directory
func NewFileBackend(path string, format string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileBackend{StreamBackend: NewStreamBackend(file, format), path: path}, nil
}

func (b *FileBackend) Path() string {
	return b.path
}
