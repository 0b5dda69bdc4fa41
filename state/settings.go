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

package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite3 driver
)

// KeyBacklightLevel persists the last saved backlight level
const KeyBacklightLevel = "backlight-level"

// SettingsStore is a small key/value store for user settings, backed by SQLite
type SettingsStore struct {
	db *sql.DB
}

// OpenSettings opens (creating if needed) the settings database at path
func OpenSettings(path string) (*SettingsStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping settings database: %w", err)
	}

	store, err := NewSettingsStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSettingsStore wraps an open database and ensures the schema exists
func NewSettingsStore(db *sql.DB) (*SettingsStore, error) {
	s := &SettingsStore{db: db}
	if err := s.initializeSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SettingsStore) initializeSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

// Get returns the stored value and whether the key exists
func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}

// GetUint returns the stored unsigned value, or def when the key is absent
func (s *SettingsStore) GetUint(key string, def uint) (uint, error) {
	value, ok, err := s.Get(context.Background(), key)
	if err != nil || !ok {
		return def, err
	}

	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return def, fmt.Errorf("setting %s has non-numeric value %q: %w", key, value, err)
	}
	return uint(v), nil
}

// SetUint stores an unsigned value
func (s *SettingsStore) SetUint(key string, v uint) error {
	return s.Set(context.Background(), key, strconv.FormatUint(uint64(v), 10))
}

func (s *SettingsStore) Close() error {
	return s.db.Close()
}
