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
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSettings(t *testing.T) *SettingsStore {
	t.Helper()
	store, err := OpenSettings(filepath.Join(t.TempDir(), "nested", "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSettingsGetUintDefault(t *testing.T) {
	store := openTestSettings(t)

	level, err := store.GetUint(KeyBacklightLevel, 255)
	require.NoError(t, err)
	assert.Equal(t, uint(255), level)
}

func TestSettingsUpsert(t *testing.T) {
	store := openTestSettings(t)

	require.NoError(t, store.SetUint(KeyBacklightLevel, 42))
	require.NoError(t, store.SetUint(KeyBacklightLevel, 128))

	level, err := store.GetUint(KeyBacklightLevel, 255)
	require.NoError(t, err)
	assert.Equal(t, uint(128), level)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM settings").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSettingsPersistAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	store, err := OpenSettings(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "theme", "dark"))
	require.NoError(t, store.Close())

	store, err = OpenSettings(path)
	require.NoError(t, err)
	defer store.Close()

	value, ok, err := store.Get(context.Background(), "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", value)
}

func TestSettingsNonNumeric(t *testing.T) {
	store := openTestSettings(t)
	require.NoError(t, store.Set(context.Background(), KeyBacklightLevel, "bright"))

	level, err := store.GetUint(KeyBacklightLevel, 255)
	assert.Error(t, err)
	assert.Equal(t, uint(255), level)
}

func TestSettingsSchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS settings").WillReturnError(assert.AnError)

	_, err = NewSettingsStore(db)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsQueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS settings").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewSettingsStore(db)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT value FROM settings WHERE key = ").
		WithArgs(KeyBacklightLevel).
		WillReturnError(assert.AnError)
	level, err := store.GetUint(KeyBacklightLevel, 200)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, uint(200), level)

	mock.ExpectExec("INSERT INTO settings").
		WithArgs(KeyBacklightLevel, "10", sqlmock.AnyArg()).
		WillReturnError(assert.AnError)
	assert.ErrorIs(t, store.SetUint(KeyBacklightLevel, 10), assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}
