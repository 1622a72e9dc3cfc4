package migration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add modifier priority", "add_modifier_priority"},
		{"Add-Settlement-Index", "add_settlement_index"},
		{"add__payments__column", "add_payments_column"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	mf, err := CreateMigration(dir, "Add modifier index", "speeds up area lookups", now)
	require.NoError(t, err)

	assert.Equal(t, "20260304050607", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20260304050607_add_modifier_index.up.sql"), mf.UpPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: Add modifier index")
	assert.Contains(t, string(up), "-- speeds up area lookups")

	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := CreateMigration(dir, "Add modifier index", "", now)
		assert.Error(t, err)
	})

	t.Run("rejects unusable names", func(t *testing.T) {
		_, err := CreateMigration(dir, "!!!", "", now)
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			list, err := ListMigrations(driver)
			require.NoError(t, err)
			assert.Equal(t, []string{"000001_create_pricing_tables"}, list)
		})
	}

	_, err := ListMigrations("mysql")
	assert.Error(t, err)
}
