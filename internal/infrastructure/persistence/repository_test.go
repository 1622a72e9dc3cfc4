package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the pricing tables
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	err = db.Exec(`
		CREATE TABLE sales_area_modifiers (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			sales_area_id TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			active INTEGER NOT NULL,
			apply_fixed_amount INTEGER NOT NULL,
			fixed_amount TEXT,
			fixed_currency TEXT,
			percent_amount TEXT NOT NULL,
			apply_to_gross_sales INTEGER NOT NULL,
			apply_accumulative INTEGER NOT NULL,
			priority INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE settlements (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			order_id TEXT NOT NULL,
			sales_area_id TEXT,
			version INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL,
			is_partial_payment INTEGER NOT NULL,
			payments TEXT NOT NULL,
			totals TEXT NOT NULL,
			decision TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}
