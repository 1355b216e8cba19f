// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"testing"

	"usuarios-api/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// OpenTestDB opens a migrated in-memory SQLite database. The pool is capped
// at one connection so every query sees the same memory database.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), config.GormConfig())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
