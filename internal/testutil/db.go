// Package testutil provides a migrated SQLite database for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/database"
	"github.com/lshigami/quizmaster/internal/model"
)

// NewDB opens a fresh migrated SQLite database under t.TempDir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.Database{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "quizmaster.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given role and a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()

	user := &model.User{Email: email, Name: email, Password: "not-a-real-hash", Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}
