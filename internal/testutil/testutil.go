// Package testutil provides an in-memory database and fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/repository"
)

// NewDB opens a private in-memory SQLite database with the full schema migrated.
// A single connection is used so every query sees the same memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), repository.GormConfig("silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.Migrate(db))
	return db
}

// UserOption adjusts a fixture user before insert.
type UserOption func(*model.UserModel)

func AsAdmin() UserOption {
	return func(u *model.UserModel) { u.IsAdmin = true }
}

func AsSupport() UserOption {
	return func(u *model.UserModel) { u.IsSupport = true }
}

func WithChances(n int) UserOption {
	return func(u *model.UserModel) { u.RemainingCampaignChances = n }
}

func WithAccountStatus(s model.AccountStatus) UserOption {
	return func(u *model.UserModel) { u.AccountStatus = s }
}

// CreateUser inserts an active creator-capable user.
func CreateUser(t testing.TB, db *gorm.DB, opts ...UserOption) *model.UserModel {
	t.Helper()

	u := &model.UserModel{
		Email:                    fmt.Sprintf("%s@verifund.test", uuid.NewString()[:8]),
		FirstName:                "Test",
		LastName:                 "User",
		AccountStatus:            model.AccountStatusActive,
		KycStatus:                model.KycStatusVerified,
		RemainingCampaignChances: 3,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
