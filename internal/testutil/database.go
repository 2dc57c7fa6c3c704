// Package testutil provides test fixtures for the inference pipeline:
// in-memory databases and builders for synthetic user data.
package testutil

import (
	"context"
	"testing"

	"github.com/mdliss/finsight/internal/service"
	"github.com/mdliss/finsight/internal/storage"
)

// TestDB wraps an in-memory migrated database for one test.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with the schema
// applied. Cleanup is registered automatically.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedUser persists a full fixture user and fails the test on any error.
func (db *TestDB) SeedUser(ctx context.Context, f *UserFixture) {
	db.t.Helper()

	if err := db.Storage.SaveUserProfile(ctx, &f.Profile); err != nil {
		db.t.Fatalf("failed to seed user %s: %v", f.Profile.ID, err)
	}
	if len(f.Accounts) > 0 {
		if err := db.Storage.SaveAccounts(ctx, f.Accounts); err != nil {
			db.t.Fatalf("failed to seed accounts for %s: %v", f.Profile.ID, err)
		}
	}
	if len(f.Liabilities) > 0 {
		if err := db.Storage.SaveLiabilities(ctx, f.Liabilities); err != nil {
			db.t.Fatalf("failed to seed liabilities for %s: %v", f.Profile.ID, err)
		}
	}
	if len(f.Transactions) > 0 {
		if err := db.Storage.SaveTransactions(ctx, f.Transactions); err != nil {
			db.t.Fatalf("failed to seed transactions for %s: %v", f.Profile.ID, err)
		}
	}
}
