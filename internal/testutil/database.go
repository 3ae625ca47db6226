// Package testutil provides shared test helpers for ledgersift.
package testutil

import (
	"context"
	"testing"

	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/service"
	"github.com/dhanvantari/ledgersift/internal/storage"
)

// TestDB is an in-memory database wired for one test.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory SQLite store seeded with the
// default category set. Cleanup is registered automatically.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if err := store.SeedDefaultCategories(ctx); err != nil {
		t.Fatalf("failed to seed categories: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return &TestDB{Storage: store, t: t}
}

// SeedRule inserts a rule or fails the test.
func (db *TestDB) SeedRule(rule *model.MerchantRule) *model.MerchantRule {
	db.t.Helper()
	if err := db.Storage.CreateRule(context.Background(), rule); err != nil {
		db.t.Fatalf("failed to seed rule: %v", err)
	}
	return rule
}

// SeedMerchant inserts a directory entry or fails the test.
func (db *TestDB) SeedMerchant(entry *model.MerchantDirectoryEntry) *model.MerchantDirectoryEntry {
	db.t.Helper()
	if err := db.Storage.SaveMerchant(context.Background(), entry); err != nil {
		db.t.Fatalf("failed to seed merchant: %v", err)
	}
	return entry
}

// SeedTransactions stages transactions under a batch or fails the test.
func (db *TestDB) SeedTransactions(batchID string, txs []model.Transaction) {
	db.t.Helper()
	batch := &model.UploadBatch{ID: batchID}
	if err := db.Storage.CreateUploadBatch(context.Background(), batch); err != nil {
		db.t.Fatalf("failed to create batch: %v", err)
	}
	if _, err := db.Storage.SaveTransactions(context.Background(), batchID, txs); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}
