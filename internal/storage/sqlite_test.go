package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/service"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTransaction(merchant string, amount float64) model.Transaction {
	tx := model.Transaction{
		Date:         time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC),
		Description:  "UPI-" + merchant,
		MerchantName: merchant,
		Amount:       amount,
		Direction:    model.DirectionDebit,
		Currency:     "INR",
		BankCode:     "HDFC",
	}
	tx.Hash = tx.GenerateHash()
	return tx
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := setupStorage(t)

	require.NoError(t, s.Migrate(context.Background()))
}

func TestSaveTransactionsSkipsDuplicates(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	txs := []model.Transaction{
		sampleTransaction("Zomato Ltd", 500),
		sampleTransaction("Swiggy", 320),
	}

	inserted, err := s.SaveTransactions(ctx, "batch-1", txs)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Re-staging the same records inserts nothing.
	inserted, err = s.SaveTransactions(ctx, "batch-2", txs)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	all, err := s.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetTransactionByHash(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	tx := sampleTransaction("Zomato Ltd", 500)
	_, err := s.SaveTransactions(ctx, "batch-1", []model.Transaction{tx})
	require.NoError(t, err)

	got, err := s.GetTransactionByHash(ctx, tx.Hash)
	require.NoError(t, err)
	assert.Equal(t, "Zomato Ltd", got.MerchantName)
	assert.Equal(t, model.DirectionDebit, got.Direction)
	assert.Equal(t, 500.0, got.Amount)

	_, err = s.GetTransactionByHash(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactionFilterByBatch(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.SaveTransactions(ctx, "batch-1", []model.Transaction{sampleTransaction("Zomato Ltd", 500)})
	require.NoError(t, err)
	_, err = s.SaveTransactions(ctx, "batch-2", []model.Transaction{sampleTransaction("Swiggy", 320)})
	require.NoError(t, err)

	got, err := s.GetTransactions(ctx, service.TransactionFilter{BatchID: "batch-2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Swiggy", got[0].MerchantName)
}

func TestCategorizationRoundTrip(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	tx := sampleTransaction("Zomato Ltd", 500)
	_, err := s.SaveTransactions(ctx, "batch-1", []model.Transaction{tx})
	require.NoError(t, err)

	ruleID := int64(7)
	result := &model.CategorizationResult{
		Category:    model.CategoryDining,
		Subcategory: "delivery",
		Method:      model.MethodExactRule,
		RuleID:      &ruleID,
		Confidence:  0.95,
	}
	require.NoError(t, s.SaveCategorization(ctx, tx.Hash, result))

	got, err := s.GetCategorization(ctx, tx.Hash)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryDining, got.Category)
	assert.Equal(t, model.MethodExactRule, got.Method)
	require.NotNil(t, got.RuleID)
	assert.Equal(t, int64(7), *got.RuleID)

	// Upsert replaces the previous decision.
	result.Category = model.CategoryOther
	result.Method = model.MethodFallback
	result.RuleID = nil
	require.NoError(t, s.SaveCategorization(ctx, tx.Hash, result))

	got, err = s.GetCategorization(ctx, tx.Hash)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryOther, got.Category)
	assert.Nil(t, got.RuleID)
}

func TestGetUncategorizedTransactions(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	first := sampleTransaction("Zomato Ltd", 500)
	second := sampleTransaction("Swiggy", 320)
	_, err := s.SaveTransactions(ctx, "batch-1", []model.Transaction{first, second})
	require.NoError(t, err)

	require.NoError(t, s.SaveCategorization(ctx, first.Hash, &model.CategorizationResult{
		Category: model.CategoryDining, Method: model.MethodDirectory, Confidence: 0.95,
	}))

	pending, err := s.GetUncategorizedTransactions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.Hash, pending[0].Hash)
}

func TestDeleteBatchRemovesEverything(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	batch := &model.UploadBatch{ID: "batch-1", SourceFile: "stmt.xlsx", BankCode: "HDFC"}
	require.NoError(t, s.CreateUploadBatch(ctx, batch))

	tx := sampleTransaction("Zomato Ltd", 500)
	_, err := s.SaveTransactions(ctx, batch.ID, []model.Transaction{tx})
	require.NoError(t, err)
	require.NoError(t, s.SaveCategorization(ctx, tx.Hash, &model.CategorizationResult{
		Category: model.CategoryDining, Method: model.MethodFallback, Confidence: 0.3,
	}))

	require.NoError(t, s.DeleteBatch(ctx, batch.ID))

	all, err := s.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = s.GetUploadBatch(ctx, batch.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUploadBatchLifecycle(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	batch := &model.UploadBatch{ID: "batch-1", SourceFile: "stmt.pdf", BankCode: "ICICI"}
	require.NoError(t, s.CreateUploadBatch(ctx, batch))

	got, err := s.GetUploadBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UploadPending, got.Status)
	assert.Nil(t, got.CompletedAt)

	_, err = s.SaveTransactions(ctx, batch.ID, []model.Transaction{sampleTransaction("Zomato Ltd", 500)})
	require.NoError(t, err)

	require.NoError(t, s.UpdateUploadBatchStatus(ctx, batch.ID, model.UploadCompleted, ""))

	got, err = s.GetUploadBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UploadCompleted, got.Status)
	assert.Equal(t, 1, got.RecordCount)
	assert.NotNil(t, got.CompletedAt)

	batches, err := s.ListUploadBatches(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}

func TestRuleCRUD(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	rule := &model.MerchantRule{
		Pattern:     "Zomato Ltd",
		PatternType: model.RuleExact,
		Category:    model.CategoryDining,
		Subcategory: "delivery",
		Priority:    5,
		Confidence:  0.95,
		IsActive:    true,
	}
	require.NoError(t, s.CreateRule(ctx, rule))
	require.NotZero(t, rule.ID)

	got, err := s.GetRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zomato Ltd", got.Pattern)
	assert.Equal(t, model.FieldMerchant, got.AppliesTo)

	got.Confidence = 0.85
	require.NoError(t, s.UpdateRule(ctx, got))

	updated, err := s.GetRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.85, updated.Confidence)

	require.NoError(t, s.IncrementRuleUseCount(ctx, rule.ID))
	counted, err := s.GetRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counted.UseCount)

	require.NoError(t, s.DeactivateRule(ctx, rule.ID))
	active, err := s.GetActiveRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestKeywordRuleRoundTrip(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	rule := &model.MerchantRule{
		PatternType: model.RuleKeyword,
		Keywords:    []string{"bescom", "electricity"},
		Category:    model.CategoryUtilities,
		Confidence:  0.85,
		IsActive:    true,
	}
	require.NoError(t, s.CreateRule(ctx, rule))

	got, err := s.GetRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bescom", "electricity"}, got.Keywords)
}

func TestMerchantDirectoryUpsertAndCache(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	entry := &model.MerchantDirectoryEntry{
		Name:     "Zomato",
		Category: model.CategoryDining,
		Aliases:  []string{"Zomato Media", "Zomato Ltd"},
		IsActive: true,
	}
	require.NoError(t, s.SaveMerchant(ctx, entry))
	require.NotZero(t, entry.ID)

	got, err := s.GetMerchant(ctx, "Zomato")
	require.NoError(t, err)
	assert.Equal(t, []string{"Zomato Media", "Zomato Ltd"}, got.Aliases)

	// Upsert by name replaces category.
	entry.Category = model.CategoryShopping
	require.NoError(t, s.SaveMerchant(ctx, entry))

	got, err = s.GetMerchant(ctx, "Zomato")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryShopping, got.Category)

	byCat, err := s.GetMerchantsByCategory(ctx, model.CategoryShopping)
	require.NoError(t, err)
	assert.Len(t, byCat, 1)
}

func TestLoadRuleSnapshotVersioning(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	snap, err := s.LoadRuleSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Rules)
	assert.Empty(t, snap.Directory)
	initial := snap.Version

	require.NoError(t, s.CreateRule(ctx, &model.MerchantRule{
		Pattern: "Swiggy", PatternType: model.RuleExact,
		Category: model.CategoryDining, Confidence: 0.9, IsActive: true,
	}))
	require.NoError(t, s.SaveMerchant(ctx, &model.MerchantDirectoryEntry{
		Name: "Zomato", Category: model.CategoryDining, IsActive: true,
	}))

	snap, err = s.LoadRuleSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Rules, 1)
	assert.Len(t, snap.Directory, 1)
	assert.Equal(t, initial+2, snap.Version)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestCategorySeedAndCRUD(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SeedDefaultCategories(ctx))
	// Seeding again is a no-op.
	require.NoError(t, s.SeedDefaultCategories(ctx))

	cats, err := s.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 15)

	dining, err := s.GetCategoryByCode(ctx, model.CategoryDining)
	require.NoError(t, err)
	assert.Equal(t, "Dining", dining.Name)

	_, err = s.CreateCategory(ctx, model.CategoryDining, "Dup", "")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	custom, err := s.CreateCategory(ctx, "gifts", "Gifts", "Presents and donations")
	require.NoError(t, err)
	require.NoError(t, s.UpdateCategory(ctx, custom.ID, "Gifting", "updated"))
	require.NoError(t, s.DeactivateCategory(ctx, custom.ID))

	cats, err = s.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 15)
}

func TestTransactionRollback(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.SaveTransactions(ctx, "batch-1", []model.Transaction{sampleTransaction("Zomato Ltd", 500)})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	all, err := s.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
