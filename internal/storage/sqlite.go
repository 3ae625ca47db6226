package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dhanvantari/ledgersift/internal/engine"
	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	cacheExpiry   time.Time
	db            *sql.DB
	merchantCache map[string]*model.MerchantDirectoryEntry
	dbPath        string
	cacheMutex    sync.RWMutex
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:            db,
		dbPath:        dbPath,
		merchantCache: make(map[string]*model.MerchantDirectoryEntry),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// queryable abstracts over *sql.DB and *sql.Tx so the same query helpers run
// inside and outside transactions.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) SaveTransactions(ctx context.Context, batchID string, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}
	return t.storage.saveTransactionsTx(ctx, t.tx, batchID, transactions)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactionsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetTransactionByHash(ctx context.Context, hash string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return nil, err
	}
	return t.storage.getTransactionByHashTx(ctx, t.tx, hash)
}

func (t *sqliteTransaction) GetUncategorizedTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getUncategorizedTx(ctx, t.tx, limit)
}

func (t *sqliteTransaction) SaveCategorization(ctx context.Context, transactionHash string, result *model.CategorizationResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateResult(result); err != nil {
		return err
	}
	return t.storage.saveCategorizationTx(ctx, t.tx, transactionHash, result)
}

func (t *sqliteTransaction) GetCategorization(ctx context.Context, transactionHash string) (*model.CategorizationResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategorizationTx(ctx, t.tx, transactionHash)
}

func (t *sqliteTransaction) DeleteBatch(ctx context.Context, batchID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(batchID, "batchID"); err != nil {
		return err
	}
	return t.storage.deleteBatchTx(ctx, t.tx, batchID)
}

func (t *sqliteTransaction) CreateUploadBatch(ctx context.Context, batch *model.UploadBatch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBatch(batch); err != nil {
		return err
	}
	return t.storage.createUploadBatchTx(ctx, t.tx, batch)
}

func (t *sqliteTransaction) GetUploadBatch(ctx context.Context, id string) (*model.UploadBatch, error) {
	return t.storage.getUploadBatchTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateUploadBatchStatus(ctx context.Context, id string, status model.UploadStatus, message string) error {
	return t.storage.updateUploadBatchStatusTx(ctx, t.tx, id, status, message)
}

func (t *sqliteTransaction) ListUploadBatches(ctx context.Context, limit int) ([]model.UploadBatch, error) {
	return t.storage.listUploadBatchesTx(ctx, t.tx, limit)
}

func (t *sqliteTransaction) CreateRule(ctx context.Context, rule *model.MerchantRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return t.storage.createRuleTx(ctx, t.tx, rule)
}

func (t *sqliteTransaction) GetRule(ctx context.Context, id int64) (*model.MerchantRule, error) {
	return t.storage.getRuleTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetActiveRules(ctx context.Context) ([]model.MerchantRule, error) {
	return t.storage.getActiveRulesTx(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateRule(ctx context.Context, rule *model.MerchantRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return t.storage.updateRuleTx(ctx, t.tx, rule)
}

func (t *sqliteTransaction) DeactivateRule(ctx context.Context, id int64) error {
	return t.storage.deactivateRuleTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) IncrementRuleUseCount(ctx context.Context, id int64) error {
	return t.storage.incrementRuleUseCountTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetMerchant(ctx context.Context, name string) (*model.MerchantDirectoryEntry, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.getMerchantTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) SaveMerchant(ctx context.Context, entry *model.MerchantDirectoryEntry) error {
	if err := validateMerchant(entry); err != nil {
		return err
	}
	return t.storage.saveMerchantTx(ctx, t.tx, entry)
}

func (t *sqliteTransaction) GetAllMerchants(ctx context.Context) ([]model.MerchantDirectoryEntry, error) {
	return t.storage.getAllMerchantsTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetMerchantsByCategory(ctx context.Context, category string) ([]model.MerchantDirectoryEntry, error) {
	return t.storage.getMerchantsByCategoryTx(ctx, t.tx, category)
}

func (t *sqliteTransaction) IncrementMerchantUseCount(ctx context.Context, id int64) error {
	return t.storage.incrementMerchantUseCountTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) LoadRuleSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	return t.storage.loadRuleSnapshotTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	return t.storage.getCategoriesTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoryByCode(ctx context.Context, code string) (*model.Category, error) {
	return t.storage.getCategoryByCodeTx(ctx, t.tx, code)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, code, name, description string) (*model.Category, error) {
	return t.storage.createCategoryTx(ctx, t.tx, code, name, description)
}

func (t *sqliteTransaction) UpdateCategory(ctx context.Context, id int, name, description string) error {
	return t.storage.updateCategoryTx(ctx, t.tx, id, name, description)
}

func (t *sqliteTransaction) DeactivateCategory(ctx context.Context, id int) error {
	return t.storage.deactivateCategoryTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
