// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/dhanvantari/ledgersift/internal/engine"
	"github.com/dhanvantari/ledgersift/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	BatchID   string
	Category  string
	BankCode  string
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, batchID string, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByHash(ctx context.Context, hash string) (*model.Transaction, error)
	GetUncategorizedTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
	SaveCategorization(ctx context.Context, transactionHash string, result *model.CategorizationResult) error
	GetCategorization(ctx context.Context, transactionHash string) (*model.CategorizationResult, error)
	DeleteBatch(ctx context.Context, batchID string) error

	// Upload batch tracking
	CreateUploadBatch(ctx context.Context, batch *model.UploadBatch) error
	GetUploadBatch(ctx context.Context, id string) (*model.UploadBatch, error)
	UpdateUploadBatchStatus(ctx context.Context, id string, status model.UploadStatus, message string) error
	ListUploadBatches(ctx context.Context, limit int) ([]model.UploadBatch, error)

	// Merchant rule operations
	CreateRule(ctx context.Context, rule *model.MerchantRule) error
	GetRule(ctx context.Context, id int64) (*model.MerchantRule, error)
	GetActiveRules(ctx context.Context) ([]model.MerchantRule, error)
	UpdateRule(ctx context.Context, rule *model.MerchantRule) error
	DeactivateRule(ctx context.Context, id int64) error
	IncrementRuleUseCount(ctx context.Context, id int64) error

	// Merchant directory operations
	GetMerchant(ctx context.Context, name string) (*model.MerchantDirectoryEntry, error)
	SaveMerchant(ctx context.Context, entry *model.MerchantDirectoryEntry) error
	GetAllMerchants(ctx context.Context) ([]model.MerchantDirectoryEntry, error)
	GetMerchantsByCategory(ctx context.Context, category string) ([]model.MerchantDirectoryEntry, error)
	IncrementMerchantUseCount(ctx context.Context, id int64) error

	// Rule snapshot loading for the categorization cascade
	LoadRuleSnapshot(ctx context.Context) (*engine.Snapshot, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByCode(ctx context.Context, code string) (*model.Category, error)
	CreateCategory(ctx context.Context, code, name, description string) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int, name, description string) error
	DeactivateCategory(ctx context.Context, id int) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// IngestStats shows the results of one ingestion run.
type IngestStats struct {
	Duration     time.Duration
	BatchID      string
	FilesParsed  int
	RecordsRead  int
	RecordsSaved int
	Duplicates   int
	Failures     int
}

// CategorizeStats shows the results of one categorization run.
type CategorizeStats struct {
	Duration     time.Duration
	Total        int
	ByMethod     map[model.MatchMethod]int
	LowConfident int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
