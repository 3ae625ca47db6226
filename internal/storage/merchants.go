package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
)

const merchantCacheTTL = 5 * time.Minute

// GetMerchant retrieves a directory entry by name.
func (s *SQLiteStorage) GetMerchant(ctx context.Context, name string) (*model.MerchantDirectoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	if entry := s.getCachedMerchant(name); entry != nil {
		return entry, nil
	}

	return s.getMerchantTx(ctx, s.db, name)
}

const merchantColumns = `id, name, category, subcategory, aliases, use_count, is_active, last_updated`

func (s *SQLiteStorage) getMerchantTx(ctx context.Context, q queryable, name string) (*model.MerchantDirectoryEntry, error) {
	row := q.QueryRowContext(ctx, `SELECT `+merchantColumns+` FROM merchant_directory WHERE name = ?`, name)

	entry, err := scanMerchant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}

	s.cacheMerchant(entry)
	return entry, nil
}

func scanMerchant(row interface{ Scan(...any) error }) (*model.MerchantDirectoryEntry, error) {
	var entry model.MerchantDirectoryEntry
	var subcategory, aliases sql.NullString

	err := row.Scan(
		&entry.ID, &entry.Name, &entry.Category, &subcategory, &aliases,
		&entry.UseCount, &entry.IsActive, &entry.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	entry.Subcategory = subcategory.String
	if aliases.String != "" {
		if err := json.Unmarshal([]byte(aliases.String), &entry.Aliases); err != nil {
			return nil, fmt.Errorf("failed to decode merchant aliases: %w", err)
		}
	}
	return &entry, nil
}

// SaveMerchant inserts or updates a directory entry and bumps the rule set
// version. The per-name cache entry is refreshed.
func (s *SQLiteStorage) SaveMerchant(ctx context.Context, entry *model.MerchantDirectoryEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMerchant(entry); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveMerchantTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.cacheMerchant(entry)
	return nil
}

func (s *SQLiteStorage) saveMerchantTx(ctx context.Context, tx *sql.Tx, entry *model.MerchantDirectoryEntry) error {
	var aliases string
	if len(entry.Aliases) > 0 {
		data, err := json.Marshal(entry.Aliases)
		if err != nil {
			return fmt.Errorf("failed to encode aliases: %w", err)
		}
		aliases = string(data)
	}

	if entry.LastUpdated.IsZero() {
		entry.LastUpdated = time.Now()
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO merchant_directory (name, category, subcategory, aliases, is_active, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			category = excluded.category,
			subcategory = excluded.subcategory,
			aliases = excluded.aliases,
			is_active = excluded.is_active,
			last_updated = excluded.last_updated
	`, entry.Name, entry.Category, entry.Subcategory, aliases, entry.IsActive, entry.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to save merchant: %w", err)
	}

	if entry.ID == 0 {
		if id, idErr := result.LastInsertId(); idErr == nil {
			entry.ID = id
		}
	}

	return bumpRuleVersion(ctx, tx)
}

// GetAllMerchants returns every directory entry, active or not.
func (s *SQLiteStorage) GetAllMerchants(ctx context.Context) ([]model.MerchantDirectoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAllMerchantsTx(ctx, s.db)
}

func (s *SQLiteStorage) getAllMerchantsTx(ctx context.Context, q queryable) ([]model.MerchantDirectoryEntry, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+merchantColumns+` FROM merchant_directory ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectMerchants(rows)
}

// GetMerchantsByCategory returns active entries in a category.
func (s *SQLiteStorage) GetMerchantsByCategory(ctx context.Context, category string) ([]model.MerchantDirectoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}
	return s.getMerchantsByCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) getMerchantsByCategoryTx(ctx context.Context, q queryable, category string) ([]model.MerchantDirectoryEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+merchantColumns+`
		FROM merchant_directory
		WHERE category = ? AND is_active = 1
		ORDER BY name
	`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchants by category: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectMerchants(rows)
}

func collectMerchants(rows *sql.Rows) ([]model.MerchantDirectoryEntry, error) {
	var entries []model.MerchantDirectoryEntry
	for rows.Next() {
		entry, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merchant: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// IncrementMerchantUseCount records one directory hit.
func (s *SQLiteStorage) IncrementMerchantUseCount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.incrementMerchantUseCountTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) incrementMerchantUseCountTx(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE merchant_directory
		SET use_count = use_count + 1, last_updated = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to increment merchant use count: %w", err)
	}
	return nil
}

// getCachedMerchant returns a cached entry, invalidating the whole cache when
// the TTL has lapsed.
func (s *SQLiteStorage) getCachedMerchant(name string) *model.MerchantDirectoryEntry {
	s.cacheMutex.RLock()

	if time.Now().After(s.cacheExpiry) {
		s.cacheMutex.RUnlock()
		s.cacheMutex.Lock()
		defer s.cacheMutex.Unlock()

		if time.Now().After(s.cacheExpiry) {
			s.merchantCache = make(map[string]*model.MerchantDirectoryEntry)
			return nil
		}
		return s.merchantCache[name]
	}

	entry := s.merchantCache[name]
	s.cacheMutex.RUnlock()
	return entry
}

func (s *SQLiteStorage) cacheMerchant(entry *model.MerchantDirectoryEntry) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	if len(s.merchantCache) == 0 {
		s.cacheExpiry = time.Now().Add(merchantCacheTTL)
	}
	s.merchantCache[entry.Name] = entry
}
