package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
)

// GetCategories returns all active categories ordered by code.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoriesTx(ctx, s.db)
}

func (s *SQLiteStorage) getCategoriesTx(ctx context.Context, q queryable) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, code, name, description, created_at, is_active
		FROM categories
		WHERE is_active = 1
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var description sql.NullString
		if scanErr := rows.Scan(&cat.ID, &cat.Code, &cat.Name, &description, &cat.CreatedAt, &cat.IsActive); scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		cat.Description = description.String
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// GetCategoryByCode fetches one category by its canonical code.
func (s *SQLiteStorage) GetCategoryByCode(ctx context.Context, code string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(code, "code"); err != nil {
		return nil, err
	}
	return s.getCategoryByCodeTx(ctx, s.db, code)
}

func (s *SQLiteStorage) getCategoryByCodeTx(ctx context.Context, q queryable, code string) (*model.Category, error) {
	var cat model.Category
	var description sql.NullString

	err := q.QueryRowContext(ctx, `
		SELECT id, code, name, description, created_at, is_active
		FROM categories WHERE code = ?
	`, code).Scan(&cat.ID, &cat.Code, &cat.Name, &description, &cat.CreatedAt, &cat.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	cat.Description = description.String
	return &cat, nil
}

// CreateCategory inserts a new category. Duplicate codes fail with
// ErrDuplicateEntry.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, code, name, description string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(code, "code"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cat, err := s.createCategoryTx(ctx, tx, code, name, description)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, tx *sql.Tx, code, name, description string) (*model.Category, error) {
	code = strings.ToLower(strings.TrimSpace(code))

	result, err := tx.ExecContext(ctx, `
		INSERT INTO categories (code, name, description) VALUES (?, ?, ?)
	`, code, name, description)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, fmt.Errorf("category %q: %w", code, common.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	return s.getCategoryByIDTx(ctx, tx, int(id))
}

func (s *SQLiteStorage) getCategoryByIDTx(ctx context.Context, q queryable, id int) (*model.Category, error) {
	var cat model.Category
	var description sql.NullString

	err := q.QueryRowContext(ctx, `
		SELECT id, code, name, description, created_at, is_active
		FROM categories WHERE id = ?
	`, id).Scan(&cat.ID, &cat.Code, &cat.Name, &description, &cat.CreatedAt, &cat.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	cat.Description = description.String
	return &cat, nil
}

// UpdateCategory renames or re-describes a category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int, name, description string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.updateCategoryTx(ctx, tx, id, name, description); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) updateCategoryTx(ctx context.Context, tx *sql.Tx, id int, name, description string) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE categories SET name = ?, description = ? WHERE id = ?
	`, name, description, id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeactivateCategory soft-deletes a category. Rules and categorizations that
// reference it keep their history.
func (s *SQLiteStorage) DeactivateCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deactivateCategoryTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) deactivateCategoryTx(ctx context.Context, tx *sql.Tx, id int) error {
	result, err := tx.ExecContext(ctx, `UPDATE categories SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate category: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SeedDefaultCategories inserts the canonical category set, skipping codes
// that already exist. Safe to run on every startup.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	defaults := []struct {
		code string
		name string
	}{
		{model.CategoryDining, "Dining"},
		{model.CategoryGroceries, "Groceries"},
		{model.CategoryUtilities, "Utilities"},
		{model.CategoryTransport, "Transport"},
		{model.CategoryFuel, "Fuel"},
		{model.CategoryPets, "Pets"},
		{model.CategoryShopping, "Shopping"},
		{model.CategoryEntertain, "Entertainment"},
		{model.CategoryInvestment, "Investment"},
		{model.CategoryLoan, "Loan EMI"},
		{model.CategoryInsurance, "Insurance"},
		{model.CategoryCreditCard, "Credit Card Bill"},
		{model.CategoryTransfersOut, "Transfers Out"},
		{model.CategoryTransfersIn, "Transfers In"},
		{model.CategoryOther, "Other"},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range defaults {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO categories (code, name) VALUES (?, ?)
		`, d.code, d.name); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", d.code, err)
		}
	}
	return tx.Commit()
}
