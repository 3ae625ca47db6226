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

// CreateRule inserts a new merchant rule and bumps the rule set version.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.MerchantRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.createRuleTx(ctx, tx, rule); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) createRuleTx(ctx context.Context, tx *sql.Tx, rule *model.MerchantRule) error {
	keywords, err := encodeKeywords(rule.Keywords)
	if err != nil {
		return err
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO merchant_rules
			(pattern, pattern_type, applies_to, category, subcategory, keywords,
			 priority, confidence, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rule.Pattern, string(rule.PatternType), appliesTo(rule), rule.Category,
		rule.Subcategory, keywords, rule.Priority, rule.Confidence, rule.IsActive, now, now)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule id: %w", err)
	}
	rule.ID = id
	rule.CreatedAt = now
	rule.UpdatedAt = now

	return bumpRuleVersion(ctx, tx)
}

// GetRule fetches a rule by id.
func (s *SQLiteStorage) GetRule(ctx context.Context, id int64) (*model.MerchantRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getRuleTx(ctx, s.db, id)
}

const ruleColumns = `id, pattern, pattern_type, applies_to, category, subcategory,
	keywords, priority, confidence, use_count, is_active, created_at, updated_at`

func (s *SQLiteStorage) getRuleTx(ctx context.Context, q queryable, id int64) (*model.MerchantRule, error) {
	row := q.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM merchant_rules WHERE id = ?`, id)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

func scanRule(row interface{ Scan(...any) error }) (*model.MerchantRule, error) {
	var rule model.MerchantRule
	var patternType, keywords string
	var pattern, appliesToField, subcategory sql.NullString

	err := row.Scan(
		&rule.ID, &pattern, &patternType, &appliesToField, &rule.Category,
		&subcategory, &keywords, &rule.Priority, &rule.Confidence,
		&rule.UseCount, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.Pattern = pattern.String
	rule.PatternType = model.RulePatternType(patternType)
	rule.AppliesTo = model.RuleField(appliesToField.String)
	rule.Subcategory = subcategory.String
	if keywords != "" {
		if err := json.Unmarshal([]byte(keywords), &rule.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode rule keywords: %w", err)
		}
	}
	return &rule, nil
}

// GetActiveRules returns all active rules, highest priority first.
func (s *SQLiteStorage) GetActiveRules(ctx context.Context) ([]model.MerchantRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getActiveRulesTx(ctx, s.db)
}

func (s *SQLiteStorage) getActiveRulesTx(ctx context.Context, q queryable) ([]model.MerchantRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM merchant_rules
		WHERE is_active = 1
		ORDER BY priority DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.MerchantRule
	for rows.Next() {
		rule, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", scanErr)
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// UpdateRule rewrites a rule in place and bumps the rule set version.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.MerchantRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.updateRuleTx(ctx, tx, rule); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) updateRuleTx(ctx context.Context, tx *sql.Tx, rule *model.MerchantRule) error {
	keywords, err := encodeKeywords(rule.Keywords)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE merchant_rules SET
			pattern = ?, pattern_type = ?, applies_to = ?, category = ?,
			subcategory = ?, keywords = ?, priority = ?, confidence = ?,
			is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, rule.Pattern, string(rule.PatternType), appliesTo(rule), rule.Category,
		rule.Subcategory, keywords, rule.Priority, rule.Confidence, rule.IsActive, rule.ID)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return common.ErrNotFound
	}

	return bumpRuleVersion(ctx, tx)
}

// DeactivateRule soft-deletes a rule; history and use counts survive.
func (s *SQLiteStorage) DeactivateRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deactivateRuleTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) deactivateRuleTx(ctx context.Context, tx *sql.Tx, id int64) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE merchant_rules SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate rule: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return common.ErrNotFound
	}
	return bumpRuleVersion(ctx, tx)
}

// IncrementRuleUseCount records one application of a rule.
func (s *SQLiteStorage) IncrementRuleUseCount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.incrementRuleUseCountTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) incrementRuleUseCountTx(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE merchant_rules SET use_count = use_count + 1 WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to increment rule use count: %w", err)
	}
	return nil
}

func encodeKeywords(keywords []string) (string, error) {
	if len(keywords) == 0 {
		return "", nil
	}
	data, err := json.Marshal(keywords)
	if err != nil {
		return "", fmt.Errorf("failed to encode keywords: %w", err)
	}
	return string(data), nil
}

func appliesTo(rule *model.MerchantRule) string {
	if rule.AppliesTo == "" {
		return string(model.FieldMerchant)
	}
	return string(rule.AppliesTo)
}

// bumpRuleVersion advances the rule set version inside a write transaction.
// Snapshot loads read the version so categorization runs can be attributed
// to the rule set they saw.
func bumpRuleVersion(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE rule_versions SET version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE id = 1
	`)
	if err != nil {
		return fmt.Errorf("failed to bump rule version: %w", err)
	}
	return nil
}
