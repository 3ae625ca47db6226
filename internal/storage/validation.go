// Package storage provides the SQLite persistence layer for ledgersift.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidRule        = errors.New("invalid rule")
	ErrInvalidMerchant    = errors.New("invalid merchant")
	ErrInvalidResult      = errors.New("invalid categorization result")
	ErrInvalidBatch       = errors.New("invalid upload batch")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Hash == "" {
		return fmt.Errorf("%w: missing hash", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidTransaction)
	}
	switch txn.Direction {
	case model.DirectionDebit, model.DirectionCredit:
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidTransaction, txn.Direction)
	}
	return nil
}

// validateRule validates a merchant rule.
func validateRule(rule *model.MerchantRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	switch rule.PatternType {
	case model.RuleExact, model.RuleRegex:
		if strings.TrimSpace(rule.Pattern) == "" {
			return fmt.Errorf("%w: missing pattern", ErrInvalidRule)
		}
	case model.RuleKeyword:
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("%w: keyword rule has no keywords", ErrInvalidRule)
		}
	default:
		return fmt.Errorf("%w: pattern type %q", ErrInvalidRule, rule.PatternType)
	}
	if strings.TrimSpace(rule.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidRule)
	}
	if rule.Confidence < 0 || rule.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidRule)
	}
	return nil
}

// validateMerchant validates a directory entry.
func validateMerchant(entry *model.MerchantDirectoryEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: merchant", ErrNilParameter)
	}
	if strings.TrimSpace(entry.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidMerchant)
	}
	if strings.TrimSpace(entry.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidMerchant)
	}
	return nil
}

// validateResult validates a categorization result.
func validateResult(result *model.CategorizationResult) error {
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}
	if strings.TrimSpace(result.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidResult)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidResult)
	}
	return nil
}

// validateBatch validates an upload batch.
func validateBatch(batch *model.UploadBatch) error {
	if batch == nil {
		return fmt.Errorf("%w: batch", ErrNilParameter)
	}
	if strings.TrimSpace(batch.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidBatch)
	}
	return nil
}
