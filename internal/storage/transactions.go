package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/service"
)

// SaveTransactions stages parsed transactions under an upload batch. Records
// whose hash already exists are skipped, so re-ingesting the same file is a
// no-op. Returns the number of newly inserted rows.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, batchID string, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(batchID, "batchID"); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := s.saveTransactionsTx(ctx, tx, batchID, transactions)
	if err != nil {
		return 0, err
	}

	return inserted, tx.Commit()
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, batchID string, transactions []model.Transaction) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions
			(id, hash, batch_id, date, description, merchant_name, amount,
			 direction, currency, bank_code, channel, account_ref, external_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		id := txn.ID
		if id == "" {
			id = txn.Hash
		}
		result, execErr := stmt.ExecContext(ctx,
			id, txn.Hash, batchID, txn.Date, txn.Description, txn.MerchantName,
			txn.Amount, string(txn.Direction), txn.Currency, txn.BankCode,
			txn.Channel, txn.AccountRef, txn.ExternalID,
		)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.Hash, execErr)
		}
		rows, _ := result.RowsAffected()
		inserted += int(rows)
	}

	common.LogDebug("staged transactions", common.Fields{
		"batch_id": batchID,
		"offered":  len(transactions),
		"inserted": inserted,
	})

	return inserted, nil
}

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var txn model.Transaction
	var batchID string
	var direction string
	var merchantName, bankCode, channel, accountRef, externalID sql.NullString

	err := row.Scan(
		&txn.ID, &txn.Hash, &batchID, &txn.Date, &txn.Description,
		&merchantName, &txn.Amount, &direction, &txn.Currency,
		&bankCode, &channel, &accountRef, &externalID,
	)
	if err != nil {
		return nil, err
	}

	txn.Direction = model.TransactionDirection(direction)
	txn.MerchantName = merchantName.String
	txn.BankCode = bankCode.String
	txn.Channel = channel.String
	txn.AccountRef = accountRef.String
	txn.ExternalID = externalID.String
	return &txn, nil
}

// GetTransactions returns transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) getTransactionsTx(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	var conditions []string
	var args []any

	if filter.StartDate != nil {
		conditions = append(conditions, "t.date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "t.date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.BatchID != "" {
		conditions = append(conditions, "t.batch_id = ?")
		args = append(args, filter.BatchID)
	}
	if filter.BankCode != "" {
		conditions = append(conditions, "t.bank_code = ?")
		args = append(args, filter.BankCode)
	}
	if filter.Category != "" {
		conditions = append(conditions, "t.hash IN (SELECT transaction_hash FROM categorizations WHERE category = ?)")
		args = append(args, filter.Category)
	}

	query := "SELECT t.id, t.hash, t.batch_id, t.date, t.description, t.merchant_name, " +
		"t.amount, t.direction, t.currency, t.bank_code, t.channel, t.account_ref, t.external_id " +
		"FROM transactions t"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.date DESC, t.id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// GetTransactionByHash looks up a single staged transaction.
func (s *SQLiteStorage) GetTransactionByHash(ctx context.Context, hash string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return nil, err
	}
	return s.getTransactionByHashTx(ctx, s.db, hash)
}

func (s *SQLiteStorage) getTransactionByHashTx(ctx context.Context, q queryable, hash string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, hash, batch_id, date, description, merchant_name, amount,
			direction, currency, bank_code, channel, account_ref, external_id
		FROM transactions WHERE hash = ?
	`, hash)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetUncategorizedTransactions returns staged transactions with no
// categorization yet, oldest first so backlogs drain in order.
func (s *SQLiteStorage) GetUncategorizedTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getUncategorizedTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) getUncategorizedTx(ctx context.Context, q queryable, limit int) ([]model.Transaction, error) {
	query := `
		SELECT t.id, t.hash, t.batch_id, t.date, t.description, t.merchant_name,
			t.amount, t.direction, t.currency, t.bank_code, t.channel,
			t.account_ref, t.external_id
		FROM transactions t
		LEFT JOIN categorizations c ON c.transaction_hash = t.hash
		WHERE c.transaction_hash IS NULL
		ORDER BY t.date, t.id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query uncategorized transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// SaveCategorization upserts the categorization for one transaction.
func (s *SQLiteStorage) SaveCategorization(ctx context.Context, transactionHash string, result *model.CategorizationResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionHash, "transactionHash"); err != nil {
		return err
	}
	if err := validateResult(result); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveCategorizationTx(ctx, tx, transactionHash, result); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) saveCategorizationTx(ctx context.Context, tx *sql.Tx, transactionHash string, result *model.CategorizationResult) error {
	var ruleID any
	if result.RuleID != nil {
		ruleID = *result.RuleID
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO categorizations
			(transaction_hash, category, subcategory, method, rule_id, confidence)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_hash) DO UPDATE SET
			category = excluded.category,
			subcategory = excluded.subcategory,
			method = excluded.method,
			rule_id = excluded.rule_id,
			confidence = excluded.confidence,
			categorized_at = CURRENT_TIMESTAMP
	`, transactionHash, result.Category, result.Subcategory, string(result.Method), ruleID, result.Confidence)
	if err != nil {
		return fmt.Errorf("failed to save categorization: %w", err)
	}
	return nil
}

// GetCategorization fetches the stored categorization for a transaction.
func (s *SQLiteStorage) GetCategorization(ctx context.Context, transactionHash string) (*model.CategorizationResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategorizationTx(ctx, s.db, transactionHash)
}

func (s *SQLiteStorage) getCategorizationTx(ctx context.Context, q queryable, transactionHash string) (*model.CategorizationResult, error) {
	var result model.CategorizationResult
	var method string
	var subcategory sql.NullString
	var ruleID sql.NullInt64

	err := q.QueryRowContext(ctx, `
		SELECT category, subcategory, method, rule_id, confidence
		FROM categorizations WHERE transaction_hash = ?
	`, transactionHash).Scan(&result.Category, &subcategory, &method, &ruleID, &result.Confidence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get categorization: %w", err)
	}

	result.Subcategory = subcategory.String
	result.Method = model.MatchMethod(method)
	if ruleID.Valid {
		id := ruleID.Int64
		result.RuleID = &id
	}
	return &result, nil
}

// DeleteBatch removes a cancelled or bad upload and everything staged under
// it, including categorizations of its transactions.
func (s *SQLiteStorage) DeleteBatch(ctx context.Context, batchID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(batchID, "batchID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteBatchTx(ctx, tx, batchID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) deleteBatchTx(ctx context.Context, tx *sql.Tx, batchID string) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM categorizations
		WHERE transaction_hash IN (SELECT hash FROM transactions WHERE batch_id = ?)
	`, batchID); err != nil {
		return fmt.Errorf("failed to delete batch categorizations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE batch_id = ?`, batchID); err != nil {
		return fmt.Errorf("failed to delete batch transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM upload_batches WHERE id = ?`, batchID); err != nil {
		return fmt.Errorf("failed to delete batch record: %w", err)
	}
	return nil
}
