package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
)

// CreateUploadBatch records a new ingestion run.
func (s *SQLiteStorage) CreateUploadBatch(ctx context.Context, batch *model.UploadBatch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBatch(batch); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.createUploadBatchTx(ctx, tx, batch); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) createUploadBatchTx(ctx context.Context, tx *sql.Tx, batch *model.UploadBatch) error {
	if batch.Status == "" {
		batch.Status = model.UploadPending
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO upload_batches (id, source_file, bank_code, status, message, record_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, batch.ID, batch.SourceFile, batch.BankCode, string(batch.Status),
		batch.Message, batch.RecordCount, batch.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create upload batch: %w", err)
	}
	return nil
}

// GetUploadBatch fetches one ingestion run by id.
func (s *SQLiteStorage) GetUploadBatch(ctx context.Context, id string) (*model.UploadBatch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getUploadBatchTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getUploadBatchTx(ctx context.Context, q queryable, id string) (*model.UploadBatch, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, source_file, bank_code, status, message, record_count, created_at, completed_at
		FROM upload_batches WHERE id = ?
	`, id)

	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload batch: %w", err)
	}
	return batch, nil
}

func scanBatch(row interface{ Scan(...any) error }) (*model.UploadBatch, error) {
	var batch model.UploadBatch
	var status string
	var sourceFile, bankCode, message sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&batch.ID, &sourceFile, &bankCode, &status, &message,
		&batch.RecordCount, &batch.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	batch.SourceFile = sourceFile.String
	batch.BankCode = bankCode.String
	batch.Status = model.UploadStatus(status)
	batch.Message = message.String
	if completedAt.Valid {
		t := completedAt.Time
		batch.CompletedAt = &t
	}
	return &batch, nil
}

// UpdateUploadBatchStatus moves a batch through its lifecycle. Terminal
// states stamp the completion time and the final record count.
func (s *SQLiteStorage) UpdateUploadBatchStatus(ctx context.Context, id string, status model.UploadStatus, message string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.updateUploadBatchStatusTx(ctx, tx, id, status, message); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) updateUploadBatchStatusTx(ctx context.Context, tx *sql.Tx, id string, status model.UploadStatus, message string) error {
	terminal := status == model.UploadCompleted || status == model.UploadFailed || status == model.UploadCancelled

	var result sql.Result
	var err error
	if terminal {
		result, err = tx.ExecContext(ctx, `
			UPDATE upload_batches SET
				status = ?, message = ?, completed_at = CURRENT_TIMESTAMP,
				record_count = (SELECT COUNT(*) FROM transactions WHERE batch_id = upload_batches.id)
			WHERE id = ?
		`, string(status), message, id)
	} else {
		result, err = tx.ExecContext(ctx, `
			UPDATE upload_batches SET status = ?, message = ? WHERE id = ?
		`, string(status), message, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update upload batch: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ListUploadBatches returns recent ingestion runs, newest first.
func (s *SQLiteStorage) ListUploadBatches(ctx context.Context, limit int) ([]model.UploadBatch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listUploadBatchesTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) listUploadBatchesTx(ctx context.Context, q queryable, limit int) ([]model.UploadBatch, error) {
	query := `
		SELECT id, source_file, bank_code, status, message, record_count, created_at, completed_at
		FROM upload_batches
		ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query upload batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batches []model.UploadBatch
	for rows.Next() {
		batch, scanErr := scanBatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan upload batch: %w", scanErr)
		}
		batches = append(batches, *batch)
	}
	return batches, rows.Err()
}
