package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/service"
)

// Job stages parsed files into storage under upload batches. A batch either
// completes with its records staged or is rolled back whole; a cancelled run
// leaves nothing behind.
type Job struct {
	store  service.Storage
	reader *Reader
	opts   Options
}

// NewJob creates an ingestion job over the given storage.
func NewJob(store service.Storage, opts Options) *Job {
	return &Job{
		store:  store,
		reader: NewReader(opts),
		opts:   opts,
	}
}

// IngestFile parses one file and stages its records under a fresh batch.
func (j *Job) IngestFile(ctx context.Context, path string) (*service.IngestStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return j.IngestPayload(ctx, data, filepath.Base(path))
}

// IngestPayload parses raw bytes with a filename hint and stages the result.
func (j *Job) IngestPayload(ctx context.Context, data []byte, filename string) (*service.IngestStats, error) {
	start := time.Now()
	batchID := uuid.New().String()

	batch := &model.UploadBatch{
		ID:         batchID,
		SourceFile: filename,
		BankCode:   j.opts.BankCode,
	}
	if err := j.store.CreateUploadBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create upload batch: %w", err)
	}

	txs, err := j.reader.Read(ctx, data, filename)
	if err != nil {
		j.abandon(ctx, batchID, err)
		return nil, err
	}

	// Staging can hit transient lock contention when another command holds the
	// database; retry with backoff before giving up.
	var inserted int
	err = common.WithRetry(ctx, func() error {
		var saveErr error
		inserted, saveErr = j.store.SaveTransactions(ctx, batchID, txs)
		return saveErr
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond})
	if err != nil {
		j.abandon(ctx, batchID, err)
		return nil, fmt.Errorf("failed to stage transactions: %w", err)
	}

	if err := j.store.UpdateUploadBatchStatus(ctx, batchID, model.UploadCompleted, ""); err != nil {
		return nil, fmt.Errorf("failed to complete batch: %w", err)
	}

	stats := &service.IngestStats{
		Duration:     time.Since(start),
		BatchID:      batchID,
		FilesParsed:  1,
		RecordsRead:  len(txs),
		RecordsSaved: inserted,
		Duplicates:   len(txs) - inserted,
	}
	common.LogInfo("ingested file", common.Fields{
		"file":     filename,
		"batch_id": batchID,
		"records":  stats.RecordsRead,
		"saved":    stats.RecordsSaved,
	})
	return stats, nil
}

// abandon rolls a failed or cancelled batch back. Cancellation deletes every
// staged record; other failures keep the batch row for diagnosis.
func (j *Job) abandon(ctx context.Context, batchID string, cause error) {
	// The incoming context may already be done; cleanup needs its own.
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		if err := j.store.DeleteBatch(cleanupCtx, batchID); err != nil {
			common.LogError(err, "failed to roll back cancelled batch", common.Fields{"batch_id": batchID})
		}
		return
	}

	if err := j.store.UpdateUploadBatchStatus(cleanupCtx, batchID, model.UploadFailed, cause.Error()); err != nil {
		common.LogError(err, "failed to mark batch failed", common.Fields{"batch_id": batchID})
	}
}
