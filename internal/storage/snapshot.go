package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dhanvantari/ledgersift/internal/engine"
)

// LoadRuleSnapshot reads the active rule set and merchant directory in one
// bulk load. The categorization engine calls this once per batch so every
// transaction in the batch sees the same rules.
func (s *SQLiteStorage) LoadRuleSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.loadRuleSnapshotTx(ctx, s.db)
}

func (s *SQLiteStorage) loadRuleSnapshotTx(ctx context.Context, q queryable) (*engine.Snapshot, error) {
	rules, err := s.getActiveRulesTx(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("loading rules for snapshot: %w", err)
	}

	directory, err := s.getAllMerchantsTx(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("loading directory for snapshot: %w", err)
	}

	var version int64
	if err := q.QueryRowContext(ctx, `SELECT version FROM rule_versions WHERE id = 1`).Scan(&version); err != nil {
		return nil, fmt.Errorf("loading rule version: %w", err)
	}

	return &engine.Snapshot{
		LoadedAt:  time.Now(),
		Rules:     rules,
		Directory: directory,
		Version:   version,
	}, nil
}
