package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// Engine orchestrates batch categorization. Rules and directory entries are
// loaded once per batch as an immutable snapshot, so a batch is internally
// consistent even while rules are being edited concurrently.
type Engine struct {
	source     SnapshotSource
	classifier *Classifier
}

// NewEngine creates an engine over a snapshot source. classifier may be nil.
func NewEngine(source SnapshotSource, classifier *Classifier) *Engine {
	return &Engine{source: source, classifier: classifier}
}

// CategorizeBatch categorizes transactions in order. Results are parallel to
// the input slice. A context cancellation aborts between transactions.
func (e *Engine) CategorizeBatch(ctx context.Context, txs []model.Transaction) ([]model.CategorizationResult, error) {
	snapshot, err := e.source.LoadRuleSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rule snapshot: %w", err)
	}

	slog.Debug("Categorizing batch",
		"transactions", len(txs),
		"rules", len(snapshot.Rules),
		"directory", len(snapshot.Directory),
		"version", snapshot.Version)

	cascade := NewCascade(snapshot, e.classifier)

	results := make([]model.CategorizationResult, 0, len(txs))
	for i := range txs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, cascade.Categorize(candidateFrom(&txs[i])))
	}
	return results, nil
}

// CategorizeOne is the single-transaction path used by interactive commands.
func (e *Engine) CategorizeOne(ctx context.Context, tx *model.Transaction) (*model.CategorizationResult, error) {
	results, err := e.CategorizeBatch(ctx, []model.Transaction{*tx})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func candidateFrom(tx *model.Transaction) Candidate {
	return Candidate{
		Merchant:    tx.MerchantName,
		Description: tx.Description,
		Amount:      tx.Amount,
		Direction:   tx.Direction,
	}
}
