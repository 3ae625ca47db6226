// Package engine implements the merchant categorization cascade: an ordered
// sequence of matchers tried in strict priority order, first success wins,
// with a guaranteed fallback so categorization is total.
package engine

import (
	"context"
	"time"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// Candidate is the categorization input for one transaction.
type Candidate struct {
	Merchant    string
	Description string
	Amount      float64
	Direction   model.TransactionDirection
}

// Matcher is a single tier of the cascade. Attempt returns (result, true) on
// a match and (nil, false) to pass the candidate to the next tier.
type Matcher interface {
	Name() string
	Attempt(c Candidate) (*model.CategorizationResult, bool)
}

// Snapshot is an immutable, versioned view of the rule set and merchant
// directory, loaded in bulk once per batch. Hot-reloads happen by loading a
// fresh snapshot, never by mutating one in place.
type Snapshot struct {
	LoadedAt  time.Time
	Rules     []model.MerchantRule
	Directory []model.MerchantDirectoryEntry
	Version   int64
}

// SnapshotSource loads rule/directory snapshots, one bulk read per batch.
type SnapshotSource interface {
	LoadRuleSnapshot(ctx context.Context) (*Snapshot, error)
}

// Similarity thresholds and tier confidences. These were tuned empirically
// against real statements; revisit only with mis-categorization data in hand.
const (
	directorySimilarityMin  = 0.70
	directorySimilarityHigh = 0.80
	directoryConfidence     = 0.95
	fuzzySimilarityMin      = 0.40
	fuzzyConfidenceFloor    = 0.80
	personalNameConfidence  = 0.95
	classifierMinConfidence = 0.55
	fallbackConfidence      = 0.30
)
