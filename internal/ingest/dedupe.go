package ingest

import "github.com/dhanvantari/ledgersift/internal/model"

// Dedupe keeps the first record per composite signature. Signatures come
// from Transaction.GenerateHash, so two records that differ only in
// whitespace or letter case collapse to one. Running it twice yields the
// same result as running it once.
func Dedupe(txs []model.Transaction) []model.Transaction {
	if len(txs) == 0 {
		return txs
	}

	seen := make(map[string]struct{}, len(txs))
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Hash == "" {
			tx.Hash = tx.GenerateHash()
		}
		if _, dup := seen[tx.Hash]; dup {
			continue
		}
		seen[tx.Hash] = struct{}{}
		out = append(out, tx)
	}
	return out
}
