package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection indicates whether money left or entered the account.
type TransactionDirection string

const (
	// DirectionDebit represents money leaving the account.
	DirectionDebit TransactionDirection = "debit"
	// DirectionCredit represents money entering the account.
	DirectionCredit TransactionDirection = "credit"
)

// Transaction is the canonical, bank-agnostic record produced once raw
// statement rows or alert bodies are parsed. Amount is always non-negative;
// Direction carries the sign semantics.
type Transaction struct {
	Date         time.Time
	ID           string
	Description  string // Raw narration text from the statement
	MerchantName string // Cleaned merchant name, may be empty
	AccountRef   string // Masked account number or reference, if present
	ExternalID   string // Bank-assigned transaction id, if present
	BankCode     string // Originating institution code (e.g. HDFC, ICICI)
	Channel      string // Coarse channel hint from the normalizer
	Currency     string
	Hash         string
	Amount       float64
	Direction    TransactionDirection
}

// GenerateHash creates the composite duplicate-detection signature. Two rows
// that differ only in description whitespace or merchant casing collapse to
// the same hash.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		decimal.NewFromFloat(t.Amount).StringFixed(2),
		t.Direction,
		normalizeForHash(t.MerchantName),
		normalizeForHash(t.ExternalID),
		t.BankCode,
		normalizeForHash(t.Description))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// normalizeForHash lowercases and collapses interior whitespace so that
// cosmetic differences never defeat deduplication.
func normalizeForHash(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
