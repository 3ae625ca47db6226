// Package normalize converts structured statement tables into canonical
// transaction records.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/table"
)

// DefaultCurrency is assumed when a statement carries no currency column.
const DefaultCurrency = "INR"

// creditKeywords flag descriptions that are almost certainly inflows when no
// explicit direction is available.
var creditKeywords = []string{"salary", "refund", "interest", "dividend"}

// Normalizer converts structured tables into canonical transactions.
type Normalizer struct {
	bankCode        string
	defaultCurrency string
}

// NewNormalizer creates a normalizer for a given originating institution.
func NewNormalizer(bankCode string) *Normalizer {
	return &Normalizer{
		bankCode:        bankCode,
		defaultCurrency: DefaultCurrency,
	}
}

// Normalize converts every data row of a structured table into a canonical
// transaction. Rows with unparseable dates or amounts are dropped and parsing
// continues; if no row survives, the whole table fails with
// ErrNoValidTransactions.
func (n *Normalizer) Normalize(st *table.StructuredTable) ([]model.Transaction, error) {
	dateCol, hasDate := st.Columns[table.FieldDate]
	if !hasDate {
		return nil, fmt.Errorf("%w: no date column resolved", common.ErrNoValidTransactions)
	}

	amountCol, hasAmount := st.Columns[table.FieldAmount]
	withdrawalCol, hasWithdrawal := st.Columns[table.FieldWithdrawalAmount]
	depositCol, hasDeposit := st.Columns[table.FieldDepositAmount]
	if !hasAmount && !hasWithdrawal && !hasDeposit {
		return nil, fmt.Errorf("%w: no amount column resolved", common.ErrNoValidTransactions)
	}

	var out []model.Transaction
	var dropped int

	for _, row := range st.Rows {
		date, err := ParseStatementDate(cell(row, dateCol))
		if err != nil {
			dropped++
			continue
		}

		var amount float64
		var sign amountSign
		var direction model.TransactionDirection

		if hasAmount {
			amount, sign, err = parseAmount(cell(row, amountCol))
			if err != nil {
				dropped++
				continue
			}
		} else {
			var withdrawal, deposit float64
			if hasWithdrawal {
				withdrawal, _, _ = parseAmount(cell(row, withdrawalCol))
			}
			if hasDeposit {
				deposit, _, _ = parseAmount(cell(row, depositCol))
			}
			// Summary and carried-forward rows have neither side populated.
			if withdrawal == 0 && deposit == 0 {
				dropped++
				continue
			}
			if withdrawal > 0 {
				amount = withdrawal
				sign = signNegative
			} else {
				amount = deposit
				sign = signPositive
			}
		}

		description := cell(row, columnOr(st, table.FieldDescription))
		direction = n.resolveDirection(st, row, description, sign)

		tx := model.Transaction{
			Date:        date,
			Description: description,
			Amount:      amount,
			Direction:   direction,
			Currency:    n.resolveCurrency(st, row),
			AccountRef:  strings.TrimSpace(cell(row, columnOr(st, table.FieldAccountRef))),
			ExternalID:  strings.TrimSpace(cell(row, columnOr(st, table.FieldExternalID))),
			BankCode:    n.bankCode,
		}
		tx.MerchantName = n.resolveMerchant(st, row, description)
		tx.Channel = ClassifyChannel(description, tx.Direction)
		tx.Hash = tx.GenerateHash()

		out = append(out, tx)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: all %d rows failed date/amount coercion",
			common.ErrNoValidTransactions, len(st.Rows))
	}

	if dropped > 0 {
		slog.Debug("Dropped unparseable statement rows",
			"dropped", dropped,
			"kept", len(out),
			"bank", n.bankCode)
	}

	return out, nil
}

// resolveDirection applies the direction precedence: explicit direction
// column, then description keywords, then explicit amount sign, then debit.
func (n *Normalizer) resolveDirection(st *table.StructuredTable, row []string, description string, sign amountSign) model.TransactionDirection {
	if col, ok := st.Columns[table.FieldDirection]; ok {
		if dir, resolved := parseDirectionCell(cell(row, col)); resolved {
			return dir
		}
	}

	lower := strings.ToLower(description)
	for _, kw := range creditKeywords {
		if strings.Contains(lower, kw) {
			return model.DirectionCredit
		}
	}

	switch sign {
	case signNegative:
		return model.DirectionDebit
	case signPositive:
		return model.DirectionCredit
	}
	return model.DirectionDebit
}

// parseDirectionCell interprets an explicit direction cell: credit/debit
// keywords or sign prefixes.
func parseDirectionCell(cellValue string) (model.TransactionDirection, bool) {
	v := strings.ToLower(strings.TrimSpace(cellValue))
	switch {
	case v == "":
		return "", false
	case strings.HasPrefix(v, "-"):
		return model.DirectionDebit, true
	case strings.HasPrefix(v, "+"):
		return model.DirectionCredit, true
	case strings.Contains(v, "credit") || v == "cr" || v == "c":
		return model.DirectionCredit, true
	case strings.Contains(v, "debit") || v == "dr" || v == "d":
		return model.DirectionDebit, true
	}
	return "", false
}

func (n *Normalizer) resolveCurrency(st *table.StructuredTable, row []string) string {
	if col, ok := st.Columns[table.FieldCurrency]; ok {
		if v := strings.TrimSpace(cell(row, col)); v != "" {
			return strings.ToUpper(v)
		}
	}
	return n.defaultCurrency
}

func (n *Normalizer) resolveMerchant(st *table.StructuredTable, row []string, description string) string {
	if col, ok := st.Columns[table.FieldMerchant]; ok {
		if v := strings.TrimSpace(cell(row, col)); v != "" {
			return CleanMerchantName(v)
		}
	}
	return ExtractMerchant(description)
}

// cell returns a cell by index, tolerating short rows.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// columnOr returns the column index for a field, or -1 when unresolved.
func columnOr(st *table.StructuredTable, field table.Field) int {
	if col, ok := st.Columns[field]; ok {
		return col
	}
	return -1
}
