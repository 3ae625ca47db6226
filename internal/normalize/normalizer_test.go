package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/table"
)

func structured(t *testing.T, rows [][]string) *table.StructuredTable {
	t.Helper()
	st, err := table.Structure(table.RawTable{Source: table.SourceSpreadsheet, Rows: rows})
	require.NoError(t, err)
	return st
}

func TestNormalizeUPIStatementRow(t *testing.T) {
	st := structured(t, [][]string{
		{"Date", "Description", "Amount"},
		{"18-11-2024", "UPI-ZOMATO LIMITED-zomato@icici", "500.00"},
	})

	txns, err := NewNormalizer("ICICI").Normalize(st)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	tx := txns[0]
	assert.Equal(t, time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.InDelta(t, 500.00, tx.Amount, 0.001)
	assert.Equal(t, model.DirectionDebit, tx.Direction)
	assert.Equal(t, "Zomato Ltd", tx.MerchantName)
	assert.Equal(t, "INR", tx.Currency)
	assert.Equal(t, "ICICI", tx.BankCode)
	assert.NotEmpty(t, tx.Hash)
}

func TestNormalizeWithdrawalDepositColumns(t *testing.T) {
	st := structured(t, [][]string{
		{"Date", "Narration", "Withdrawal Amt", "Deposit Amt"},
		{"01/04/2024", "POS BIG BAZAAR", "899.00", ""},
		{"02/04/2024", "NEFT SALARY CREDIT", "", "85000.00"},
		{"03/04/2024", "OPENING BALANCE", "", ""},
	})

	txns, err := NewNormalizer("HDFC").Normalize(st)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, model.DirectionDebit, txns[0].Direction)
	assert.InDelta(t, 899.00, txns[0].Amount, 0.001)
	assert.Equal(t, model.DirectionCredit, txns[1].Direction)
	assert.InDelta(t, 85000.00, txns[1].Amount, 0.001)
}

func TestNormalizeAmountNeverNegative(t *testing.T) {
	st := structured(t, [][]string{
		{"Date", "Description", "Amount"},
		{"05/04/2024", "ATM WDL", "-2000.00"},
		{"06/04/2024", "CASH DEP", "(1500.00)"},
	})

	txns, err := NewNormalizer("SBI").Normalize(st)
	require.NoError(t, err)

	for _, tx := range txns {
		assert.GreaterOrEqual(t, tx.Amount, 0.0)
		assert.Equal(t, model.DirectionDebit, tx.Direction)
	}
}

func TestNormalizeDirectionPrecedence(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want model.TransactionDirection
	}{
		{
			name: "explicit direction column wins over keywords",
			rows: [][]string{
				{"Date", "Description", "Amount", "Dr/Cr"},
				{"01/04/2024", "SALARY CREDIT ACME", "100.00", "DR"},
			},
			want: model.DirectionDebit,
		},
		{
			name: "description keyword implies credit",
			rows: [][]string{
				{"Date", "Description", "Amount"},
				{"01/04/2024", "NEFT REFUND AMAZON", "100.00"},
			},
			want: model.DirectionCredit,
		},
		{
			name: "unsigned amount defaults to debit",
			rows: [][]string{
				{"Date", "Description", "Amount"},
				{"01/04/2024", "POS PURCHASE", "100.00"},
			},
			want: model.DirectionDebit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := NewNormalizer("HDFC").Normalize(structured(t, tt.rows))
			require.NoError(t, err)
			require.Len(t, txns, 1)
			assert.Equal(t, tt.want, txns[0].Direction)
		})
	}
}

func TestNormalizeDropsBadRowsButContinues(t *testing.T) {
	st := structured(t, [][]string{
		{"Date", "Description", "Amount"},
		{"not a date", "garbage row", "100.00"},
		{"02/04/2024", "good row", "not an amount"},
		{"03/04/2024", "survivor", "250.00"},
	})

	txns, err := NewNormalizer("AXIS").Normalize(st)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "survivor", txns[0].Description)
}

func TestNormalizeAllRowsFail(t *testing.T) {
	st := structured(t, [][]string{
		{"Date", "Description", "Amount"},
		{"junk", "row", "junk"},
		{"more", "junk", "rows"},
	})

	_, err := NewNormalizer("AXIS").Normalize(st)
	require.ErrorIs(t, err, common.ErrNoValidTransactions)
}

func TestNormalizeCurrencyColumn(t *testing.T) {
	st := structured(t, [][]string{
		{"Date", "Description", "Amount", "Currency"},
		{"01/04/2024", "intl txn", "100.00", "usd"},
	})

	txns, err := NewNormalizer("HDFC").Normalize(st)
	require.NoError(t, err)
	assert.Equal(t, "USD", txns[0].Currency)
}

func TestParseStatementDateDayFirst(t *testing.T) {
	d, err := ParseStatementDate("02/01/2024")
	require.NoError(t, err)
	// Day-first: 2 January, not 1 February.
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 2, d.Day())
}

func TestParseAmountVariants(t *testing.T) {
	tests := []struct {
		in       string
		want     float64
		wantSign amountSign
	}{
		{"1,23,456.78", 123456.78, signNone},
		{"Rs. 500", 500, signNone},
		{"₹500.00", 500, signNone},
		{"-250.50", 250.50, signNegative},
		{"(99.99)", 99.99, signNegative},
		{"1200.00Cr", 1200, signPositive},
		{"1200.00 Dr", 1200, signNegative},
	}

	for _, tt := range tests {
		got, sign, err := parseAmount(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.InDelta(t, tt.want, got, 0.001, "input %q", tt.in)
		assert.Equal(t, tt.wantSign, sign, "input %q", tt.in)
	}
}
