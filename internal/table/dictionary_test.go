package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeaderCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Txn Date", "txndate"},
		{"TXN_DATE", "txndate"},
		{"Chq./Ref. No.", "chqrefno"},
		{"Withdrawal Amt (INR)", "withdrawalamtinr"},
		{"  Narration  ", "narration"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeaderCell(tt.in), "input %q", tt.in)
	}
}

func TestResolveColumnsPriorityOrder(t *testing.T) {
	header := []string{"Value Date", "Narration", "Debit", "Credit", "Ref No", "Balance"}
	columns := ResolveColumns(header)

	assert.Equal(t, 0, columns[FieldDate])
	assert.Equal(t, 1, columns[FieldDescription])
	assert.Equal(t, 2, columns[FieldWithdrawalAmount])
	assert.Equal(t, 3, columns[FieldDepositAmount])
	assert.Equal(t, 4, columns[FieldExternalID])
	assert.Equal(t, 5, columns[FieldBalance])
}

func TestResolveColumnsKeepsFirstDuplicate(t *testing.T) {
	header := []string{"Date", "Value Date", "Amount"}
	columns := ResolveColumns(header)

	// Both cells alias to date; the first column wins.
	assert.Equal(t, 0, columns[FieldDate])
	assert.Equal(t, 2, columns[FieldAmount])
}

func TestResolveColumnsUnknownHeadersIgnored(t *testing.T) {
	header := []string{"Date", "Some Unknown Thing", "Amount"}
	columns := ResolveColumns(header)

	assert.Len(t, columns, 2)
}
