package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanvantari/ledgersift/internal/common"
)

func TestStructureFindsHeaderAfterPreamble(t *testing.T) {
	rows := [][]string{
		{"HDFC Bank Ltd"},
		{"Statement of account"},
		{"Account holder: S KUMAR"},
		{"Account number: XXXX1234"},
		{"Period: 01/11/2024 to 30/11/2024"},
		{""},
		{"Page 1 of 3"},
		{"Date", "Narration", "Chq/Ref No", "Withdrawal Amt", "Deposit Amt", "Closing Balance"},
		{"18/11/24", "UPI-ZOMATO LIMITED-zomato@icici", "430212345678", "500.00", "", "12,345.67"},
		{"19/11/24", "NEFT CR-SBIN0000001-ACME CORP-SALARY NOV", "", "", "85,000.00", "97,345.67"},
	}

	st, err := Structure(RawTable{Source: SourceSpreadsheet, Rows: rows})
	require.NoError(t, err)

	assert.Equal(t, 7, st.HeaderIndex)
	assert.Len(t, st.Rows, 2)
	assert.Equal(t, 0, st.Columns[FieldDate])
	assert.Equal(t, 1, st.Columns[FieldDescription])
	assert.Equal(t, 2, st.Columns[FieldExternalID])
	assert.Equal(t, 3, st.Columns[FieldWithdrawalAmount])
	assert.Equal(t, 4, st.Columns[FieldDepositAmount])
	assert.Equal(t, 5, st.Columns[FieldBalance])
}

func TestStructureIsIdempotent(t *testing.T) {
	rows := [][]string{
		{"Date", "Description", "Amount"},
		{"01/04/2024", "POS 1234 BIG BAZAAR", "899.00"},
	}

	first, err := Structure(RawTable{Source: SourceSpreadsheet, Rows: rows})
	require.NoError(t, err)

	// Re-running on an already-headered table must not change assignments.
	again, err := Structure(RawTable{
		Source: SourceSpreadsheet,
		Rows:   append([][]string{first.Header}, first.Rows...),
	})
	require.NoError(t, err)

	assert.Equal(t, first.Columns, again.Columns)
	assert.Equal(t, first.Rows, again.Rows)
}

func TestStructureExpandsWrappedPDFRows(t *testing.T) {
	rows := [][]string{
		{"Date", "Particulars", "Amount"},
		{"01/04/2024\n02/04/2024", "UPI/swiggy@axis\nUPI/zomato@icici", "250.00\n350.00"},
		{"03/04/2024", "single line", "100.00"},
	}

	st, err := Structure(RawTable{Source: SourcePDF, Rows: rows})
	require.NoError(t, err)

	require.Len(t, st.Rows, 3)
	assert.Equal(t, []string{"01/04/2024", "UPI/swiggy@axis", "250.00"}, st.Rows[0])
	assert.Equal(t, []string{"02/04/2024", "UPI/zomato@icici", "350.00"}, st.Rows[1])
}

func TestStructurePadsShortWrappedCells(t *testing.T) {
	rows := [][]string{
		{"Date", "Particulars", "Amount"},
		{"01/04/2024", "line one\nline two\nline three", "100.00"},
	}

	st, err := Structure(RawTable{Source: SourcePDF, Rows: rows})
	require.NoError(t, err)

	require.Len(t, st.Rows, 3)
	assert.Equal(t, []string{"01/04/2024", "line one", "100.00"}, st.Rows[0])
	assert.Equal(t, []string{"", "line two", ""}, st.Rows[1])
	assert.Equal(t, []string{"", "line three", ""}, st.Rows[2])
}

func TestStructureCollapsesNewlinesForSpreadsheets(t *testing.T) {
	rows := [][]string{
		{"Date", "Description", "Amount"},
		{"01/04/2024", "NEFT\nACME CORP", "5000.00"},
	}

	st, err := Structure(RawTable{Source: SourceSpreadsheet, Rows: rows})
	require.NoError(t, err)

	require.Len(t, st.Rows, 1)
	assert.Equal(t, "NEFT ACME CORP", st.Rows[0][1])
}

func TestStructureHeaderNotFound(t *testing.T) {
	rows := [][]string{
		{"This is not a statement"},
		{"Just some", "random", "cells"},
	}

	_, err := Structure(RawTable{Source: SourceSpreadsheet, Rows: rows})
	require.Error(t, err)
	assert.True(t, common.IsHeaderNotFound(err))

	var hnf *common.HeaderNotFoundError
	require.ErrorAs(t, err, &hnf)
	assert.NotEmpty(t, hnf.ColumnSample)
}

func TestScanOrderTiers(t *testing.T) {
	order := scanOrder(500)

	// Dense through row 49, then every 10th.
	assert.Equal(t, 0, order[0])
	assert.Equal(t, 49, order[49])
	assert.Equal(t, 50, order[50])
	assert.Equal(t, 60, order[51])
	assert.Equal(t, 490, order[len(order)-1])
}

func TestScanOrderRespectsCap(t *testing.T) {
	order := scanOrder(10_000)
	for _, idx := range order {
		assert.Less(t, idx, maxScanRows)
	}
}
