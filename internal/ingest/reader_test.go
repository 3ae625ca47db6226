package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
)

func TestReadCSVStatement(t *testing.T) {
	csvData := strings.Join([]string{
		"Account Statement for Nov 2024",
		"",
		"Txn Date,Narration,Amount",
		"18-11-2024,UPI-ZOMATO LIMITED-zomato@icici-HDFC0000001-430212345678,500.00",
		"19-11-2024,NEFT CR-SBIN0000001-ACME CORP-SALARY NOV,-85000.00",
	}, "\n")

	r := NewReader(Options{BankCode: "HDFC"})
	txs, err := r.Read(context.Background(), []byte(csvData), "statement.csv")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "Zomato Ltd", txs[0].MerchantName)
	assert.Equal(t, model.DirectionDebit, txs[0].Direction)
	assert.Equal(t, 500.0, txs[0].Amount)
	assert.Equal(t, "HDFC", txs[0].BankCode)
	assert.NotEmpty(t, txs[0].Hash)

	// Salary keyword wins over the negative sign.
	assert.Equal(t, model.DirectionCredit, txs[1].Direction)
	assert.Equal(t, 85000.0, txs[1].Amount)
}

func TestReadTSVStatement(t *testing.T) {
	tsvData := "Date\tParticulars\tWithdrawal\tDeposit\n" +
		"18-11-2024\tPOS 512967 BIG BAZAAR\t1250.50\t\n" +
		"19-11-2024\tNEFT CR-SBIN0000001-ACME CORP\t\t5000.00\n"

	r := NewReader(Options{BankCode: "ICICI"})
	txs, err := r.Read(context.Background(), []byte(tsvData), "statement.tsv")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, model.DirectionDebit, txs[0].Direction)
	assert.Equal(t, 1250.50, txs[0].Amount)
	assert.Equal(t, model.DirectionCredit, txs[1].Direction)
}

func TestReadPlainTextFallback(t *testing.T) {
	txtData := strings.Join([]string{
		"Date          Narration                     Amount",
		"18-11-2024    UPI-SWIGGY-swiggy@axis        320.00",
	}, "\n")

	r := NewReader(Options{BankCode: "HDFC"})
	txs, err := r.Read(context.Background(), []byte(txtData), "statement.txt")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Swiggy", txs[0].MerchantName)
}

func TestReadUnsupportedFormat(t *testing.T) {
	r := NewReader(Options{})
	_, err := r.Read(context.Background(), []byte("data"), "statement.docx")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestDedupeKeepsFirstPerSignature(t *testing.T) {
	base := model.Transaction{
		Description:  "UPI-ZOMATO LIMITED-zomato@icici",
		MerchantName: "Zomato Ltd",
		Amount:       500,
		Direction:    model.DirectionDebit,
		Currency:     "INR",
		BankCode:     "HDFC",
	}
	// Same record with extra whitespace hashes identically.
	noisy := base
	noisy.Description = "UPI-ZOMATO LIMITED-zomato@icici  "

	other := base
	other.Amount = 750

	out := Dedupe([]model.Transaction{base, noisy, other})
	require.Len(t, out, 2)
	assert.Equal(t, 500.0, out[0].Amount)
	assert.Equal(t, 750.0, out[1].Amount)

	// Idempotence.
	assert.Equal(t, out, Dedupe(out))
}

func TestStatementLineFallbackParser(t *testing.T) {
	lines := []string{
		"STATE BANK OF INDIA",
		"Statement of Account",
		"18-11-2024",
		"TO TRANSFER-UPI/DR/430212345678/RAMESH KU/YBL/ramesh@ybl",
		"2,000.00 Dr",
		"45,230.50 Cr",
		"19-11-2024",
		"BY TRANSFER-NEFT SALARY CREDIT",
		"85,000.00 Cr",
		"1,30,230.50 Cr",
	}

	raw, ok := parseStatementLines(lines, "SBI")
	require.True(t, ok)
	require.Len(t, raw.Rows, 3) // header + 2 records

	assert.Equal(t, []string{"Date", "Description", "Withdrawal", "Deposit", "Balance"}, raw.Rows[0])
	assert.Equal(t, "18-11-2024", raw.Rows[1][0])
	assert.Equal(t, "2,000.00", raw.Rows[1][2])
	assert.Equal(t, "", raw.Rows[1][3])
	assert.Equal(t, "85,000.00", raw.Rows[2][3])
}

func TestStatementLineFallbackRequiresMarker(t *testing.T) {
	lines := []string{
		"18-11-2024",
		"SOME NARRATION",
		"2,000.00 Dr",
		"45,230.50 Cr",
	}

	_, ok := parseStatementLines(lines, "HDFC")
	assert.False(t, ok)
}

func TestReadEmailBodyAlert(t *testing.T) {
	email := "From: alerts@hdfcbank.net\r\n" +
		"To: customer@example.com\r\n" +
		"Subject: UPI txn alert\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Dear Customer, Rs. 500.00 has been debited from account XX1234 to VPA zomato@icici on 18-11-24. UPI Ref No 430212345678.\r\n"

	r := NewReader(Options{BankCode: "HDFC"})
	txs, err := r.Read(context.Background(), []byte(email), "alert.eml")
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, 500.0, txs[0].Amount)
	assert.Equal(t, model.DirectionDebit, txs[0].Direction)
	assert.Equal(t, "HDFC", txs[0].BankCode)
}

func TestReadEmailAttachmentWins(t *testing.T) {
	boundary := "BOUNDARY42"
	email := strings.Join([]string{
		"From: statements@icicibank.com",
		"To: customer@example.com",
		"Subject: Monthly statement",
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=" + boundary,
		"",
		"--" + boundary,
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Rs. 999.00 debited from account XX1234 to VPA other@upi on 18-11-24.",
		"",
		"--" + boundary,
		"Content-Type: text/csv; name=statement.csv",
		"Content-Disposition: attachment; filename=statement.csv",
		"",
		"Txn Date,Narration,Amount",
		"18-11-2024,UPI-ZOMATO LIMITED-zomato@icici,500.00",
		"",
		"--" + boundary + "--",
		"",
	}, "\r\n")

	r := NewReader(Options{BankCode: "ICICI"})
	txs, err := r.Read(context.Background(), []byte(email), "statement.eml")
	require.NoError(t, err)
	require.Len(t, txs, 1)

	// The attachment parsed, so the body alert was never consulted.
	assert.Equal(t, 500.0, txs[0].Amount)
	assert.Equal(t, "Zomato Ltd", txs[0].MerchantName)
}

func TestReadEmailAlertOnlySkipsAttachments(t *testing.T) {
	boundary := "BOUNDARY42"
	email := strings.Join([]string{
		"From: alerts@hdfcbank.net",
		"Subject: alert",
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=" + boundary,
		"",
		"--" + boundary,
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Rs. 750.00 debited from account XX1234 to VPA swiggy@axis on 18-11-24.",
		"",
		"--" + boundary,
		"Content-Type: text/csv; name=statement.csv",
		"Content-Disposition: attachment; filename=statement.csv",
		"",
		"Txn Date,Narration,Amount",
		"18-11-2024,UPI-ZOMATO LIMITED-zomato@icici,500.00",
		"",
		"--" + boundary + "--",
		"",
	}, "\r\n")

	r := NewReader(Options{BankCode: "HDFC", AlertOnly: true})
	txs, err := r.Read(context.Background(), []byte(email), "alert.eml")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 750.0, txs[0].Amount)
}

func TestReadEmailSurfacesAttachmentErrors(t *testing.T) {
	boundary := "BOUNDARY42"
	email := strings.Join([]string{
		"From: statements@icicibank.com",
		"Subject: Monthly statement",
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=" + boundary,
		"",
		"--" + boundary,
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Please find your statement attached.",
		"",
		"--" + boundary,
		"Content-Type: text/csv; name=statement.csv",
		"Content-Disposition: attachment; filename=statement.csv",
		"",
		"no table here",
		"",
		"--" + boundary + "--",
		"",
	}, "\r\n")

	r := NewReader(Options{BankCode: "ICICI"})
	_, err := r.Read(context.Background(), []byte(email), "statement.eml")
	require.Error(t, err)

	// Both failure causes are visible: the body carried no alert and the
	// attachment had no resolvable header row.
	assert.ErrorIs(t, err, common.ErrNoRecognizableAlert)
	assert.True(t, common.IsHeaderNotFound(err))
	assert.Contains(t, err.Error(), "statement.csv")
}

func TestReadEmailNoRecognizableAlert(t *testing.T) {
	email := "From: newsletter@example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Check out our latest offers!\r\n"

	r := NewReader(Options{BankCode: "HDFC"})
	_, err := r.Read(context.Background(), []byte(email), "mail.eml")
	assert.ErrorIs(t, err, common.ErrNoRecognizableAlert)
}
