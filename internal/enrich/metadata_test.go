package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dhanvantari/ledgersift/internal/model"
)

func TestClassifyChannel(t *testing.T) {
	tests := []struct {
		desc string
		want model.ChannelType
	}{
		{"UPI-ZOMATO LIMITED-zomato@icici-HDFC0000001-430212345678", model.ChannelUPI},
		{"payment to ramesh.kumar@ybl", model.ChannelUPI},
		{"IMPS-430212345678-RAMESH KUMAR-HDFC-XXXXXX1234", model.ChannelIMPS},
		{"NEFT CR-SBIN0000001-ACME CORP-SALARY NOV", model.ChannelNEFT},
		{"RTGS-UTIB0000001-BUILDER LLP", model.ChannelRTGS},
		{"ATM-NWD-123456789012", model.ChannelATM},
		{"POS 512967 BIG BAZAAR", model.ChannelPOS},
		{"ACH D- INDIAN CLEARING CORP-ACHD123456", model.ChannelACH},
		{"NACH D- BAJAJ FINANCE-EMI", model.ChannelNACH},
		{"AUTOPAY CARD BILL 4111111111", model.ChannelCardBillPay},
		{"CHEQUE DEPOSIT 998877", model.ChannelOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyChannel(tt.desc), "description %q", tt.desc)
	}
}

func TestParseHDFCStyleUPI(t *testing.T) {
	md := Parse("UPI-ZOMATO LIMITED-zomato@icici-HDFC0000001-430212345678-FOOD", "HDFC", model.DirectionDebit)

	assert.Equal(t, model.ChannelUPI, md.Channel)
	assert.Equal(t, model.TransferOut, md.TransferDirection)
	assert.Equal(t, "ZOMATO LIMITED", md.CounterpartyName)
	assert.Equal(t, "zomato@icici", md.CounterpartyVPA)
	assert.Equal(t, "430212345678", md.RailReference)
}

func TestParseICICIStyleUPI(t *testing.T) {
	md := Parse("UPI/430212345678/Payment from Ph/ramesh.kumar@ybl", "ICICI", model.DirectionDebit)

	assert.Equal(t, "430212345678", md.RailReference)
	assert.Equal(t, "ramesh.kumar@ybl", md.CounterpartyVPA)
}

func TestParseSBIStyleUPI(t *testing.T) {
	md := Parse("TO TRANSFER-UPI/DR/430212345678/RAMESH KU/YBL/ramesh@ybl/Payment", "SBI", model.DirectionDebit)

	assert.Equal(t, "430212345678", md.RailReference)
	assert.Equal(t, "RAMESH KU", md.CounterpartyName)
	assert.Equal(t, "YBL", md.CounterpartyBank)
	assert.Equal(t, "ramesh@ybl", md.CounterpartyVPA)
}

func TestParseIMPS(t *testing.T) {
	md := Parse("IMPS-430212345678-RAMESH KUMAR-HDFC-XXXXXX1234-SENT", "AXIS", model.DirectionDebit)

	assert.Equal(t, model.ChannelIMPS, md.Channel)
	assert.Equal(t, "430212345678", md.RailReference)
	assert.Equal(t, "RAMESH KUMAR", md.CounterpartyName)
	assert.Equal(t, "HDFC", md.CounterpartyBank)
	assert.Equal(t, "1234", md.CounterpartyAccount)
}

func TestParseNEFT(t *testing.T) {
	md := Parse("NEFT CR-SBIN0000001-ACME CORP-SALARY NOV", "HDFC", model.DirectionCredit)

	assert.Equal(t, model.ChannelNEFT, md.Channel)
	assert.Equal(t, model.TransferIn, md.TransferDirection)
	assert.Equal(t, "SBIN0000001", md.CounterpartyBank)
	assert.Equal(t, "ACME CORP", md.CounterpartyName)
}

func TestParseACHEntity(t *testing.T) {
	md := Parse("ACH D- INDIAN CLEARING CORP-ACHD123456", "HDFC", model.DirectionDebit)

	assert.Equal(t, model.ChannelACH, md.Channel)
	assert.Equal(t, "INDIAN CLEARING CORP", md.CounterpartyName)
	assert.Equal(t, "ACHD123456", md.RailReference)
}

func TestTransferDirectionCues(t *testing.T) {
	tests := []struct {
		desc      string
		direction model.TransactionDirection
		want      model.TransferDirection
	}{
		{"IN/IMPS/430212345678/RAMESH", model.DirectionCredit, model.TransferIn},
		{"OUT/UPI/ramesh@ybl", model.DirectionDebit, model.TransferOut},
		{"REV-UPI-ZOMATO LIMITED-zomato@icici", model.DirectionCredit, model.TransferReversal},
		{"REFUND FROM AMAZON", model.DirectionCredit, model.TransferReversal},
		{"TPT TRANSFER TO SELF", model.DirectionDebit, model.TransferInternal},
		{"NEFT CR-SBIN0000001-ACME CORP", model.DirectionCredit, model.TransferIn},
		{"POS 1234 BIG BAZAAR", model.DirectionDebit, model.TransferOut},
	}

	for _, tt := range tests {
		md := Parse(tt.desc, "HDFC", tt.direction)
		assert.Equal(t, tt.want, md.TransferDirection, "description %q", tt.desc)
	}
}

func TestParseMCCAndInternalRef(t *testing.T) {
	md := Parse("POS 512967 BIG BAZAAR MCC: 5411 REF NO ABCD123456", "HDFC", model.DirectionDebit)

	assert.Equal(t, "5411", md.MCC)
	assert.Equal(t, "ABCD123456", md.InternalReference)
}

func TestParseIsPureAndDeterministic(t *testing.T) {
	desc := "UPI-ZOMATO LIMITED-zomato@icici-HDFC0000001-430212345678-FOOD"

	first := Parse(desc, "HDFC", model.DirectionDebit)
	second := Parse(desc, "HDFC", model.DirectionDebit)

	assert.Equal(t, first, second)
}
