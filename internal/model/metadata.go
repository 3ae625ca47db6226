package model

// ChannelType identifies the payment rail a transaction moved over.
type ChannelType string

// Payment rail channels, in the order the enrichment regexes try them.
const (
	ChannelUPI         ChannelType = "UPI"
	ChannelIMPS        ChannelType = "IMPS"
	ChannelNEFT        ChannelType = "NEFT"
	ChannelRTGS        ChannelType = "RTGS"
	ChannelATM         ChannelType = "ATM"
	ChannelPOS         ChannelType = "POS"
	ChannelACH         ChannelType = "ACH"
	ChannelNACH        ChannelType = "NACH"
	ChannelCardBillPay ChannelType = "CARD_BILL_PAY"
	ChannelOther       ChannelType = "OTHER"
)

// TransferDirection classifies the flow of a transfer beyond plain
// debit/credit.
type TransferDirection string

const (
	// TransferIn is money received from a counterparty.
	TransferIn TransferDirection = "IN"
	// TransferOut is money sent to a counterparty.
	TransferOut TransferDirection = "OUT"
	// TransferReversal is a refund or failed-transaction reversal.
	TransferReversal TransferDirection = "REV"
	// TransferInternal is a self-transfer between own accounts.
	TransferInternal TransferDirection = "INTERNAL"
)

// ParsedMetadata enriches a canonical transaction with rail-specific
// identifiers recovered from the narration. It is derived deterministically
// from (description, bank code, direction) and never mutates the transaction
// it is based on.
type ParsedMetadata struct {
	Channel             ChannelType
	TransferDirection   TransferDirection
	CounterpartyName    string
	CounterpartyBank    string
	CounterpartyVPA     string
	CounterpartyAccount string
	RailReference       string // UPI RRN, IMPS RRN, NEFT UTR, ACH/NACH ref
	InternalReference   string // Bank-internal reference, when distinct
	MCC                 string // Merchant category code, if recoverable
}
