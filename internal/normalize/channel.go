package normalize

import (
	"strings"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// Coarse channel labels assigned by the normalizer. The enrichment pass
// refines these into rail-specific channel types.
const (
	ChannelCreditCard   = "credit_card"
	ChannelLoan         = "loan"
	ChannelInsurance    = "insurance"
	ChannelInvestment   = "investment"
	ChannelUPI          = "upi"
	ChannelBankTransfer = "bank_transfer"
)

// channelFamilies are keyword families checked in fixed priority order.
var channelFamilies = []struct {
	channel  string
	keywords []string
}{
	{ChannelCreditCard, []string{"credit card", "creditcard", "card payment", "cc payment", "card bill", "cardpmt"}},
	{ChannelLoan, []string{"emi", "loan", "lnpy", "repayment"}},
	{ChannelInsurance, []string{"insurance", "premium", "lic of india", "policy"}},
	{ChannelInvestment, []string{"mutual fund", "mutualfund", "sip", "bse limited", "nse", "zerodha", "groww", "indian clearing corp"}},
	{ChannelUPI, []string{"upi", "vpa", "@"}},
}

// ClassifyChannel assigns a coarse channel from description keywords.
// Unmatched descriptions default to bank transfer, or UPI when the word
// appears and the direction is credit.
func ClassifyChannel(description string, direction model.TransactionDirection) string {
	lower := strings.ToLower(description)

	for _, family := range channelFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(lower, kw) {
				return family.channel
			}
		}
	}

	if direction == model.DirectionCredit && strings.Contains(lower, "upi") {
		return ChannelUPI
	}
	return ChannelBankTransfer
}
