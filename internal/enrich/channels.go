// Package enrich derives rail-specific metadata from transaction narrations.
// Everything here is a pure function of (description, bank code, direction);
// all pattern families are compiled once at package init.
package enrich

import (
	"regexp"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// channelPatterns are scanned in order; the first family to match claims the
// channel. NACH is listed after ACH deliberately: the word boundary keeps
// "NACH" from matching the ACH family.
var channelPatterns = []struct {
	channel model.ChannelType
	re      *regexp.Regexp
}{
	{model.ChannelUPI, regexp.MustCompile(`(?i)\bUPI\b|[a-z0-9._-]+@[a-z][a-z0-9]+`)},
	{model.ChannelIMPS, regexp.MustCompile(`(?i)\bIMPS\b`)},
	{model.ChannelNEFT, regexp.MustCompile(`(?i)\bNEFT\b`)},
	{model.ChannelRTGS, regexp.MustCompile(`(?i)\bRTGS\b`)},
	{model.ChannelATM, regexp.MustCompile(`(?i)\bATM\b|\bATW\b|\bNWD\b|CASH\s+WDL`)},
	{model.ChannelPOS, regexp.MustCompile(`(?i)\bPOS\b|\bECOM\b|POINT\s+OF\s+SALE`)},
	{model.ChannelACH, regexp.MustCompile(`(?i)\bACH\b`)},
	{model.ChannelNACH, regexp.MustCompile(`(?i)\bNACH\b`)},
	{model.ChannelCardBillPay, regexp.MustCompile(`(?i)CARD\s*(?:BILL|PMT|PAYMENT)|AUTOPAY|CC\s+PAYMENT`)},
}

// ClassifyChannel scans the narration against the ordered channel families.
func ClassifyChannel(description string) model.ChannelType {
	for _, cp := range channelPatterns {
		if cp.re.MatchString(description) {
			return cp.channel
		}
	}
	return model.ChannelOther
}

// Transfer direction cues.
var (
	inPrefixRe  = regexp.MustCompile(`(?i)^IN/`)
	outPrefixRe = regexp.MustCompile(`(?i)^OUT/`)
	reversalRe  = regexp.MustCompile(`(?i)\bREV\b|REVERSAL|REFUND|\bRET\b|RETURNED`)
	internalRe  = regexp.MustCompile(`(?i)SELF\s*TRANSFER|OWN\s+ACCOUNT|\bSELF\b|TPT.*SELF`)
)

// classifyTransferDirection resolves the transfer direction from narration
// prefix conventions, falling back to reversal/self keywords and finally the
// debit/credit direction itself.
func classifyTransferDirection(description string, direction model.TransactionDirection) model.TransferDirection {
	switch {
	case inPrefixRe.MatchString(description):
		return model.TransferIn
	case outPrefixRe.MatchString(description):
		return model.TransferOut
	case reversalRe.MatchString(description):
		return model.TransferReversal
	case internalRe.MatchString(description):
		return model.TransferInternal
	case direction == model.DirectionCredit:
		return model.TransferIn
	default:
		return model.TransferOut
	}
}
