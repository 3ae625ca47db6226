package enrich

import (
	"strings"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// Parse derives rail metadata from a canonical transaction's narration. It is
// side-effect free and never mutates the transaction it reads from.
func Parse(description, bankCode string, direction model.TransactionDirection) model.ParsedMetadata {
	md := model.ParsedMetadata{
		Channel:           ClassifyChannel(description),
		TransferDirection: classifyTransferDirection(description, direction),
	}

	matchRail(md.Channel, description, bankCode, &md)

	if md.InternalReference == "" {
		if m := internalRefRe.FindStringSubmatch(description); m != nil {
			md.InternalReference = m[1]
		}
	}
	if m := mccRe.FindStringSubmatch(description); m != nil {
		md.MCC = m[1]
	}

	return md
}

// ParseTransaction is a convenience wrapper over Parse for a full record.
func ParseTransaction(tx *model.Transaction) model.ParsedMetadata {
	return Parse(tx.Description, tx.BankCode, tx.Direction)
}

// trimField tidies a captured narration segment.
func trimField(s string) string {
	return strings.Trim(strings.TrimSpace(s), "-/")
}
