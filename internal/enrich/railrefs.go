package enrich

import (
	"regexp"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// railPattern is one bank-family narration format. Bank "" applies to any
// institution. Group names bind capture groups to metadata fields.
type railPattern struct {
	re   *regexp.Regexp
	bank string
}

// Named capture groups used across rail patterns: name, vpa, rrn, utr, bank,
// account, entity, ref, mcc.
var railPatterns = map[model.ChannelType][]railPattern{
	model.ChannelUPI: {
		// HDFC: UPI-ZOMATO LIMITED-zomato@icici-HDFC0000001-430212345678-FOOD
		{bank: "HDFC", re: regexp.MustCompile(`(?i)^UPI-(?P<name>[^-]+)-(?P<vpa>[\w.-]+@\w+)-(?P<bank>[A-Z]{4}[0-9A-Z]*)-(?P<rrn>\d{12})`)},
		// ICICI: UPI/430212345678/Payment from Ph/ramesh.kumar@ybl
		{bank: "ICICI", re: regexp.MustCompile(`(?i)^UPI/(?P<rrn>\d{12})/[^/]*/(?P<vpa>[\w.-]+@\w+)`)},
		// SBI: TO TRANSFER-UPI/DR/430212345678/RAMESH KU/YBL/ramesh@ybl
		{bank: "SBI", re: regexp.MustCompile(`(?i)UPI/(?:DR|CR)/(?P<rrn>\d{12})/(?P<name>[^/]+)/(?P<bank>[^/]+)/(?P<vpa>[\w.-]+@\w+)`)},
		// Generic: any name-vpa pair then any 12-digit run
		{re: regexp.MustCompile(`(?i)UPI[-/](?P<name>[^-/]+)[-/](?P<vpa>[\w.-]+@\w+)`)},
		{re: regexp.MustCompile(`(?i)(?P<vpa>[a-z0-9._-]+@[a-z][a-z0-9]+)`)},
	},
	model.ChannelIMPS: {
		// IMPS-430212345678-RAMESH KUMAR-HDFC-XXXXXX1234-REMARK
		{re: regexp.MustCompile(`(?i)IMPS-(?P<rrn>\d{12})-(?P<name>[^-]+)-(?P<bank>[^-]+)-[Xx*]*(?P<account>\d{2,6})`)},
		// IMPS/P2A/430212345678/RAMESH/HDFC
		{re: regexp.MustCompile(`(?i)IMPS/(?:P2[AP]/)?(?P<rrn>\d{12})/(?P<name>[^/]+)(?:/(?P<bank>[^/]+))?`)},
		{re: regexp.MustCompile(`(?i)IMPS\D*(?P<rrn>\d{12})`)},
	},
	model.ChannelNEFT: {
		// NEFT-UTIB0000001-ACME CORP-N310241234567890
		{re: regexp.MustCompile(`(?i)NEFT[- ](?P<bank>[A-Z]{4}0[0-9A-Z]{6})[- ](?P<name>[^-]+)[- ](?P<utr>[A-Z0-9]{12,22})`)},
		// NEFT CR-SBIN0000001-ACME CORP-SALARY
		{re: regexp.MustCompile(`(?i)NEFT\s*(?:CR|DR)?[- ](?P<bank>[A-Z]{4}0[0-9A-Z]{6})[- ](?P<name>[^-]+)`)},
		{re: regexp.MustCompile(`(?i)NEFT\D*(?P<utr>[A-Z]\d{9,15})`)},
	},
	model.ChannelRTGS: {
		{re: regexp.MustCompile(`(?i)RTGS[- ](?P<bank>[A-Z]{4}0[0-9A-Z]{6})[- ](?P<name>[^-]+)[- ]?(?P<utr>[A-Z0-9]{16,22})?`)},
		{re: regexp.MustCompile(`(?i)RTGS\D*(?P<utr>[A-Z0-9]{16,22})`)},
	},
	model.ChannelACH: {
		// ACH D- INDIAN CLEARING CORP-ACH1234567890
		{re: regexp.MustCompile(`(?i)ACH\s*[CD]?[- ]+(?P<entity>[^-]+?)[- ]+(?P<ref>[A-Z0-9]{6,20})\s*$`)},
		{re: regexp.MustCompile(`(?i)ACH\s*[CD]?[- ]+(?P<entity>[^-]+)`)},
	},
	model.ChannelNACH: {
		{re: regexp.MustCompile(`(?i)NACH\s*[CD]?[- ]+(?P<entity>[^-]+?)[- ]+(?P<ref>[A-Z0-9]{6,20})\s*$`)},
		{re: regexp.MustCompile(`(?i)NACH\s*[CD]?[- ]+(?P<entity>[^-]+)`)},
	},
	model.ChannelATM: {
		{re: regexp.MustCompile(`(?i)(?:ATM|ATW|NWD)[- /]+(?P<ref>\d{4,12})`)},
	},
	model.ChannelPOS: {
		{re: regexp.MustCompile(`(?i)POS\s+(?P<ref>\d{4,12})\s+(?P<name>[A-Za-z][A-Za-z .&']*?)(?:\s+MCC\b|\s+REF\b|\s*$)`)},
		{re: regexp.MustCompile(`(?i)POS[- /]+(?P<name>[A-Za-z][A-Za-z .&']*?)(?:\s+MCC\b|\s+REF\b|\s*$)`)},
	},
	model.ChannelCardBillPay: {
		{re: regexp.MustCompile(`(?i)(?:AUTOPAY|CARD\s*(?:BILL|PMT|PAYMENT))\D*(?P<ref>\d{6,16})?`)},
	},
}

// internalRefRe recovers a bank-internal reference when the narration tags
// one explicitly.
var internalRefRe = regexp.MustCompile(`(?i)\b(?:REF|REF\s*NO\.?|TXN\s*ID)[:\s-]+([A-Z0-9]{6,22})`)

// mccRe recovers an embedded merchant category code.
var mccRe = regexp.MustCompile(`(?i)\bMCC[:\s]*(\d{4})\b`)

// matchRail runs the pattern cascade for a channel. Patterns registered for
// the transaction's bank family are tried before generic ones; the first
// successful pattern wins per field.
func matchRail(channel model.ChannelType, description, bankCode string, md *model.ParsedMetadata) {
	patterns := railPatterns[channel]

	ordered := make([]railPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.bank != "" && p.bank == bankCode {
			ordered = append(ordered, p)
		}
	}
	for _, p := range patterns {
		if p.bank == "" {
			ordered = append(ordered, p)
		}
	}

	for _, p := range ordered {
		m := p.re.FindStringSubmatch(description)
		if m == nil {
			continue
		}
		apply(p.re, m, md)
		if md.RailReference != "" && (md.CounterpartyName != "" || md.CounterpartyVPA != "") {
			break
		}
	}
}

// apply copies named capture groups into still-empty metadata fields.
func apply(re *regexp.Regexp, match []string, md *model.ParsedMetadata) {
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" || i >= len(match) || match[i] == "" {
			continue
		}
		v := trimField(match[i])
		switch name {
		case "name":
			setIfEmpty(&md.CounterpartyName, v)
		case "vpa":
			setIfEmpty(&md.CounterpartyVPA, v)
		case "bank":
			setIfEmpty(&md.CounterpartyBank, v)
		case "account":
			setIfEmpty(&md.CounterpartyAccount, v)
		case "rrn", "utr", "ref":
			setIfEmpty(&md.RailReference, v)
		case "entity":
			setIfEmpty(&md.CounterpartyName, v)
		}
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
