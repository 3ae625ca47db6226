package table

import "strings"

// Field is a canonical column name resolved from a header cell.
type Field string

// Canonical fields, in column-resolution priority order (resolvePriority).
const (
	FieldDate             Field = "date"
	FieldAmount           Field = "amount"
	FieldDescription      Field = "description"
	FieldDirection        Field = "direction"
	FieldCurrency         Field = "currency"
	FieldMerchant         Field = "merchant"
	FieldAccountRef       Field = "account_ref"
	FieldExternalID       Field = "external_id"
	FieldWithdrawalAmount Field = "withdrawal_amount"
	FieldDepositAmount    Field = "deposit_amount"
	FieldBalance          Field = "balance"
)

// resolvePriority fixes the order in which header cells are matched against
// alias sets. Earlier fields win contested cells; a duplicate canonical
// assignment keeps only the first column seen.
var resolvePriority = []Field{
	FieldDate,
	FieldAmount,
	FieldDescription,
	FieldDirection,
	FieldCurrency,
	FieldMerchant,
	FieldAccountRef,
	FieldExternalID,
	FieldWithdrawalAmount,
	FieldDepositAmount,
	FieldBalance,
}

// aliases maps every observed header spelling (normalized to lowercase
// alphanumerics) to its canonical field. Grown from real bank exports; keep
// entries normalized or they will never match.
var aliases = map[Field][]string{
	FieldDate: {
		"date", "txndate", "trandate", "transactiondate", "valuedate",
		"valdate", "postingdate", "postdate", "bookingdate", "datetime",
		"transactiondatetime", "tradedate",
	},
	FieldAmount: {
		"amount", "amt", "txnamount", "transactionamount", "amountinr",
		"amountrs", "value", "netamount",
	},
	FieldDescription: {
		"description", "narration", "particulars", "details", "remarks",
		"transactiondetails", "transactionremarks", "transactiondescription",
		"descriptionnarration", "narrative",
	},
	FieldDirection: {
		"drcr", "crdr", "dc", "debitcredit", "type", "txntype",
		"transactiontype", "withdrawaldeposit",
	},
	FieldCurrency: {
		"currency", "ccy", "curr", "currencycode",
	},
	FieldMerchant: {
		"merchant", "merchantname", "payee", "payeename", "vendor",
		"beneficiary", "beneficiaryname",
	},
	FieldAccountRef: {
		"account", "accountno", "accountnumber", "accno", "acno",
		"accountref", "fromaccount",
	},
	FieldExternalID: {
		"refno", "ref", "referenceno", "referencenumber", "txnid",
		"transactionid", "chqrefno", "chequerefno", "chqno", "chequeno",
		"utrno", "utr", "rrn", "tranid",
	},
	FieldWithdrawalAmount: {
		"withdrawal", "withdrawals", "withdrawalamt", "withdrawalamount",
		"withdrawalamtinr", "debit", "debitamount", "debitamt", "dr",
		"debitinr", "withdrawaldr",
	},
	FieldDepositAmount: {
		"deposit", "deposits", "depositamt", "depositamount",
		"depositamtinr", "credit", "creditamount", "creditamt", "cr",
		"creditinr", "depositcr",
	},
	FieldBalance: {
		"balance", "closingbalance", "runningbalance", "availablebalance",
		"balanceamt", "balanceinr", "closingbal",
	},
}

// aliasSets holds the same data as aliases keyed for O(1) lookup, built once
// at package init.
var aliasSets = func() map[Field]map[string]struct{} {
	sets := make(map[Field]map[string]struct{}, len(aliases))
	for field, names := range aliases {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		sets[field] = set
	}
	return sets
}()

// NormalizeHeaderCell strips a header cell down to lowercase alphanumerics so
// "Txn Date", "TXN_DATE" and "Txn. Date" all compare equal.
func NormalizeHeaderCell(cell string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(cell) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchField returns the canonical field a normalized header cell maps to.
func matchField(normalized string) (Field, bool) {
	for _, field := range resolvePriority {
		if _, ok := aliasSets[field][normalized]; ok {
			return field, true
		}
	}
	return "", false
}

// ResolveColumns maps raw header cells to canonical field positions. Fields
// are matched in fixed priority order and the first column claiming a field
// wins; later duplicates are ignored.
func ResolveColumns(header []string) map[Field]int {
	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = NormalizeHeaderCell(cell)
	}

	columns := make(map[Field]int)
	for _, field := range resolvePriority {
		for i, cell := range normalized {
			if _, ok := aliasSets[field][cell]; !ok {
				continue
			}
			if _, taken := columns[field]; taken {
				continue
			}
			// A column already claimed by a higher-priority field stays claimed.
			if claimedBy(columns, i) {
				continue
			}
			columns[field] = i
		}
	}
	return columns
}

func claimedBy(columns map[Field]int, col int) bool {
	for _, c := range columns {
		if c == col {
			return true
		}
	}
	return false
}
