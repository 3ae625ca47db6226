package alert

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/normalize"
)

// transferAlertParser handles the generic UPI/IMPS/NEFT debit and credit
// alerts banks send for account transfers.
type transferAlertParser struct{}

var (
	xferDebitRe   = regexp.MustCompile(`(?i)\bdebited\b|\bsent\b|\bpaid\b`)
	xferCreditRe  = regexp.MustCompile(`(?i)\bcredited\b|\breceived\b`)
	xferAccountRe = regexp.MustCompile(`(?i)a/c\s*(?:no\.?)?\s*[xX*]*(\d{2,6})`)
	xferVPARe     = regexp.MustCompile(`(?i)(?:to|from)\s+(?:vpa\s+)?([a-z0-9][a-z0-9._-]*@[a-z][a-z0-9]*)`)
	xferNameRe    = regexp.MustCompile(`(?i)(?:to|from)\s+((?:[A-Z][a-z]+\s*){1,4})(?:\s+on\b|\s+via\b|[.,]|$)`)
	xferRefRe     = regexp.MustCompile(`(?i)(?:upi|imps|neft)?\s*(?:ref(?:erence)?\s*(?:no\.?)?|utr)\s*:?\s*(\d{6,18})`)
	xferRailRe    = regexp.MustCompile(`(?i)\b(upi|imps|neft|rtgs)\b`)
)

func (p *transferAlertParser) Name() string { return "transfer" }

func (p *transferAlertParser) Parse(body string, now time.Time) (*Result, bool) {
	amount, ok := matchAmount(cardAmountRe, body)
	if !ok {
		return nil, false
	}

	var direction model.TransactionDirection
	switch {
	case xferDebitRe.MatchString(body):
		direction = model.DirectionDebit
	case xferCreditRe.MatchString(body):
		direction = model.DirectionCredit
	default:
		return nil, false
	}

	optional := 0

	date, found := parseAlertDate(body, now)
	if found {
		optional++
	}

	var accountRef string
	if m := xferAccountRe.FindStringSubmatch(body); m != nil {
		accountRef = m[1]
		optional++
	}

	var merchant string
	if m := xferVPARe.FindStringSubmatch(body); m != nil {
		merchant = normalize.CleanMerchantName(vpaHandle(m[1]))
		optional++
	} else if m := xferNameRe.FindStringSubmatch(body); m != nil {
		merchant = normalize.CleanMerchantName(strings.TrimSpace(m[1]))
		optional++
	}

	var externalID string
	if m := xferRefRe.FindStringSubmatch(body); m != nil {
		externalID = m[1]
		optional++
	}

	channel := normalize.ChannelBankTransfer
	if m := xferRailRe.FindStringSubmatch(body); m != nil {
		if strings.EqualFold(m[1], "upi") {
			channel = normalize.ChannelUPI
		}
	}

	return &Result{
		Parser:     p.Name(),
		Confidence: score(optional),
		Transaction: model.Transaction{
			Date:         date,
			Description:  summarize(body),
			MerchantName: merchant,
			AccountRef:   accountRef,
			ExternalID:   externalID,
			Amount:       amount,
			Direction:    direction,
			Channel:      channel,
		},
	}, true
}

// vpaHandle keeps the handle before the @ and splits dotted handles into
// words.
func vpaHandle(vpa string) string {
	if at := strings.Index(vpa, "@"); at > 0 {
		vpa = vpa[:at]
	}
	return strings.ReplaceAll(vpa, ".", " ")
}

// matchAmount extracts and coerces the first currency-tagged amount.
func matchAmount(re *regexp.Regexp, body string) (float64, bool) {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
