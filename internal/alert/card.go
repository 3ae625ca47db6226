package alert

import (
	"regexp"
	"strings"
	"time"

	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/normalize"
)

// creditCardParser handles card-spend alerts of the form "Your XYZ Bank
// Credit Card ending 1234 was used for Rs.2,499.00 at AMAZON on 18-11-2024".
type creditCardParser struct{}

var (
	cardTriggerRe  = regexp.MustCompile(`(?i)credit\s*card|debit\s*card|card\s+ending|card\s+no`)
	cardAmountRe   = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹)\s*([0-9,]+(?:\.\d{1,2})?)`)
	cardMerchantRe = regexp.MustCompile(`(?i)\bat\s+([A-Za-z0-9][A-Za-z0-9 &._'-]{1,49}?)(?:\s+on\b|[.,]|$)`)
	cardLast4Re    = regexp.MustCompile(`(?i)card\s+(?:ending(?:\s+in)?|no\.?|number)?\s*[xX*]*(\d{4})`)
	cardReversalRe = regexp.MustCompile(`(?i)revers|refund|credited\s+back`)
)

func (p *creditCardParser) Name() string { return "credit_card" }

func (p *creditCardParser) Parse(body string, now time.Time) (*Result, bool) {
	if !cardTriggerRe.MatchString(body) {
		return nil, false
	}

	amount, ok := matchAmount(cardAmountRe, body)
	if !ok {
		return nil, false
	}

	direction := model.DirectionDebit
	if cardReversalRe.MatchString(body) {
		direction = model.DirectionCredit
	}

	optional := 0

	date, found := parseAlertDate(body, now)
	if found {
		optional++
	}

	var merchant string
	if m := cardMerchantRe.FindStringSubmatch(body); m != nil {
		merchant = normalize.CleanMerchantName(m[1])
		optional++
	}

	var accountRef string
	if m := cardLast4Re.FindStringSubmatch(body); m != nil {
		accountRef = m[1]
		optional++
	}

	return &Result{
		Parser:     p.Name(),
		Confidence: score(optional),
		Transaction: model.Transaction{
			Date:         date,
			Description:  summarize(body),
			MerchantName: merchant,
			AccountRef:   accountRef,
			Amount:       amount,
			Direction:    direction,
			Channel:      normalize.ChannelCreditCard,
		},
	}, true
}

// summarize collapses an alert body to a single line suitable for storing as
// the transaction description.
func summarize(body string) string {
	s := strings.Join(strings.Fields(body), " ")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
