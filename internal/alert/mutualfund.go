package alert

import (
	"regexp"
	"strings"
	"time"

	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/normalize"
)

// mutualFundParser handles AMC confirmations for SIP installments, lump-sum
// purchases and redemptions.
type mutualFundParser struct{}

var (
	mfTriggerRe    = regexp.MustCompile(`(?i)mutual\s*fund|\bsip\b|\bfolio\b|\bnav\b`)
	mfSchemeRe     = regexp.MustCompile(`(?i)\bin\s+([A-Za-z0-9][A-Za-z0-9 &-]{2,60}?(?:fund|plan|scheme)(?:\s*-\s*(?:direct|regular|growth|idcw))*)`)
	mfFolioRe      = regexp.MustCompile(`(?i)folio\s*(?:no\.?|number)?\s*:?\s*([A-Z0-9][A-Z0-9/]{3,20})`)
	mfRedemptionRe = regexp.MustCompile(`(?i)redemption|redeemed|payout`)
)

func (p *mutualFundParser) Name() string { return "mutual_fund" }

func (p *mutualFundParser) Parse(body string, now time.Time) (*Result, bool) {
	if !mfTriggerRe.MatchString(body) {
		return nil, false
	}

	amount, ok := matchAmount(cardAmountRe, body)
	if !ok {
		return nil, false
	}

	// Purchases and SIP installments are outflows; redemptions pay in.
	direction := model.DirectionDebit
	if mfRedemptionRe.MatchString(body) {
		direction = model.DirectionCredit
	}

	optional := 0

	date, found := parseAlertDate(body, now)
	if found {
		optional++
	}

	var scheme string
	if m := mfSchemeRe.FindStringSubmatch(body); m != nil {
		scheme = normalize.CleanMerchantName(strings.TrimSpace(m[1]))
		optional++
	}

	var folio string
	if m := mfFolioRe.FindStringSubmatch(body); m != nil {
		folio = m[1]
		optional++
	}

	return &Result{
		Parser:     p.Name(),
		Confidence: score(optional),
		Transaction: model.Transaction{
			Date:         date,
			Description:  summarize(body),
			MerchantName: scheme,
			AccountRef:   folio,
			Amount:       amount,
			Direction:    direction,
			Channel:      normalize.ChannelInvestment,
		},
	}, true
}
