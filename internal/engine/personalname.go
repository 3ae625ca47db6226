package engine

import (
	"regexp"
	"strings"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// personalNameMatcher is tier 6: a heuristic for person-to-person transfers.
// When the merchant looks like a personal name rather than a business, the
// transaction is a transfer in the direction of the money flow. The cascade
// lets this tier override low-certainty rule tiers but never a regex rule or
// a directory hit.
type personalNameMatcher struct{}

func (m personalNameMatcher) Name() string { return "personal_name" }

// Rail prefixes and id-like runs stripped before judging the remaining
// tokens.
var (
	railPrefixRe = regexp.MustCompile(`(?i)^(?:upi|imps|neft|rtgs|ach|nach|tpt|mmt)\b[\s/:-]*`)
	idRunRe      = regexp.MustCompile(`\b[A-Z0-9]*\d{4,}[A-Z0-9]*\b`)
	vpaDomainRe  = regexp.MustCompile(`@[a-z0-9]+`)
)

// businessTokens are words that mark a counterparty as a business, not a
// person. Presence of any disqualifies the heuristic.
var businessTokens = map[string]struct{}{
	"ltd": {}, "limited": {}, "pvt": {}, "private": {}, "llp": {},
	"inc": {}, "corp": {}, "corporation": {}, "co": {}, "company": {},
	"enterprises": {}, "enterprise": {}, "industries": {}, "traders": {},
	"trading": {}, "stores": {}, "store": {}, "mart": {}, "bazaar": {},
	"services": {}, "service": {}, "solutions": {}, "technologies": {},
	"technology": {}, "tech": {}, "systems": {}, "agency": {}, "agencies": {},
	"bank": {}, "finance": {}, "financial": {}, "insurance": {},
	"hospital": {}, "clinic": {}, "pharmacy": {}, "restaurant": {},
	"hotel": {}, "cafe": {}, "foods": {}, "retail": {}, "online": {},
	"india": {}, "intl": {}, "international": {}, "group": {},
}

func (m personalNameMatcher) Attempt(c Candidate) (*model.CategorizationResult, bool) {
	if !looksLikePersonalName(c.Merchant) {
		return nil, false
	}

	category := model.CategoryTransfersOut
	if c.Direction == model.DirectionCredit {
		category = model.CategoryTransfersIn
	}
	return &model.CategorizationResult{
		Category:    category,
		Subcategory: defaultSubcategory(category),
		Method:      model.MethodPersonalName,
		Confidence:  personalNameConfidence,
	}, true
}

// looksLikePersonalName reports whether a merchant string is plausibly a
// person: one to four alphabetic tokens, no digits, no business vocabulary,
// no domain fragments.
func looksLikePersonalName(merchant string) bool {
	s := strings.ToLower(strings.TrimSpace(merchant))
	if s == "" {
		return false
	}
	s = railPrefixRe.ReplaceAllString(s, "")
	s = vpaDomainRe.ReplaceAllString(s, "")
	s = idRunRe.ReplaceAllString(strings.ToUpper(s), "")
	s = strings.ToLower(s)

	tokens := strings.Fields(s)
	if len(tokens) == 0 || len(tokens) > 4 {
		return false
	}
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,-'&")
		if tok == "" {
			return false
		}
		if _, business := businessTokens[tok]; business {
			return false
		}
		for _, r := range tok {
			if (r < 'a' || r > 'z') && r != '.' && r != '\'' {
				return false
			}
		}
		if len(tok) < 2 {
			return false
		}
	}
	return true
}
