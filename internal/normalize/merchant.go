package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// Merchant extraction patterns, compiled once. Tried in order; the first
// pattern producing a usable segment wins.
var (
	upiPrefixRe = regexp.MustCompile(`(?i)^UPI[-/]([^-/]+)`)
	achPrefixRe = regexp.MustCompile(`(?i)^ACH\s*[CD]?[-/]\s*([^-/]+)`)
	revUPIRe    = regexp.MustCompile(`(?i)^REV[-/]UPI[-/]([^-/]+)`)
)

// nonMerchantTokens are delimiter-separated tokens that can never be a
// merchant: rail markers, direction tags and similar protocol noise.
var nonMerchantTokens = map[string]struct{}{
	"upi": {}, "imps": {}, "neft": {}, "rtgs": {}, "ach": {}, "nach": {},
	"pos": {}, "atm": {}, "ib": {}, "mb": {}, "ref": {}, "rev": {},
	"cr": {}, "dr": {}, "payment": {}, "paymentfrom": {}, "paymentto": {},
	"transfer": {}, "tpt": {}, "fund": {}, "sal": {}, "mmt": {},
}

// legalSuffixes maps title-cased legal suffixes to their conventional
// abbreviations.
var legalSuffixes = map[string]string{
	"Limited":       "Ltd",
	"Private":       "Pvt",
	"Corporation":   "Corp",
	"Company":       "Co",
	"Incorporated":  "Inc",
	"International": "Intl",
}

// ExtractMerchant recovers a merchant name from free-text narration using
// ordered pattern attempts. Returns "" when nothing plausible is found.
func ExtractMerchant(description string) string {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return ""
	}

	for _, re := range []*regexp.Regexp{revUPIRe, upiPrefixRe, achPrefixRe} {
		m := re.FindStringSubmatch(desc)
		if m == nil {
			continue
		}
		if candidate := usableSegment(m[1]); candidate != "" {
			return CleanMerchantName(candidate)
		}
	}

	if token := scanDelimitedTokens(desc); token != "" {
		return CleanMerchantName(token)
	}

	// Last resort: whatever precedes the first @ or dot.
	if idx := strings.IndexAny(desc, "@."); idx > 0 {
		return CleanMerchantName(desc[:idx])
	}

	return ""
}

// usableSegment trims a VPA domain off a captured segment and rejects
// segments that are just transaction-id noise. Returns "" when unusable so
// the next extraction attempt runs.
func usableSegment(segment string) string {
	segment = trimVPA(strings.TrimSpace(segment))
	if segment == "" || len(segment) > 50 {
		return ""
	}
	if isNumeric(segment) || !alphabeticMajority(segment) {
		return ""
	}
	return segment
}

// trimVPA cuts a UPI handle at its @ and turns dotted handles into words, so
// "ramesh.kumar@ybl" becomes "ramesh kumar".
func trimVPA(s string) string {
	if at := strings.Index(s, "@"); at > 0 {
		s = s[:at]
		s = strings.ReplaceAll(s, ".", " ")
	}
	return strings.TrimSpace(s)
}

// scanDelimitedTokens walks slash/dash-delimited tokens, skipping pure
// numbers and protocol markers, preferring the first alphabetic-majority
// token of reasonable length.
func scanDelimitedTokens(desc string) string {
	tokens := strings.FieldsFunc(desc, func(r rune) bool {
		return r == '/' || r == '-'
	})

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" || len(token) > 50 {
			continue
		}
		key := strings.ToLower(strings.Join(strings.Fields(token), ""))
		if _, skip := nonMerchantTokens[key]; skip {
			continue
		}
		if isNumeric(token) {
			continue
		}
		if !alphabeticMajority(token) {
			continue
		}
		// VPA-looking tokens keep only the handle before the @.
		return trimVPA(token)
	}
	return ""
}

// CleanMerchantName title-cases a raw merchant segment and abbreviates known
// legal suffixes ("Limited" -> "Ltd").
func CleanMerchantName(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	if len(words) == 0 {
		return ""
	}

	for i, word := range words {
		words[i] = titleCaseWord(word)
		if abbr, ok := legalSuffixes[words[i]]; ok {
			words[i] = abbr
		}
	}
	return strings.Join(words, " ")
}

func titleCaseWord(word string) string {
	runes := []rune(strings.ToLower(word))
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}

func isNumeric(s string) bool {
	seen := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			seen = true
			continue
		}
		if r == ' ' || r == '.' {
			continue
		}
		return false
	}
	return seen
}

func alphabeticMajority(s string) bool {
	letters, total := 0, 0
	for _, r := range s {
		if r == ' ' {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return total > 0 && letters*2 > total
}
