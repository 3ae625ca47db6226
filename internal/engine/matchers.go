package engine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// normalizeMatchText lowercases and collapses whitespace, the shared
// normalization for all merchant comparisons in the cascade.
func normalizeMatchText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// levenshtein is the shared similarity metric. Inputs are pre-lowercased.
var levenshtein = metrics.NewLevenshtein()

func similarity(a, b string) float64 {
	return strutil.Similarity(a, b, levenshtein)
}

// activeByPriority filters active rules of one pattern type and orders them
// by priority, highest first.
func activeByPriority(rules []model.MerchantRule, pt model.RulePatternType) []model.MerchantRule {
	var out []model.MerchantRule
	for _, r := range rules {
		if r.IsActive && r.PatternType == pt {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// ruleTarget picks the candidate field a rule applies to.
func ruleTarget(c Candidate, field model.RuleField) string {
	if field == model.FieldDescription {
		return normalizeMatchText(c.Description)
	}
	return normalizeMatchText(c.Merchant)
}

// ruleResult builds a categorization result from a matched rule.
func ruleResult(rule model.MerchantRule, method model.MatchMethod, confidence float64) *model.CategorizationResult {
	id := rule.ID
	sub := rule.Subcategory
	if sub == "" {
		sub = defaultSubcategory(rule.Category)
	}
	return &model.CategorizationResult{
		Category:    rule.Category,
		Subcategory: sub,
		Method:      method,
		RuleID:      &id,
		Confidence:  confidence,
	}
}

// regexRuleMatcher is tier 1: compiled regex rules against merchant or
// description. A regex rule match is never overridden by later tiers.
type regexRuleMatcher struct {
	compiled map[int64]*regexp.Regexp
	rules    []model.MerchantRule
}

func newRegexRuleMatcher(rules []model.MerchantRule) *regexRuleMatcher {
	m := &regexRuleMatcher{
		rules:    activeByPriority(rules, model.RuleRegex),
		compiled: make(map[int64]*regexp.Regexp),
	}
	for _, rule := range m.rules {
		if re, err := regexp.Compile("(?i)" + rule.Pattern); err == nil {
			m.compiled[rule.ID] = re
		}
	}
	return m
}

func (m *regexRuleMatcher) Name() string { return "regex_rule" }

func (m *regexRuleMatcher) Attempt(c Candidate) (*model.CategorizationResult, bool) {
	for _, rule := range m.rules {
		re, ok := m.compiled[rule.ID]
		if !ok {
			continue
		}
		if re.MatchString(ruleTarget(c, rule.AppliesTo)) {
			return ruleResult(rule, model.MethodRegexRule, rule.Confidence), true
		}
	}
	return nil, false
}

// exactRuleMatcher is tier 2: the normalized merchant equals a rule's stored
// merchant string.
type exactRuleMatcher struct {
	byMerchant map[string]model.MerchantRule
}

func newExactRuleMatcher(rules []model.MerchantRule) *exactRuleMatcher {
	m := &exactRuleMatcher{byMerchant: make(map[string]model.MerchantRule)}
	// Iterate lowest priority first so higher-priority rules overwrite.
	ordered := activeByPriority(rules, model.RuleExact)
	for i := len(ordered) - 1; i >= 0; i-- {
		m.byMerchant[normalizeMatchText(ordered[i].Pattern)] = ordered[i]
	}
	return m
}

func (m *exactRuleMatcher) Name() string { return "exact_rule" }

func (m *exactRuleMatcher) Attempt(c Candidate) (*model.CategorizationResult, bool) {
	merchant := normalizeMatchText(c.Merchant)
	if merchant == "" {
		return nil, false
	}
	if rule, ok := m.byMerchant[merchant]; ok {
		return ruleResult(rule, model.MethodExactRule, rule.Confidence), true
	}
	return nil, false
}

// directoryMatcher is tier 3: the curated merchant directory. Matches on
// exact equality, containment either way (aliases included), or similarity
// above the threshold; ties broken by exact first, then high similarity.
// A directory match is never overridden by the personal-name heuristic.
type directoryMatcher struct {
	entries []model.MerchantDirectoryEntry
}

func newDirectoryMatcher(entries []model.MerchantDirectoryEntry) *directoryMatcher {
	var active []model.MerchantDirectoryEntry
	for _, e := range entries {
		if e.IsActive {
			active = append(active, e)
		}
	}
	return &directoryMatcher{entries: active}
}

func (m *directoryMatcher) Name() string { return "directory" }

func (m *directoryMatcher) Attempt(c Candidate) (*model.CategorizationResult, bool) {
	merchant := normalizeMatchText(c.Merchant)
	if merchant == "" {
		return nil, false
	}

	var highSim, lowSim *model.MerchantDirectoryEntry

	for i := range m.entries {
		entry := &m.entries[i]
		for _, name := range entryNames(entry) {
			if name == "" {
				continue
			}
			switch {
			case name == merchant:
				return m.result(entry), true
			case strings.Contains(merchant, name) || strings.Contains(name, merchant):
				if highSim == nil {
					highSim = entry
				}
			default:
				sim := similarity(merchant, name)
				if sim >= directorySimilarityHigh && highSim == nil {
					highSim = entry
				} else if sim >= directorySimilarityMin && lowSim == nil {
					lowSim = entry
				}
			}
		}
	}

	if highSim != nil {
		return m.result(highSim), true
	}
	if lowSim != nil {
		return m.result(lowSim), true
	}
	return nil, false
}

func (m *directoryMatcher) result(entry *model.MerchantDirectoryEntry) *model.CategorizationResult {
	sub := entry.Subcategory
	if sub == "" {
		sub = defaultSubcategory(entry.Category)
	}
	return &model.CategorizationResult{
		Category:    entry.Category,
		Subcategory: sub,
		Method:      model.MethodDirectory,
		Confidence:  directoryConfidence,
	}
}

func entryNames(entry *model.MerchantDirectoryEntry) []string {
	names := make([]string, 0, len(entry.Aliases)+1)
	names = append(names, normalizeMatchText(entry.Name))
	for _, alias := range entry.Aliases {
		names = append(names, normalizeMatchText(alias))
	}
	return names
}

// fuzzyRuleMatcher is tier 4: similarity against exact rules' merchant
// strings; the highest similarity above the floor wins.
type fuzzyRuleMatcher struct {
	rules []model.MerchantRule
}

func newFuzzyRuleMatcher(rules []model.MerchantRule) *fuzzyRuleMatcher {
	return &fuzzyRuleMatcher{rules: activeByPriority(rules, model.RuleExact)}
}

func (m *fuzzyRuleMatcher) Name() string { return "fuzzy_rule" }

func (m *fuzzyRuleMatcher) Attempt(c Candidate) (*model.CategorizationResult, bool) {
	merchant := normalizeMatchText(c.Merchant)
	if merchant == "" {
		return nil, false
	}

	var best *model.MerchantRule
	bestSim := 0.0
	for i := range m.rules {
		sim := similarity(merchant, normalizeMatchText(m.rules[i].Pattern))
		if sim >= fuzzySimilarityMin && sim > bestSim {
			best = &m.rules[i]
			bestSim = sim
		}
	}
	if best == nil {
		return nil, false
	}

	confidence := best.Confidence
	if confidence < fuzzyConfidenceFloor {
		confidence = fuzzyConfidenceFloor
	}
	return ruleResult(*best, model.MethodFuzzyRule, confidence), true
}

// keywordRuleMatcher is tier 5: any of a rule's keywords appearing as a
// substring of merchant or description.
type keywordRuleMatcher struct {
	rules []model.MerchantRule
}

func newKeywordRuleMatcher(rules []model.MerchantRule) *keywordRuleMatcher {
	return &keywordRuleMatcher{rules: activeByPriority(rules, model.RuleKeyword)}
}

func (m *keywordRuleMatcher) Name() string { return "keyword_rule" }

func (m *keywordRuleMatcher) Attempt(c Candidate) (*model.CategorizationResult, bool) {
	merchant := normalizeMatchText(c.Merchant)
	description := normalizeMatchText(c.Description)

	for _, rule := range m.rules {
		for _, kw := range rule.Keywords {
			kw = normalizeMatchText(kw)
			if kw == "" {
				continue
			}
			if strings.Contains(merchant, kw) || strings.Contains(description, kw) {
				confidence := rule.Confidence
				if confidence > 1.0 {
					confidence = 1.0
				}
				return ruleResult(rule, model.MethodKeywordRule, confidence), true
			}
		}
	}
	return nil, false
}
