package engine

import (
	"github.com/dhanvantari/ledgersift/internal/model"
)

// Cascade runs a candidate through the tiers in strict priority order. Rule
// and directory tiers come first; the personal-name heuristic can replace a
// match from the weaker rule tiers, but never a regex rule or a directory
// hit. The classifier and keyword fallback only run when everything above
// them passed, and the fallback always succeeds, so Categorize is total.
type Cascade struct {
	ruleTiers  []Matcher
	personal   personalNameMatcher
	classifier *Classifier
	fallback   fallbackMatcher
}

// NewCascade builds a cascade from one rule snapshot. The classifier is
// optional; without one, tier 7 is skipped.
func NewCascade(snapshot *Snapshot, classifier *Classifier) *Cascade {
	return &Cascade{
		ruleTiers: []Matcher{
			newRegexRuleMatcher(snapshot.Rules),
			newExactRuleMatcher(snapshot.Rules),
			newDirectoryMatcher(snapshot.Directory),
			newFuzzyRuleMatcher(snapshot.Rules),
			newKeywordRuleMatcher(snapshot.Rules),
		},
		classifier: classifier,
	}
}

// Categorize assigns a category to one candidate. It never fails.
func (cs *Cascade) Categorize(c Candidate) model.CategorizationResult {
	for _, tier := range cs.ruleTiers {
		result, ok := tier.Attempt(c)
		if !ok {
			continue
		}
		if overridable(result.Method) {
			if override, ok := cs.personal.Attempt(c); ok {
				return *override
			}
		}
		return *result
	}

	if result, ok := cs.personal.Attempt(c); ok {
		return *result
	}
	if cs.classifier != nil {
		if result, ok := cs.classifier.Attempt(c); ok {
			return *result
		}
	}

	result, _ := cs.fallback.Attempt(c)
	return *result
}

// overridable reports whether a tier's match may be replaced by the
// personal-name heuristic. Regex rules and directory entries are curated
// with enough specificity that a name-shaped merchant is not evidence of a
// mistake; the other tiers are weaker signals.
func overridable(method model.MatchMethod) bool {
	return method != model.MethodRegexRule && method != model.MethodDirectory
}
