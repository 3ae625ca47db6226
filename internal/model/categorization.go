package model

// MatchMethod tags which cascade tier produced a categorization.
type MatchMethod string

// Match method constants, ordered by cascade tier.
const (
	MethodRegexRule    MatchMethod = "REGEX_RULE"
	MethodExactRule    MatchMethod = "EXACT_RULE"
	MethodDirectory    MatchMethod = "DIRECTORY"
	MethodFuzzyRule    MatchMethod = "FUZZY_RULE"
	MethodKeywordRule  MatchMethod = "KEYWORD_RULE"
	MethodPersonalName MatchMethod = "PERSONAL_NAME"
	MethodClassifier   MatchMethod = "CLASSIFIER"
	MethodFallback     MatchMethod = "FALLBACK"
)

// CategorizationResult is the outcome of running the merchant categorization
// cascade for a single transaction. Confidence is in [0,1] and reflects the
// matcher tier; Subcategory, when set, always belongs to Category.
type CategorizationResult struct {
	Category    string
	Subcategory string
	Method      MatchMethod
	RuleID      *int64 // Matched rule identifier, nil for rule-less tiers
	Confidence  float64
}
