// Package model defines the core domain models used throughout the application.
package model

import "time"

// RulePatternType describes how a merchant rule's pattern is interpreted.
type RulePatternType string

const (
	// RuleExact matches when the normalized merchant equals the pattern.
	RuleExact RulePatternType = "exact"
	// RuleRegex matches the pattern as a regular expression.
	RuleRegex RulePatternType = "regex"
	// RuleKeyword matches when any keyword appears as a substring.
	RuleKeyword RulePatternType = "keyword"
)

// RuleField selects which transaction field a rule is applied to.
type RuleField string

const (
	// FieldMerchant applies the rule to the cleaned merchant name.
	FieldMerchant RuleField = "merchant"
	// FieldDescription applies the rule to the raw narration.
	FieldDescription RuleField = "description"
)

// MerchantRule is an operator-authored (or correction-learned) categorization
// rule. Rules are read-only to the cascade.
type MerchantRule struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Pattern     string
	PatternType RulePatternType
	AppliesTo   RuleField
	Category    string
	Subcategory string
	Keywords    []string // Populated for RuleKeyword patterns
	ID          int64
	Priority    int
	Confidence  float64
	UseCount    int
	IsActive    bool
}
