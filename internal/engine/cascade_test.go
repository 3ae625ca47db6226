package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanvantari/ledgersift/internal/model"
)

func snapshotWith(rules []model.MerchantRule, directory []model.MerchantDirectoryEntry) *Snapshot {
	return &Snapshot{Rules: rules, Directory: directory, Version: 1}
}

func debitCandidate(merchant, description string) Candidate {
	return Candidate{
		Merchant:    merchant,
		Description: description,
		Amount:      500,
		Direction:   model.DirectionDebit,
	}
}

func TestRegexRuleWinsFirst(t *testing.T) {
	rules := []model.MerchantRule{
		{ID: 1, PatternType: model.RuleRegex, AppliesTo: model.FieldDescription,
			Pattern: `zomato|swiggy`, Category: model.CategoryDining,
			Subcategory: "delivery", Confidence: 0.99, IsActive: true},
		{ID: 2, PatternType: model.RuleExact, Pattern: "Zomato Ltd",
			Category: model.CategoryOther, Confidence: 0.9, IsActive: true},
	}
	cascade := NewCascade(snapshotWith(rules, nil), nil)

	result := cascade.Categorize(debitCandidate("Zomato Ltd", "UPI-ZOMATO LIMITED-zomato@icici"))

	assert.Equal(t, model.MethodRegexRule, result.Method)
	assert.Equal(t, model.CategoryDining, result.Category)
	assert.Equal(t, "delivery", result.Subcategory)
	require.NotNil(t, result.RuleID)
	assert.Equal(t, int64(1), *result.RuleID)
}

func TestExactRuleMatchesNormalizedMerchant(t *testing.T) {
	rules := []model.MerchantRule{
		{ID: 7, PatternType: model.RuleExact, Pattern: "Big Bazaar",
			Category: model.CategoryGroceries, Confidence: 0.92, IsActive: true},
	}
	cascade := NewCascade(snapshotWith(rules, nil), nil)

	result := cascade.Categorize(debitCandidate("  big   BAZAAR ", "POS 512967 BIG BAZAAR"))

	assert.Equal(t, model.MethodExactRule, result.Method)
	assert.Equal(t, model.CategoryGroceries, result.Category)
	assert.Equal(t, 0.92, result.Confidence)
}

func TestInactiveRulesAreSkipped(t *testing.T) {
	rules := []model.MerchantRule{
		{ID: 7, PatternType: model.RuleExact, Pattern: "Big Bazaar",
			Category: model.CategoryShopping, Confidence: 0.92, IsActive: false},
	}
	cascade := NewCascade(snapshotWith(rules, nil), nil)

	result := cascade.Categorize(debitCandidate("Big Bazaar", ""))

	assert.NotEqual(t, model.MethodExactRule, result.Method)
}

func TestDirectoryMatchesNameAliasAndContainment(t *testing.T) {
	directory := []model.MerchantDirectoryEntry{
		{ID: 1, Name: "Zomato", Aliases: []string{"Zomato Media"},
			Category: model.CategoryDining, Subcategory: "delivery", IsActive: true},
		{ID: 2, Name: "Indian Oil", Category: model.CategoryFuel, IsActive: true},
	}
	cascade := NewCascade(snapshotWith(nil, directory), nil)

	tests := []struct {
		merchant string
		category string
	}{
		{"Zomato", model.CategoryDining},
		{"Zomato Ltd", model.CategoryDining},     // containment
		{"Zomato Media", model.CategoryDining},   // alias
		{"Indian Oil Corp", model.CategoryFuel},  // containment
	}
	for _, tt := range tests {
		result := cascade.Categorize(debitCandidate(tt.merchant, ""))
		assert.Equal(t, model.MethodDirectory, result.Method, "merchant %q", tt.merchant)
		assert.Equal(t, tt.category, result.Category, "merchant %q", tt.merchant)
		assert.Equal(t, directoryConfidence, result.Confidence)
	}
}

func TestDirectorySimilarityMatch(t *testing.T) {
	directory := []model.MerchantDirectoryEntry{
		{ID: 1, Name: "Swiggy", Category: model.CategoryDining, IsActive: true},
	}
	cascade := NewCascade(snapshotWith(nil, directory), nil)

	// One deletion away; similarity well above the floor.
	result := cascade.Categorize(debitCandidate("Swigy", ""))

	assert.Equal(t, model.MethodDirectory, result.Method)
	assert.Equal(t, model.CategoryDining, result.Category)
}

func TestFuzzyRuleMatchesMisspelledMerchant(t *testing.T) {
	rules := []model.MerchantRule{
		{ID: 3, PatternType: model.RuleExact, Pattern: "Decathlon Stores",
			Category: model.CategoryShopping, Confidence: 0.6, IsActive: true},
	}
	cascade := NewCascade(snapshotWith(rules, nil), nil)

	result := cascade.Categorize(debitCandidate("Decathlonn Stores", ""))

	assert.Equal(t, model.MethodFuzzyRule, result.Method)
	assert.Equal(t, model.CategoryShopping, result.Category)
	// Rule confidence below the tier floor gets lifted to it.
	assert.Equal(t, fuzzyConfidenceFloor, result.Confidence)
}

func TestKeywordRuleMatchesDescription(t *testing.T) {
	rules := []model.MerchantRule{
		{ID: 4, PatternType: model.RuleKeyword, Keywords: []string{"electricity", "bescom"},
			Category: model.CategoryUtilities, Subcategory: "electricity",
			Confidence: 0.85, IsActive: true},
	}
	cascade := NewCascade(snapshotWith(rules, nil), nil)

	result := cascade.Categorize(debitCandidate("", "BESCOM ONLINE PAYMENT 123456"))

	assert.Equal(t, model.MethodKeywordRule, result.Method)
	assert.Equal(t, model.CategoryUtilities, result.Category)
}

func TestPersonalNameDetection(t *testing.T) {
	cascade := NewCascade(snapshotWith(nil, nil), nil)

	result := cascade.Categorize(debitCandidate("Ramesh Kumar", "UPI-RAMESH KUMAR-ramesh.kumar@ybl-430212345678"))

	assert.Equal(t, model.MethodPersonalName, result.Method)
	assert.Equal(t, model.CategoryTransfersOut, result.Category)
	assert.Equal(t, personalNameConfidence, result.Confidence)
}

func TestPersonalNameCreditIsTransferIn(t *testing.T) {
	cascade := NewCascade(snapshotWith(nil, nil), nil)
	c := debitCandidate("Priya Sharma", "IMPS-430212345678-PRIYA SHARMA")
	c.Direction = model.DirectionCredit

	result := cascade.Categorize(c)

	assert.Equal(t, model.CategoryTransfersIn, result.Category)
}

func TestPersonalNameOverridesWeakRuleTiers(t *testing.T) {
	// An exact rule learned from a past correction mislabels this person as
	// a merchant. The name-shaped merchant wins over the weak tier.
	rules := []model.MerchantRule{
		{ID: 9, PatternType: model.RuleExact, Pattern: "Ramesh Kumar",
			Category: model.CategoryDining, Confidence: 0.9, IsActive: true},
	}
	cascade := NewCascade(snapshotWith(rules, nil), nil)

	result := cascade.Categorize(debitCandidate("Ramesh Kumar", ""))

	assert.Equal(t, model.MethodPersonalName, result.Method)
	assert.Equal(t, model.CategoryTransfersOut, result.Category)
	assert.Equal(t, personalNameConfidence, result.Confidence)
}

func TestPersonalNameNeverOverridesRegexRule(t *testing.T) {
	rules := []model.MerchantRule{
		{ID: 10, PatternType: model.RuleRegex, AppliesTo: model.FieldMerchant,
			Pattern: `^ramesh kumar$`, Category: model.CategoryOther,
			Confidence: 0.99, IsActive: true},
	}
	cascade := NewCascade(snapshotWith(rules, nil), nil)

	result := cascade.Categorize(debitCandidate("Ramesh Kumar", ""))

	assert.Equal(t, model.MethodRegexRule, result.Method)
	assert.Equal(t, model.CategoryOther, result.Category)
}

func TestPersonalNameNeverOverridesDirectory(t *testing.T) {
	directory := []model.MerchantDirectoryEntry{
		{ID: 5, Name: "Ramesh Kumar", Category: model.CategoryPets,
			Subcategory: "vet", IsActive: true},
	}
	cascade := NewCascade(snapshotWith(nil, directory), nil)

	result := cascade.Categorize(debitCandidate("Ramesh Kumar", ""))

	assert.Equal(t, model.MethodDirectory, result.Method)
	assert.Equal(t, model.CategoryPets, result.Category)
}

func TestBusinessNamesAreNotPersonal(t *testing.T) {
	for _, merchant := range []string{
		"Zomato Ltd",
		"Sharma Enterprises",
		"Kumar Traders",
		"HDFC Bank",
		"Acct 430212345678",
		"",
	} {
		assert.False(t, looksLikePersonalName(merchant), "merchant %q", merchant)
	}
}

func TestFallbackKeywordFamilies(t *testing.T) {
	cascade := NewCascade(snapshotWith(nil, nil), nil)

	tests := []struct {
		merchant    string
		description string
		category    string
		subcategory string
	}{
		{"HPCL Petrol Pump", "POS 1234 HPCL", model.CategoryFuel, "petrol"},
		{"", "BLINKIT COMMERCE ORDER", model.CategoryGroceries, "quick_commerce"},
		{"", "IRCTC RAIL TICKET", model.CategoryTransport, "rail"},
		{"Netflix Com", "", model.CategoryEntertain, "streaming"},
	}
	for _, tt := range tests {
		result := cascade.Categorize(debitCandidate(tt.merchant, tt.description))
		assert.Equal(t, model.MethodFallback, result.Method, "merchant %q", tt.merchant)
		assert.Equal(t, tt.category, result.Category, "merchant %q", tt.merchant)
		assert.Equal(t, tt.subcategory, result.Subcategory, "merchant %q", tt.merchant)
		assert.Equal(t, fallbackConfidence, result.Confidence)
	}
}

func TestFallbackBareTransferRail(t *testing.T) {
	cascade := NewCascade(snapshotWith(nil, nil), nil)

	result := cascade.Categorize(debitCandidate("X1", "UPI/430212345678/collect"))

	assert.Equal(t, model.MethodFallback, result.Method)
	assert.Equal(t, model.CategoryTransfersOut, result.Category)
}

func TestCategorizationIsTotal(t *testing.T) {
	cascade := NewCascade(snapshotWith(nil, nil), nil)

	result := cascade.Categorize(debitCandidate("qx9z", "QX9Z 000111"))

	assert.Equal(t, model.MethodFallback, result.Method)
	assert.Equal(t, model.CategoryOther, result.Category)
	assert.Equal(t, fallbackConfidence, result.Confidence)
}

func TestRulePriorityOrdering(t *testing.T) {
	rules := []model.MerchantRule{
		{ID: 1, PatternType: model.RuleRegex, AppliesTo: model.FieldMerchant,
			Pattern: `swiggy`, Category: model.CategoryOther, Priority: 1,
			Confidence: 0.8, IsActive: true},
		{ID: 2, PatternType: model.RuleRegex, AppliesTo: model.FieldMerchant,
			Pattern: `swiggy`, Category: model.CategoryDining, Priority: 10,
			Confidence: 0.95, IsActive: true},
	}
	cascade := NewCascade(snapshotWith(rules, nil), nil)

	result := cascade.Categorize(debitCandidate("Swiggy", ""))

	require.NotNil(t, result.RuleID)
	assert.Equal(t, int64(2), *result.RuleID)
	assert.Equal(t, model.CategoryDining, result.Category)
}

type staticSource struct {
	snapshot *Snapshot
}

func (s staticSource) LoadRuleSnapshot(_ context.Context) (*Snapshot, error) {
	return s.snapshot, nil
}

func TestEngineCategorizeBatch(t *testing.T) {
	rules := []model.MerchantRule{
		{ID: 1, PatternType: model.RuleExact, Pattern: "Zomato Ltd",
			Category: model.CategoryDining, Confidence: 0.95, IsActive: true},
	}
	eng := NewEngine(staticSource{snapshotWith(rules, nil)}, nil)

	txs := []model.Transaction{
		{MerchantName: "Zomato Ltd", Description: "UPI-ZOMATO", Amount: 500, Direction: model.DirectionDebit},
		{MerchantName: "Ramesh Kumar", Description: "IMPS TRANSFER", Amount: 2000, Direction: model.DirectionDebit},
		{MerchantName: "qx9z", Description: "QX9Z", Amount: 10, Direction: model.DirectionDebit},
	}

	results, err := eng.CategorizeBatch(context.Background(), txs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, model.MethodExactRule, results[0].Method)
	assert.Equal(t, model.MethodPersonalName, results[1].Method)
	assert.Equal(t, model.MethodFallback, results[2].Method)
}

func TestEngineBatchHonorsCancellation(t *testing.T) {
	eng := NewEngine(staticSource{snapshotWith(nil, nil)}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.CategorizeBatch(ctx, []model.Transaction{{MerchantName: "x"}})

	assert.ErrorIs(t, err, context.Canceled)
}
