package engine

import (
	"regexp"
	"strings"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// p2pRailRe marks transfer rails with no merchant evidence.
var p2pRailRe = regexp.MustCompile(`(?i)\b(?:upi|imps|neft|rtgs|tpt)\b|@[a-z0-9]+`)

// keywordFamily is one fallback bucket: any keyword hit in merchant or
// description assigns the family's category.
type keywordFamily struct {
	category string
	keywords []string
}

// fallbackFamilies are tried in order; earlier families win on overlap. These
// cover the common spending buckets the statement corpus actually shows.
var fallbackFamilies = []keywordFamily{
	{model.CategoryFuel, []string{
		"petrol", "diesel", "fuel", "hpcl", "bpcl", "iocl", "indian oil",
		"bharat petroleum", "hindustan petroleum", "shell",
	}},
	{model.CategoryDining, []string{
		"zomato", "swiggy", "restaurant", "cafe", "coffee", "pizza", "biryani",
		"dominos", "mcdonald", "kfc", "eatery", "dhaba", "food",
	}},
	{model.CategoryGroceries, []string{
		"grocery", "groceries", "bigbasket", "blinkit", "zepto", "dmart",
		"grofers", "supermarket", "kirana", "fresh", "instamart",
	}},
	{model.CategoryUtilities, []string{
		"electricity", "electric", "bescom", "mseb", "tneb", "water bill",
		"gas bill", "broadband", "airtel", "jio", "vodafone", "bsnl",
		"recharge", "dth", "postpaid", "prepaid",
	}},
	{model.CategoryTransport, []string{
		"uber", "ola", "rapido", "metro", "irctc", "railway", "redbus",
		"cab", "taxi", "parking", "toll", "fastag",
	}},
	{model.CategoryPets, []string{
		"pet", "vet", "veterinary", "petco", "heads up for tails", "supertails",
	}},
	{model.CategoryEntertain, []string{
		"netflix", "hotstar", "spotify", "prime video", "bookmyshow", "pvr",
		"inox", "cinema", "movie", "gaming",
	}},
	{model.CategoryShopping, []string{
		"amazon", "flipkart", "myntra", "ajio", "nykaa", "meesho", "croma",
		"reliance digital", "decathlon", "shopping",
	}},
	{model.CategoryInvestment, []string{
		"mutual fund", "sip", "zerodha", "groww", "upstox", "kuvera",
		"nps", "ppf", "elss", "bse limited", "indian clearing",
	}},
	{model.CategoryLoan, []string{
		"emi", "loan", "bajaj fin", "hdb financial", "repayment",
	}},
	{model.CategoryInsurance, []string{
		"insurance", "lic", "policy", "premium", "acko", "hdfc ergo",
	}},
	{model.CategoryCreditCard, []string{
		"credit card", "card payment", "autopay card", "cc payment", "crcard",
	}},
}

// defaultSubcategories map a category to its subcategory when a rule or
// directory entry carries none.
var defaultSubcategories = map[string]string{
	model.CategoryDining:       "restaurants",
	model.CategoryGroceries:    "supermarket",
	model.CategoryUtilities:    "bills",
	model.CategoryTransport:    "ride_hailing",
	model.CategoryFuel:         "petrol",
	model.CategoryPets:         "supplies",
	model.CategoryShopping:     "online",
	model.CategoryEntertain:    "streaming",
	model.CategoryInvestment:   "mutual_funds",
	model.CategoryLoan:         "emi",
	model.CategoryInsurance:    "premium",
	model.CategoryCreditCard:   "bill_payment",
	model.CategoryTransfersOut: "p2p",
	model.CategoryTransfersIn:  "p2p",
	model.CategoryOther:        "",
}

func defaultSubcategory(category string) string {
	return defaultSubcategories[category]
}

// subcategoryRule refines a fallback category from extra keyword evidence.
type subcategoryRule struct {
	subcategory string
	keywords    []string
}

var subcategoryRules = map[string][]subcategoryRule{
	model.CategoryDining: {
		{"delivery", []string{"zomato", "swiggy"}},
		{"coffee", []string{"coffee", "cafe", "starbucks", "barista"}},
	},
	model.CategoryGroceries: {
		{"quick_commerce", []string{"blinkit", "zepto", "instamart"}},
	},
	model.CategoryUtilities: {
		{"telecom", []string{"airtel", "jio", "vodafone", "bsnl", "recharge", "postpaid", "prepaid"}},
		{"electricity", []string{"electricity", "electric", "bescom", "mseb", "tneb"}},
	},
	model.CategoryTransport: {
		{"rail", []string{"irctc", "railway", "metro"}},
		{"tolls", []string{"toll", "fastag"}},
	},
	model.CategoryEntertain: {
		{"cinema", []string{"bookmyshow", "pvr", "inox", "cinema", "movie"}},
	},
	model.CategoryInvestment: {
		{"sip", []string{"sip", "mutual fund"}},
	},
}

// fallbackMatcher is tier 8, the terminal tier. It always produces a result,
// making categorization total. Unmatched person-to-person rails default to
// transfers; everything else lands in the catch-all category.
type fallbackMatcher struct{}

func (m fallbackMatcher) Name() string { return "fallback" }

func (m fallbackMatcher) Attempt(c Candidate) (*model.CategorizationResult, bool) {
	haystack := normalizeMatchText(c.Merchant + " " + c.Description)

	for _, family := range fallbackFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(haystack, kw) {
				return &model.CategorizationResult{
					Category:    family.category,
					Subcategory: resolveSubcategory(family.category, haystack),
					Method:      model.MethodFallback,
					Confidence:  fallbackConfidence,
				}, true
			}
		}
	}

	// A bare transfer rail with no merchant evidence is a P2P transfer.
	if p2pRailRe.MatchString(c.Description) {
		category := model.CategoryTransfersOut
		if c.Direction == model.DirectionCredit {
			category = model.CategoryTransfersIn
		}
		return &model.CategorizationResult{
			Category:    category,
			Subcategory: defaultSubcategory(category),
			Method:      model.MethodFallback,
			Confidence:  fallbackConfidence,
		}, true
	}

	return &model.CategorizationResult{
		Category:   model.CategoryOther,
		Method:     model.MethodFallback,
		Confidence: fallbackConfidence,
	}, true
}

func resolveSubcategory(category, haystack string) string {
	for _, rule := range subcategoryRules[category] {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.subcategory
			}
		}
	}
	return defaultSubcategory(category)
}
