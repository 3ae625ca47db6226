package engine

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jbrukh/bayesian"

	"github.com/dhanvantari/ledgersift/internal/model"
)

// TrainingSample is one labeled transaction used to train the classifier.
type TrainingSample struct {
	Merchant    string
	Description string
	Category    string
	Amount      float64
	Direction   model.TransactionDirection
}

// Classifier is tier 7: a naive-Bayes TF-IDF model trained on previously
// categorized transactions. It only emits a result when the winning class
// clears the confidence floor; below that the cascade moves on.
type Classifier struct {
	nb      *bayesian.Classifier
	classes []bayesian.Class
}

// NewTrainedClassifier trains a TF-IDF classifier from labeled samples. At
// least two distinct categories are required.
func NewTrainedClassifier(samples []TrainingSample) (*Classifier, error) {
	seen := make(map[string]struct{})
	var classes []bayesian.Class
	for _, s := range samples {
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		classes = append(classes, bayesian.Class(s.Category))
	}
	if len(classes) < 2 {
		return nil, fmt.Errorf("training requires at least 2 categories, got %d", len(classes))
	}

	nb := bayesian.NewClassifierTfIdf(classes...)
	for _, s := range samples {
		nb.Learn(sampleTokens(s), bayesian.Class(s.Category))
	}
	nb.ConvertTermsFreqToTfIdf()

	return &Classifier{nb: nb, classes: classes}, nil
}

// LoadClassifier restores a previously trained classifier from disk.
func LoadClassifier(path string) (*Classifier, error) {
	nb, err := bayesian.NewClassifierFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading classifier from %s: %w", path, err)
	}
	return &Classifier{nb: nb, classes: nb.Classes}, nil
}

// Save persists the trained model for later LoadClassifier calls.
func (c *Classifier) Save(path string) error {
	if err := c.nb.WriteToFile(path); err != nil {
		return fmt.Errorf("writing classifier to %s: %w", path, err)
	}
	return nil
}

func (c *Classifier) Name() string { return "classifier" }

// Attempt scores the candidate against all trained classes and accepts the
// winner only above the confidence floor.
func (c *Classifier) Attempt(cand Candidate) (*model.CategorizationResult, bool) {
	tokens := candidateTokens(cand)
	if len(tokens) == 0 {
		return nil, false
	}

	scores, winner, _ := c.nb.ProbScores(tokens)
	if winner < 0 || winner >= len(c.classes) {
		return nil, false
	}
	confidence := scores[winner]
	if confidence < classifierMinConfidence {
		return nil, false
	}

	category := string(c.classes[winner])
	return &model.CategorizationResult{
		Category:    category,
		Subcategory: defaultSubcategory(category),
		Method:      model.MethodClassifier,
		Confidence:  confidence,
	}, true
}

func sampleTokens(s TrainingSample) []string {
	return featureTokens(s.Merchant, s.Description, s.Amount, s.Direction)
}

func candidateTokens(c Candidate) []string {
	return featureTokens(c.Merchant, c.Description, c.Amount, c.Direction)
}

// featureTokens extracts the classifier vocabulary: alphabetic words from the
// merchant and narration plus coarse amount and direction features.
func featureTokens(merchant, description string, amount float64, direction model.TransactionDirection) []string {
	raw := strings.Fields(strings.ToLower(merchant + " " + description))

	tokens := make([]string, 0, len(raw)+2)
	for _, tok := range raw {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if len(tok) < 3 || !isAlphabetic(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil
	}

	tokens = append(tokens, amountBucket(amount), "dir_"+string(direction))
	return tokens
}

func amountBucket(amount float64) string {
	switch {
	case amount < 500:
		return "amt_small"
	case amount < 5000:
		return "amt_medium"
	case amount < 50000:
		return "amt_large"
	default:
		return "amt_xlarge"
	}
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
