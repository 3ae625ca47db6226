package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanvantari/ledgersift/internal/model"
)

func trainingSet() []TrainingSample {
	return []TrainingSample{
		{Merchant: "Zomato", Description: "food order delivery dinner", Category: model.CategoryDining, Amount: 450, Direction: model.DirectionDebit},
		{Merchant: "Swiggy", Description: "food order lunch delivery", Category: model.CategoryDining, Amount: 320, Direction: model.DirectionDebit},
		{Merchant: "Dominos", Description: "pizza dinner order", Category: model.CategoryDining, Amount: 600, Direction: model.DirectionDebit},
		{Merchant: "HPCL", Description: "petrol pump fuel refill", Category: model.CategoryFuel, Amount: 2000, Direction: model.DirectionDebit},
		{Merchant: "Indian Oil", Description: "fuel station petrol", Category: model.CategoryFuel, Amount: 2500, Direction: model.DirectionDebit},
		{Merchant: "Shell", Description: "petrol refill fuel", Category: model.CategoryFuel, Amount: 1800, Direction: model.DirectionDebit},
	}
}

func TestClassifierTrainsAndClassifies(t *testing.T) {
	classifier, err := NewTrainedClassifier(trainingSet())
	require.NoError(t, err)

	result, ok := classifier.Attempt(Candidate{
		Merchant:    "Swiggy",
		Description: "food delivery order",
		Amount:      400,
		Direction:   model.DirectionDebit,
	})

	require.True(t, ok)
	assert.Equal(t, model.MethodClassifier, result.Method)
	assert.Equal(t, model.CategoryDining, result.Category)
	assert.GreaterOrEqual(t, result.Confidence, classifierMinConfidence)
}

func TestClassifierRequiresTwoCategories(t *testing.T) {
	_, err := NewTrainedClassifier([]TrainingSample{
		{Merchant: "Zomato", Description: "food", Category: model.CategoryDining},
	})

	assert.Error(t, err)
}

func TestClassifierSkipsTokenlessCandidates(t *testing.T) {
	classifier, err := NewTrainedClassifier(trainingSet())
	require.NoError(t, err)

	_, ok := classifier.Attempt(Candidate{Merchant: "12", Description: "99 00"})

	assert.False(t, ok)
}

func TestClassifierSaveAndLoadRoundTrip(t *testing.T) {
	classifier, err := NewTrainedClassifier(trainingSet())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "classifier.gob")
	require.NoError(t, classifier.Save(path))

	loaded, err := LoadClassifier(path)
	require.NoError(t, err)

	result, ok := loaded.Attempt(Candidate{
		Merchant:    "HPCL",
		Description: "petrol pump fuel",
		Amount:      2000,
		Direction:   model.DirectionDebit,
	})
	require.True(t, ok)
	assert.Equal(t, model.CategoryFuel, result.Category)
}
