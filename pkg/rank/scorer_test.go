package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recipeserve/recipeserve/pkg/dataset"
)

func doc(id, ingredients string) dataset.Document {
	return dataset.Document{ID: id, Ingredients: ingredients}
}

func TestVetoDominatesLikes(t *testing.T) {
	s := NewScorer(";", 10)

	// every like matches, but the single dislike kills it
	res := s.Score(doc("1", "beef;potato;carrot;onion"), []string{"beef", "potato", "carrot"}, []string{"onion"})
	assert.Equal(t, Disqualified, res.Score)
	assert.Equal(t, 0.0, res.Accuracy)
}

func TestVetoMatchesSubstrings(t *testing.T) {
	s := NewScorer(";", 10)

	// "onion" is contained in the token "green onion"
	res := s.Score(doc("1", "beef;green onion"), []string{"beef"}, []string{"onion"})
	assert.Equal(t, Disqualified, res.Score)
}

func TestScoreAndAccuracy(t *testing.T) {
	s := NewScorer(";", 10)

	res := s.Score(doc("2", "beef;potato;carrot"), []string{"beef", "potato", "carrot"}, []string{"onion"})
	assert.Equal(t, 30, res.Score)
	assert.Equal(t, 100.0, res.Accuracy)

	res = s.Score(doc("3", "beef;rice"), []string{"beef", "potato", "carrot"}, nil)
	assert.Equal(t, 10, res.Score)
	assert.InDelta(t, 33.33, res.Accuracy, 0.01)
}

func TestLikeMatchesAreDistinct(t *testing.T) {
	s := NewScorer(";", 10)

	// "beef" appears in two tokens but counts once; duplicate likes count once
	res := s.Score(doc("4", "beef;beef broth"), []string{"beef", "Beef", " beef "}, nil)
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, 100.0, res.Accuracy)
}

func TestEmptyLikes(t *testing.T) {
	s := NewScorer(";", 10)

	res := s.Score(doc("5", "beef;potato"), nil, nil)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 0.0, res.Accuracy, "empty likes must not divide by zero")
}

func TestMissingIngredientsDisqualifies(t *testing.T) {
	s := NewScorer(";", 10)

	res := s.Score(doc("6", ""), []string{"beef"}, nil)
	assert.Equal(t, Disqualified, res.Score)

	res = s.Score(doc("7", " ; ; "), []string{"beef"}, nil)
	assert.Equal(t, Disqualified, res.Score)
}

func TestScoreNormalizesTerms(t *testing.T) {
	s := NewScorer(";", 10)

	res := s.Score(doc("8", "Beef; Green Onion"), []string{" BEEF "}, []string{""})
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, 100.0, res.Accuracy)
}

func TestNormalizeTerms(t *testing.T) {
	assert.Equal(t, []string{"beef", "onion"}, NormalizeTerms([]string{" Beef", "ONION ", "beef", "  "}))
	assert.Nil(t, NormalizeTerms(nil))
}
