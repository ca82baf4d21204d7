package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTokens(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		sep      string
		expected []string
	}{
		{"plain list", "beef;potato;carrot", ";", []string{"beef", "potato", "carrot"}},
		{"mixed case and padding", " Beef ; POTATO ;carrot", ";", []string{"beef", "potato", "carrot"}},
		{"empty tokens dropped", "beef;;;potato;", ";", []string{"beef", "potato"}},
		{"whitespace only token dropped", "beef;   ;potato", ";", []string{"beef", "potato"}},
		{"single token", "green onion", ";", []string{"green onion"}},
		{"empty field", "", ";", nil},
		{"separator fallback", "beef;potato", "", []string{"beef", "potato"}},
		{"alternate separator", "beef|potato", "|", []string{"beef", "potato"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SplitTokens(tc.raw, tc.sep))
		})
	}
}

func TestNormalizeTerm(t *testing.T) {
	assert.Equal(t, "onion", NormalizeTerm("  Onion "))
	assert.Equal(t, "", NormalizeTerm("   "))
}
