package utils

import "unicode"

// IsSeparator checks if a rune is acceptable inside an ingredient query.
// Ingredients regularly contain spaces and hyphens ("green onion",
// "half-and-half").
func IsSeparator(r rune) bool {
	return r == ' ' || r == '-' || r == '\''
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsSpecialChars checks if a string contains characters that never
// appear in ingredient tokens (anything beyond letters, digits and the
// allowed separators)
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return true
		}
	}
	return false
}

// IsRepetitive checks if a string consists of a single repeated character
// (e.g., "aaa"), which only produces junk lookups
func IsRepetitive(s string) bool {
	if len(s) <= 2 {
		return false
	}
	firstChar := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != firstChar {
			return false
		}
	}
	return true
}

// IsValidQuery checks if an autocomplete prefix is worth processing.
// Returns false for empty input, pure numbers, special characters and
// repeated-character noise.
func IsValidQuery(s string) bool {
	if len(s) == 0 {
		return false
	}
	if IsOnlyNumbers(s) {
		return false
	}
	if ContainsSpecialChars(s) {
		return false
	}
	if IsRepetitive(s) {
		return false
	}
	return true
}
