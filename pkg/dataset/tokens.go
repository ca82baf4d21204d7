package dataset

import "strings"

// DefaultSeparator is the delimiter between ingredients inside the
// serialized ingredient field.
const DefaultSeparator = ";"

// SplitTokens splits a raw ingredient field on sep and normalizes every
// piece: lowercased, whitespace trimmed, empty tokens dropped.
// The same normalization is applied everywhere a field is tokenized, so
// the trie, the scorer and the query path always agree on casing.
func SplitTokens(raw, sep string) []string {
	if raw == "" {
		return nil
	}
	if sep == "" {
		sep = DefaultSeparator
	}
	parts := strings.Split(raw, sep)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// NormalizeTerm applies the token normalization to a single user supplied
// term (a like/dislike entry or a search prefix).
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
