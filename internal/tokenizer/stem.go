package tokenizer

import "github.com/kljensen/snowball"

// Stem returns the Snowball English stem of an already-normalized token, or
// the token unchanged if stemming fails. This backs the opt-in
// "?stem=1" query-widening feature (see SPEC_FULL.md); the base tokenizer
// used for indexing and default search never calls it, since stemming is an
// explicit Non-goal of the default conjunctive search path.
func Stem(token string) string {
	stemmed, err := snowball.Stem(token, "english", true)
	if err != nil {
		return token
	}
	return stemmed
}

// StemAliases returns the distinct stems of the tokens whose stem differs
// from the token itself, for widening a query with related terms without
// changing the tokens that were actually indexed. Tokens that are already
// their own stem contribute nothing to the result.
func StemAliases(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	aliases := make([]string, 0, len(tokens))
	for _, t := range tokens {
		s := Stem(t)
		if s == t || seen[s] {
			continue
		}
		seen[s] = true
		aliases = append(aliases, s)
	}
	return aliases
}
