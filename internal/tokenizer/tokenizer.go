// Package tokenizer turns plain text into the normalized token stream shared
// by the crawl pipeline's indexing step and the query evaluator, so that the
// same text produces the same tokens whichever caller processes it.
package tokenizer

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const maxTokenLength = 64

var caseFolder = cases.Fold()

// Tokenizer produces per-document word-frequency maps from plain text.
type Tokenizer struct{}

// New returns a ready-to-use Tokenizer. Tokenizer holds no state; the zero
// value works too, but New matches the constructor idiom used throughout the
// rest of the crawl pipeline.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Index tokenizes text and accumulates accepted tokens into a frequency map.
func (t *Tokenizer) Index(text string) map[string]int {
	freq := make(map[string]int)
	for _, tok := range t.Tokenize(text) {
		freq[tok]++
	}
	return freq
}

// Tokenize depunctuates, splits, normalizes, and filters text into the
// ordered list of accepted tokens (duplicates kept, in original order).
func (t *Tokenizer) Tokenize(text string) []string {
	depunctuated := depunctuate(text)
	fields := strings.Fields(depunctuated)

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		normalized := Normalize(f)
		if Accept(normalized) {
			tokens = append(tokens, normalized)
		}
	}
	return tokens
}

// depunctuate replaces every byte that is not an ASCII letter, ASCII digit,
// whitespace, or high-bit byte with a space.
func depunctuate(text string) string {
	b := []byte(text)
	out := make([]byte, len(b))
	for i, c := range b {
		switch {
		case c >= 0x80:
			out[i] = c
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out[i] = c
		case c == ' ', c == '\t', c == '\n', c == '\r', c == '\v', c == '\f':
			out[i] = c
		default:
			out[i] = ' '
		}
	}
	return string(out)
}

// Normalize applies Unicode NFD decomposition followed by case folding,
// falling back to plain ASCII lowercasing for input that is not valid UTF-8
// (the practical failure mode inherited from the source system's exception
// fallback).
func Normalize(token string) string {
	if !utf8.ValidString(token) {
		b := []byte(token)
		for i, c := range b {
			if c >= 'A' && c <= 'Z' {
				b[i] = c + ('a' - 'A')
			}
		}
		return string(b)
	}
	decomposed := norm.NFD.String(token)
	return caseFolder.String(decomposed)
}

// Accept reports whether a normalized token should be indexed or matched: it
// must be non-empty, at most 64 bytes, and contain only ASCII letters or
// bytes with the high bit set. This rejects pure-digit and mixed
// alphanumeric tokens, matching the source system's coarse ASCII-vs-Unicode
// split. The length bound is deliberately a byte count, not a rune count:
// the accept predicate itself only ever classifies individual bytes (ASCII
// letter or high-bit), mirroring the original's std::string::size(), so a
// multibyte token is bounded the same way the system it replaces bounds it.
func Accept(token string) bool {
	if token == "" || len(token) > maxTokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		isASCIILetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isHighBit := c >= 0x80
		if !isASCIILetter && !isHighBit {
			return false
		}
	}
	return true
}
