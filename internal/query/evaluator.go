// Package query implements the single operation the presentation layer
// consumes: turning a raw query string into a bounded, deduplicated token
// list and delegating ranking to the store.
package query

import (
	"context"

	"github.com/ogsearch/ogsearch/internal/store"
	"github.com/ogsearch/ogsearch/internal/tokenizer"
)

// maxQueryTokens is the hard upper bound on tokens considered per query — a
// deliberate product constraint, not a technical one.
const maxQueryTokens = 4

const defaultK = 10

// Evaluator answers conjunctive multi-word search requests by tokenizing
// the query the same way the crawler tokenizes document content, so index
// and query tokens are always comparable.
type Evaluator struct {
	tok *tokenizer.Tokenizer
	db  *store.Store
}

// New returns an Evaluator backed by db.
func New(db *store.Store) *Evaluator {
	return &Evaluator{tok: tokenizer.New(), db: db}
}

// Search tokenizes queryString with the same splitter, normalizer, and
// accept predicate the tokenizer uses for indexing, deduplicates tokens
// preserving first-occurrence order, truncates to the first 4, and
// delegates to the store's conjunctive top-k ranking. k<=0 uses the
// default of 10.
func (e *Evaluator) Search(ctx context.Context, queryString string, k int) ([]store.SearchResult, error) {
	return e.search(ctx, queryString, k, false)
}

// SearchWithStemming behaves like Search, but if the exact-token query
// yields no results it retries once against the distinct Snowball stems of
// tokens that actually stem differently (tokenizer.StemAliases), widening
// e.g. "running" to match documents indexed under "run". Default search
// (Search) never takes this path; it exists purely for the opt-in
// "?stem=1" surface, since stemming is a Non-goal of the default
// conjunctive search contract.
func (e *Evaluator) SearchWithStemming(ctx context.Context, queryString string, k int) ([]store.SearchResult, error) {
	return e.search(ctx, queryString, k, true)
}

func (e *Evaluator) search(ctx context.Context, queryString string, k int, widenWithStems bool) ([]store.SearchResult, error) {
	if k <= 0 {
		k = defaultK
	}

	tokens := dedupe(e.tok.Tokenize(queryString))
	if len(tokens) == 0 {
		return nil, nil
	}

	if len(tokens) > maxQueryTokens {
		tokens = tokens[:maxQueryTokens]
	}

	results, err := e.db.SearchConjunctiveTopK(ctx, tokens, k)
	if err != nil || !widenWithStems || len(results) > 0 {
		return results, err
	}

	aliases := tokenizer.StemAliases(tokens)
	if len(aliases) == 0 {
		return results, err
	}
	return e.db.SearchConjunctiveTopK(ctx, aliases, k)
}

// dedupe removes repeats, preserving the order of first occurrence.
func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
