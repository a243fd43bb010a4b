// Package categorizer suggests ledger categories for new entries by
// remembering how similar memos were categorized before.
package categorizer

import (
	"strings"
	"unicode"

	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// DefaultMinSimilarity is the lowest description similarity accepted for
// a fuzzy category suggestion
const DefaultMinSimilarity = 0.8

// Cache interface for memo to category mappings
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string)
	Keys() []string
}

// Categorizer learns categories from an existing ledger and suggests them
// for new entries
type Categorizer struct {
	cache         Cache
	minSimilarity float64
}

var _ transaction.CategoryGuesser = (*Categorizer)(nil)

// NewCategorizer creates a categorizer backed by cache. A nil cache gets
// an in-memory one.
func NewCategorizer(cache Cache) *Categorizer {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Categorizer{cache: cache, minSimilarity: DefaultMinSimilarity}
}

// WithMinSimilarity sets the fuzzy match threshold; 1 accepts only memos
// that differ in case or punctuation
func (c *Categorizer) WithMinSimilarity(threshold float64) *Categorizer {
	c.minSimilarity = threshold
	return c
}

// Learn records the category of every categorized entry. Later entries
// override earlier ones with the same memo.
func (c *Categorizer) Learn(targets []transaction.Target) int {
	learned := 0
	for _, t := range targets {
		e := transaction.LedgerEntryFrom(t)
		key := normalizeKey(e.Memo)
		if e.Category == "" || key == "" {
			continue
		}
		c.cache.Set(key, e.Category)
		learned++
	}
	return learned
}

// Category returns the category learned for description, trying an exact
// memo match before the most similar known memo.
func (c *Categorizer) Category(description string) (string, bool) {
	key := normalizeKey(description)
	if key == "" {
		return "", false
	}
	if category, ok := c.cache.Get(key); ok {
		return category, true
	}

	best, bestScore := "", 0.0
	for _, k := range c.cache.Keys() {
		if score := matcher.DescriptionSimilarity(key, k); score > bestScore {
			best, bestScore = k, score
		}
	}
	if best == "" || bestScore < c.minSimilarity {
		return "", false
	}
	return c.cache.Get(best)
}

// normalizeKey lowercases a memo and drops tokens made only of digits, so
// card numbers and references do not split otherwise identical payees
func normalizeKey(memo string) string {
	var kept []string
	for _, tok := range strings.Fields(strings.ToLower(memo)) {
		if strings.IndexFunc(tok, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
