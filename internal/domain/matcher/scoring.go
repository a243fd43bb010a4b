package matcher

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// Tokens that never count towards a partial text match
var stopWords = map[string]bool{
	"AND":  true,
	"THE":  true,
	"OR":   true,
	"WITH": true,
}

// TextMatch is the result of comparing two descriptions
type TextMatch struct {
	Full    bool
	Partial bool
}

// NormalizedTextMatch compares a source description against a target one.
//
// The comparison is asymmetric: it asks whether the target looks like a
// superset of the source. Full is set when the normalized target equals or
// contains the normalized source. Partial is set when any significant source
// token equals, or is a prefix of, any target token.
func NormalizedTextMatch(source, target string) TextMatch {
	var result TextMatch

	src := stripPunctuation(source)
	tgt := stripPunctuation(target)
	if src != "" && strings.Contains(tgt, src) {
		result.Full = true
	}

	targetTokens := tokenize(target)
	for _, st := range tokenize(source) {
		for _, tt := range targetTokens {
			if strings.HasPrefix(tt, st) {
				result.Partial = true
				return result
			}
		}
	}

	return result
}

// AmountProximity returns the absolute difference between two amounts.
// 0 is the only exact value.
func AmountProximity(a, b decimal.Decimal) float64 {
	return a.Sub(b).Abs().InexactFloat64()
}

// DateProximity returns the number of whole calendar days between two dates
func DateProximity(a, b time.Time) float64 {
	diff := transaction.DateOnly(a).Unix() - transaction.DateOnly(b).Unix()
	return math.Abs(float64(diff / secondsPerDay))
}

const secondsPerDay = 24 * 60 * 60

// DescriptionSimilarity returns 1 minus the normalized edit distance between
// two descriptions. It is shown to the user and never used for ranking.
func DescriptionSimilarity(a, b string) float64 {
	na, nb := stripPunctuation(a), stripPunctuation(b)
	maxLen := max(len(na), len(nb))
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(dist)/float64(maxLen)
}

// stripPunctuation removes punctuation, uppercases and collapses whitespace
func stripPunctuation(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isPunctuation(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenize replaces punctuation with spaces and returns the significant tokens
func tokenize(s string) []string {
	mapped := strings.Map(func(r rune) rune {
		if isPunctuation(r) {
			return ' '
		}
		return unicode.ToUpper(r)
	}, s)

	var tokens []string
	for _, tok := range strings.Fields(mapped) {
		if len([]rune(tok)) <= 1 || stopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isPunctuation(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
