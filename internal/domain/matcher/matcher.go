// Package matcher proposes pairings between statement (source) records and
// ledger (target) records.
//
// Three generators are provided, one per reconciliation phase:
//   - Loose: text match or amount within PartialAmountThreshold, ordered by a
//     strict priority cascade (semi-automatic phase)
//   - Exhaustive: every unmatched target, ordered by combined score (manual phase)
//   - AutoMatch: the single candidate passing the strict test, if exactly one
//     does (automatic phase)
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig())
//	candidates := m.Loose(source, unmatchedTargets)
//	if c, ok := m.AutoMatch(source, unmatchedTargets); ok {
//		// exactly one strict survivor
//	}
package matcher

import (
	"sort"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// Matcher builds and orders candidate sets
type Matcher struct {
	config Config
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config) *Matcher {
	return &Matcher{
		config: config,
	}
}

// Config returns the matcher configuration
func (m *Matcher) Config() Config {
	return m.config
}

// Evaluate scores a single source/target pair
func (m *Matcher) Evaluate(source transaction.Source, target transaction.Target) Candidate {
	text := NormalizedTextMatch(source.Description(), target.Description())
	amountScore := AmountProximity(source.MainAmount(), target.MainAmount())
	dateScore := DateProximity(source.Date(), target.Date())

	return Candidate{
		Targets:          []transaction.Target{target},
		FullTextMatch:    text.Full,
		PartialTextMatch: text.Partial,
		AmountExactMatch: amountScore == 0,
		Ranking:          NewRanking(amountScore, dateScore),
		Similarity:       DescriptionSimilarity(source.Description(), target.Description()),
	}
}

// pool scores every target in order, unfiltered
func (m *Matcher) pool(source transaction.Source, targets []transaction.Target) []Candidate {
	candidates := make([]Candidate, 0, len(targets))
	for _, target := range targets {
		candidates = append(candidates, m.Evaluate(source, target))
	}
	return candidates
}

// Loose returns the plausible candidates for source in presentation order.
// A target is kept when either text heuristic fires or its amount is within
// PartialAmountThreshold.
func (m *Matcher) Loose(source transaction.Source, targets []transaction.Target) []Candidate {
	var kept []Candidate
	for _, c := range m.pool(source, targets) {
		if c.TextMatches() || c.Ranking.AmountScore <= m.config.PartialAmountThreshold {
			kept = append(kept, c)
		}
	}
	SortLoose(kept)
	return kept
}

// Exhaustive returns one candidate per target ordered by combined score
func (m *Matcher) Exhaustive(source transaction.Source, targets []transaction.Target) []Candidate {
	candidates := m.pool(source, targets)
	SortExhaustive(candidates)
	return candidates
}

// AutoEligible returns the candidates passing the strict automatic test:
// a text match, an exact amount and a date within PartialDateMatchThreshold
func (m *Matcher) AutoEligible(source transaction.Source, targets []transaction.Target) []Candidate {
	var survivors []Candidate
	for _, c := range m.pool(source, targets) {
		if !c.TextMatches() {
			continue
		}
		if c.Ranking.AmountScore != 0 {
			continue
		}
		if c.Ranking.DateScore > m.config.PartialDateMatchThreshold {
			continue
		}
		survivors = append(survivors, c)
	}
	return survivors
}

// AutoMatch returns the strict candidate for source only when it is unique
func (m *Matcher) AutoMatch(source transaction.Source, targets []transaction.Target) (Candidate, bool) {
	survivors := m.AutoEligible(source, targets)
	if len(survivors) != 1 {
		return Candidate{}, false
	}
	return survivors[0], true
}

// SortLoose orders candidates by the loose priority cascade. Earlier keys
// always dominate later ones.
func SortLoose(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return looseLess(candidates[i], candidates[j])
	})
}

// SortExhaustive orders candidates by combined score, keeping input order on ties
func SortExhaustive(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Ranking.CombinedScore < candidates[j].Ranking.CombinedScore
	})
}

func looseLess(a, b Candidate) bool {
	if a.AmountExactMatch != b.AmountExactMatch {
		return a.AmountExactMatch
	}
	if a.FullTextMatch != b.FullTextMatch {
		return a.FullTextMatch
	}
	if a.PartialTextMatch != b.PartialTextMatch {
		return a.PartialTextMatch
	}
	if a.Ranking.DateScore != b.Ranking.DateScore {
		return a.Ranking.DateScore < b.Ranking.DateScore
	}
	return a.Ranking.AmountScore < b.Ranking.AmountScore
}
