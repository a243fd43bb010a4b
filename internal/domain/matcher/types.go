package matcher

import (
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// Config holds matcher configuration
type Config struct {
	PartialAmountThreshold    float64 // Loose generation keeps targets within this amount distance (default: 5.00)
	PartialDateMatchThreshold float64 // Days tolerance for automatic matching (default: 5)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		PartialAmountThreshold:    5.00,
		PartialDateMatchThreshold: 5,
	}
}

// Ranking holds proximity scores for a source/target pair. 0 means exact.
type Ranking struct {
	AmountScore   float64
	DateScore     float64
	CombinedScore float64 // min(AmountScore, DateScore)
}

// NewRanking computes the combined score from the amount and date scores
func NewRanking(amountScore, dateScore float64) Ranking {
	return Ranking{
		AmountScore:   amountScore,
		DateScore:     dateScore,
		CombinedScore: min(amountScore, dateScore),
	}
}

// Candidate is one proposed pairing for a source record.
// It has no index of its own: display numbers come from list position.
type Candidate struct {
	Targets          []transaction.Target
	FullTextMatch    bool
	PartialTextMatch bool
	AmountExactMatch bool
	Ranking          Ranking
	Similarity       float64 // Presentation hint only, 0-1
}

// Target returns the primary target record of the candidate
func (c *Candidate) Target() transaction.Target {
	if c == nil || len(c.Targets) == 0 {
		return nil
	}
	return c.Targets[0]
}

// TextMatches reports whether either text heuristic fired
func (c *Candidate) TextMatches() bool {
	return c.FullTextMatch || c.PartialTextMatch
}
