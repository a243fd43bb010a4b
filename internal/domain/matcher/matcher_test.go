package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

var baseDate = time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)

// Helper to create a statement line
func makeSource(amount, desc string, dayOffset int) *transaction.BankTransaction {
	return transaction.NewBankTransaction(baseDate.AddDate(0, 0, dayOffset), decimal.RequireFromString(amount), desc, transaction.TypeDebit)
}

// Helper to create a ledger entry
func makeTarget(amount, desc string, dayOffset int) *transaction.LedgerEntry {
	return transaction.NewLedgerEntry(baseDate.AddDate(0, 0, dayOffset), decimal.RequireFromString(amount), desc)
}

func targets(entries ...*transaction.LedgerEntry) []transaction.Target {
	out := make([]transaction.Target, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out
}

func TestMatcher_Evaluate(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultConfig())
	src := makeSource("10.00", "TESCO STORE 123", 0)
	tgt := makeTarget("10.00", "Tesco", 2)

	// Act
	c := m.Evaluate(src, tgt)

	// Assert
	assert.False(t, c.FullTextMatch)
	assert.True(t, c.PartialTextMatch)
	assert.True(t, c.AmountExactMatch)
	assert.Equal(t, 0.0, c.Ranking.AmountScore)
	assert.Equal(t, 2.0, c.Ranking.DateScore)
	assert.Equal(t, 0.0, c.Ranking.CombinedScore)
	assert.Same(t, tgt, c.Target())
}

func TestMatcher_Loose_FiltersOnTextOrAmount(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultConfig())
	src := makeSource("-42.00", "GREGGS", 0)
	textOnly := makeTarget("-100.00", "Greggs lunch", 0)
	amountClose := makeTarget("-45.00", "Something else", 0)
	neither := makeTarget("-400.00", "Rent", 0)

	// Act
	got := m.Loose(src, targets(neither, amountClose, textOnly))

	// Assert
	require.Len(t, got, 2)
	assert.Same(t, textOnly, got[0].Target(), "text match outranks amount-only")
	assert.Same(t, amountClose, got[1].Target())
}

func TestMatcher_Loose_AmountThresholdIsInclusive(t *testing.T) {
	m := NewMatcher(Config{PartialAmountThreshold: 5, PartialDateMatchThreshold: 5})
	src := makeSource("-10.00", "X", 0)
	edge := makeTarget("-15.00", "Y", 0)
	over := makeTarget("-15.01", "Z", 0)

	got := m.Loose(src, targets(edge, over))

	require.Len(t, got, 1)
	assert.Same(t, edge, got[0].Target())
}

func TestMatcher_Loose_PriorityCascade(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultConfig())
	src := makeSource("-20.00", "CAFE NERO", 0)
	partialNear := makeTarget("-20.00", "Nero coffee", 0)  // exact, partial, day 0
	fullFar := makeTarget("-20.00", "CAFE NERO LONDON", 9) // exact, full, day 9
	inexactFull := makeTarget("-21.00", "Cafe Nero", 0)    // inexact, full
	exactNoText := makeTarget("-20.00", "Parking", 1)      // exact, no text
	exactNoTextNear := makeTarget("-20.00", "Parking", 0)  // exact, no text, nearer

	// Act
	got := m.Loose(src, targets(exactNoText, inexactFull, partialNear, exactNoTextNear, fullFar))

	// Assert
	require.Len(t, got, 5)
	assert.Same(t, fullFar, got[0].Target())
	assert.Same(t, partialNear, got[1].Target())
	assert.Same(t, exactNoTextNear, got[2].Target())
	assert.Same(t, exactNoText, got[3].Target())
	assert.Same(t, inexactFull, got[4].Target())
}

func TestSortLoose_EarlierKeysDominate(t *testing.T) {
	first := Candidate{AmountExactMatch: true, FullTextMatch: true, PartialTextMatch: false, Ranking: NewRanking(0, 1)}
	second := Candidate{AmountExactMatch: false, FullTextMatch: false, PartialTextMatch: true, Ranking: NewRanking(0, 0)}

	for _, input := range [][]Candidate{{first, second}, {second, first}} {
		SortLoose(input)
		assert.Equal(t, first, input[0])
		assert.Equal(t, second, input[1])
	}
}

func TestSortLoose_StableOnEqualKeys(t *testing.T) {
	a := Candidate{Targets: targets(makeTarget("1", "a", 0)), AmountExactMatch: true}
	b := Candidate{Targets: targets(makeTarget("1", "b", 0)), AmountExactMatch: true}

	list := []Candidate{a, b}
	SortLoose(list)

	assert.Same(t, a.Target(), list[0].Target())
	assert.Same(t, b.Target(), list[1].Target())
}

func TestMatcher_Exhaustive_ReturnsEveryTargetByCombinedScore(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultConfig())
	src := makeSource("-50.00", "ELECTRIC", 0)
	far := makeTarget("-900.00", "Rent", 30)     // combined 30
	sameDay := makeTarget("-5.00", "Sweets", 0)  // combined 0
	near := makeTarget("-52.00", "Energy", 10)   // combined 2
	tied := makeTarget("-1000.00", "Holiday", 0) // combined 0, after sameDay

	// Act
	got := m.Exhaustive(src, targets(far, sameDay, near, tied))

	// Assert
	require.Len(t, got, 4)
	assert.Same(t, sameDay, got[0].Target())
	assert.Same(t, tied, got[1].Target())
	assert.Same(t, near, got[2].Target())
	assert.Same(t, far, got[3].Target())
}

func TestMatcher_Exhaustive_EmptyPool(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	got := m.Exhaustive(makeSource("1", "x", 0), nil)
	assert.Empty(t, got)
}

func TestMatcher_AutoMatch_UniqueSurvivor(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultConfig())
	src := makeSource("10.00", "TESCO STORE 123", 0)
	tesco := makeTarget("10.00", "Tesco", 1)
	other := makeTarget("10.00", "Boots", 0)

	// Act
	c, ok := m.AutoMatch(src, targets(other, tesco))

	// Assert
	require.True(t, ok)
	assert.Same(t, tesco, c.Target())
}

func TestMatcher_AutoMatch_RequiresExactAmountAndDate(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	src := makeSource("10.00", "TESCO", 0)

	_, ok := m.AutoMatch(src, targets(makeTarget("10.01", "Tesco", 0)))
	assert.False(t, ok, "amount must be exact")

	_, ok = m.AutoMatch(src, targets(makeTarget("10.00", "Tesco", 6)))
	assert.False(t, ok, "date beyond threshold")

	_, ok = m.AutoMatch(src, targets(makeTarget("10.00", "Tesco", 5)))
	assert.True(t, ok, "date threshold is inclusive")

	_, ok = m.AutoMatch(src, targets(makeTarget("10.00", "Boots", 0)))
	assert.False(t, ok, "text must match")
}

func TestMatcher_AutoMatch_AmbiguousIsNoMatch(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	src := makeSource("10.00", "TESCO", 0)

	_, ok := m.AutoMatch(src, targets(makeTarget("10.00", "Tesco", 0), makeTarget("10.00", "Tesco Metro", 1)))
	assert.False(t, ok)

	_, ok = m.AutoMatch(src, nil)
	assert.False(t, ok)
}
