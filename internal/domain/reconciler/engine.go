// Package reconciler holds the matching engine: the cursor over source
// records, the live candidate set, and the match table pairing source and
// target records.
//
// The engine is single-threaded and performs no I/O apart from handing the
// finished ledger to a Sink. It is driven phase by phase:
//
//	e := reconciler.NewEngine(cfg, sources, targets)
//	autos, _ := e.RunAutomaticPass()
//	for found, _ := e.AdvanceSemiAutomatic(); found; found, _ = e.AdvanceSemiAutomatic() {
//		// present e.Current(), then ConfirmMatch / DeleteCandidateAt / skip
//	}
//	e.BeginReview()
//	_, err := e.FinalizeReconciliation(ctx, sink)
package reconciler

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// Phase is the workflow phase the engine is in
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAutomatic
	PhaseSemiAutomatic
	PhaseReview
	PhaseManual
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAutomatic:
		return "automatic"
	case PhaseSemiAutomatic:
		return "semi-automatic"
	case PhaseReview:
		return "review"
	case PhaseManual:
		return "manual"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Sink persists the finished ledger
type Sink interface {
	Write(ctx context.Context, targets []transaction.Target) error
}

// CandidateSet is the source record under review and its ordered candidates
type CandidateSet struct {
	Source     transaction.Source
	Candidates []matcher.Candidate
}

// CandidateView pairs a candidate with its display index
type CandidateView struct {
	Index     int
	Candidate matcher.Candidate
}

// Len returns the number of candidates
func (s *CandidateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Candidates)
}

// Views numbers the candidates from zero in their current order.
// The numbers are only valid until the set next changes.
func (s *CandidateSet) Views() []CandidateView {
	if s == nil {
		return nil
	}
	views := make([]CandidateView, len(s.Candidates))
	for i, c := range s.Candidates {
		views[i] = CandidateView{Index: i, Candidate: c}
	}
	return views
}

// AutoMatch is a pairing accepted during the automatic pass.
// Index is stable; undoing the match clears Candidate but keeps the entry.
type AutoMatch struct {
	Index     int
	Source    transaction.Source
	Candidate *matcher.Candidate
}

// Undone reports whether the match has been reversed
func (a AutoMatch) Undone() bool { return a.Candidate == nil }

// FinalMatch is a pairing confirmed by the user in the semi-automatic or
// manual phase. Index is stable; undoing the match clears Target.
type FinalMatch struct {
	Index               int
	Phase               Phase
	Source              transaction.Source
	Target              transaction.Target
	Normalized          bool
	OriginalAmount      decimal.Decimal
	OriginalDescription string
}

// Undone reports whether the match has been reversed
func (f FinalMatch) Undone() bool { return f.Target == nil }

// Config holds engine configuration
type Config struct {
	Matcher matcher.Config
	Factory transaction.TargetFactory // Default: transaction.LedgerFactory
	Logger  *slog.Logger              // Default: discard
}

// Engine owns the reconciliation state
type Engine struct {
	matcher *matcher.Matcher
	factory transaction.TargetFactory
	logger  *slog.Logger

	sources    []transaction.Source
	targets    []transaction.Target
	sourceByID map[string]transaction.Source
	targetByID map[string]transaction.Target
	matches    *matchTable

	phase        Phase
	cursor       int
	current      *CandidateSet
	autoMatches  []AutoMatch
	finalMatches []FinalMatch
}

// NewEngine creates an engine over the given collections.
// The engine takes ownership of both slices.
func NewEngine(cfg Config, sources []transaction.Source, targets []transaction.Target) *Engine {
	if cfg.Factory == nil {
		cfg.Factory = transaction.LedgerFactory{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		matcher:    matcher.NewMatcher(cfg.Matcher),
		factory:    cfg.Factory,
		logger:     cfg.Logger,
		sources:    sources,
		targets:    targets,
		sourceByID: make(map[string]transaction.Source, len(sources)),
		targetByID: make(map[string]transaction.Target, len(targets)),
		matches:    newMatchTable(),
		phase:      PhaseIdle,
		cursor:     -1,
	}
	for _, s := range sources {
		e.sourceByID[s.ID()] = s
	}
	for _, t := range targets {
		e.targetByID[t.ID()] = t
	}
	return e
}

// Phase returns the current workflow phase
func (e *Engine) Phase() Phase { return e.phase }

// Cursor returns the position of the source record under review (-1 before start)
func (e *Engine) Cursor() int { return e.cursor }

// Current returns the live candidate set, or nil
func (e *Engine) Current() *CandidateSet { return e.current }

// Sources returns the source records in order
func (e *Engine) Sources() []transaction.Source {
	return append([]transaction.Source(nil), e.sources...)
}

// Targets returns the target records in order
func (e *Engine) Targets() []transaction.Target {
	return append([]transaction.Target(nil), e.targets...)
}

// AutoMatches returns the automatic-pass results, including undone entries
func (e *Engine) AutoMatches() []AutoMatch {
	return append([]AutoMatch(nil), e.autoMatches...)
}

// FinalMatches returns the user-confirmed matches, including undone entries
func (e *Engine) FinalMatches() []FinalMatch {
	return append([]FinalMatch(nil), e.finalMatches...)
}

// Matched reports whether rec currently has a partner
func (e *Engine) Matched(rec transaction.Record) bool {
	return e.MatchOf(rec) != nil
}

// MatchOf returns the partner of rec, or nil
func (e *Engine) MatchOf(rec transaction.Record) transaction.Record {
	if rec == nil {
		return nil
	}
	id := rec.ID()
	if _, ok := e.sourceByID[id]; ok {
		if targetID, ok := e.matches.targetOf(id); ok {
			if t, ok := e.targetByID[targetID]; ok {
				return t
			}
		}
		return nil
	}
	if _, ok := e.targetByID[id]; ok {
		if sourceID, ok := e.matches.sourceOf(id); ok {
			if s, ok := e.sourceByID[sourceID]; ok {
				return s
			}
		}
	}
	return nil
}

// Rewind moves the cursor back before the first source record without
// touching any match
func (e *Engine) Rewind() {
	e.cursor = -1
	e.current = nil
}

// BeginReview enters the final review phase
func (e *Engine) BeginReview() error {
	if e.phase == PhaseFinished {
		return ErrFinished
	}
	e.phase = PhaseReview
	e.current = nil
	return nil
}

// unmatchedTargets returns the target pool in order
func (e *Engine) unmatchedTargets() []transaction.Target {
	pool := make([]transaction.Target, 0, len(e.targets))
	for _, t := range e.targets {
		if _, ok := e.matches.sourceOf(t.ID()); !ok {
			pool = append(pool, t)
		}
	}
	return pool
}

func (e *Engine) sourceMatched(s transaction.Source) bool {
	_, ok := e.matches.targetOf(s.ID())
	return ok
}

func (e *Engine) targetMatched(t transaction.Target) bool {
	_, ok := e.matches.sourceOf(t.ID())
	return ok
}
