package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// FinalizeResult summarises a finalized reconciliation
type FinalizeResult struct {
	Added      int // ledger entries synthesized from unmatched source records
	Reconciled int // matched ledger entries marked reconciled
	Written    int // ledger entries handed to the sink
}

// TallyReport is an integrity check over the match table. Warnings never
// block finalization.
type TallyReport struct {
	SourceTotal   int
	TargetTotal   int
	SourceMatched int
	TargetMatched int
	Warnings      []string
}

// OK reports whether the tally found nothing to warn about
func (r TallyReport) OK() bool { return len(r.Warnings) == 0 }

// Tally counts matched records on both sides and reports inconsistencies
func (e *Engine) Tally() TallyReport {
	r := TallyReport{
		SourceTotal: len(e.sources),
		TargetTotal: len(e.targets),
	}
	for _, s := range e.sources {
		if e.MatchOf(s) != nil {
			r.SourceMatched++
		}
	}
	for _, t := range e.targets {
		if e.MatchOf(t) != nil {
			r.TargetMatched++
		}
	}

	if r.SourceMatched != r.TargetMatched {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"matched counts differ: %d source records, %d ledger entries", r.SourceMatched, r.TargetMatched))
	}
	if r.SourceMatched > r.TargetTotal {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"%d matched source records but only %d ledger entries", r.SourceMatched, r.TargetTotal))
	}
	if r.TargetMatched > r.SourceTotal {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"%d matched ledger entries but only %d source records", r.TargetMatched, r.SourceTotal))
	}
	if dangling := e.matches.len() - r.SourceMatched; dangling > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d matches refer to deleted records", dangling))
	}
	return r
}

// FinalizeReconciliation adds a ledger entry for every unmatched source
// record, marks matched ledger entries reconciled and writes the ledger to
// sink. On a sink failure the synthesized entries are withdrawn and the
// entries it reconciled go back to pending, so the call can be retried.
func (e *Engine) FinalizeReconciliation(ctx context.Context, sink Sink) (FinalizeResult, error) {
	if e.phase == PhaseFinished {
		return FinalizeResult{}, ErrFinished
	}
	if sink == nil {
		return FinalizeResult{}, errors.New("finalize: no sink configured")
	}

	var result FinalizeResult
	originalLen := len(e.targets)

	for _, src := range e.sources {
		if e.sourceMatched(src) {
			continue
		}
		t := e.factory.CreateFromMatch(
			src.Date(),
			src.MainAmount(),
			src.TransactionType(),
			src.Description(),
			transaction.UnmatchedFromThirdParty,
			src,
		)
		e.targets = append(e.targets, t)
		e.targetByID[t.ID()] = t
		result.Added++
	}

	var newlyReconciled []transaction.Target
	for _, t := range e.targets {
		if e.targetMatched(t) {
			if !t.IsReconciled() {
				newlyReconciled = append(newlyReconciled, t)
			}
			t.Reconcile()
			result.Reconciled++
		}
	}

	if err := sink.Write(ctx, e.Targets()); err != nil {
		for _, t := range newlyReconciled {
			t.Unreconcile()
		}
		for _, t := range e.targets[originalLen:] {
			delete(e.targetByID, t.ID())
		}
		e.targets = e.targets[:originalLen]
		return FinalizeResult{}, fmt.Errorf("finalize: failed to write ledger: %w", err)
	}

	result.Written = len(e.targets)
	e.phase = PhaseFinished
	e.current = nil

	e.logger.Debug("reconciliation finalized",
		slog.Int("added", result.Added),
		slog.Int("reconciled", result.Reconciled),
		slog.Int("written", result.Written),
	)
	return result, nil
}
