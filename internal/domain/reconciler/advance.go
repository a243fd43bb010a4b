package reconciler

import (
	"fmt"
	"log/slog"

	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

type generator func(transaction.Source, []transaction.Target) []matcher.Candidate

// AdvanceSemiAutomatic moves to the next unmatched source record that has at
// least one loose candidate. It returns false once the end is reached.
func (e *Engine) AdvanceSemiAutomatic() (bool, error) {
	if e.phase == PhaseFinished {
		return false, ErrFinished
	}
	e.phase = PhaseSemiAutomatic
	return e.advance(e.matcher.Loose), nil
}

// AdvanceManual moves to the next unmatched source record, offering every
// unmatched target. It returns false once the end is reached or no
// unmatched target is left.
func (e *Engine) AdvanceManual() (bool, error) {
	if e.phase == PhaseFinished {
		return false, ErrFinished
	}
	e.phase = PhaseManual
	return e.advance(e.matcher.Exhaustive), nil
}

func (e *Engine) advance(generate generator) bool {
	e.current = nil

	for e.cursor+1 < len(e.sources) {
		e.cursor++
		src := e.sources[e.cursor]
		if e.sourceMatched(src) {
			continue
		}

		candidates := generate(src, e.unmatchedTargets())
		if len(candidates) == 0 {
			continue
		}

		e.current = &CandidateSet{Source: src, Candidates: candidates}
		e.logger.Debug("reviewing source record",
			slog.Int("cursor", e.cursor),
			slog.String("phase", e.phase.String()),
			slog.Int("candidates", len(candidates)),
		)
		return true
	}

	e.cursor = len(e.sources)
	return false
}

// ConfirmMatch pairs the source under review with the candidate at index.
// When the amounts differ the target takes the source amount and its
// description records the amount it had before.
func (e *Engine) ConfirmMatch(index int) (FinalMatch, error) {
	if e.phase == PhaseFinished {
		return FinalMatch{}, ErrFinished
	}
	if e.current == nil {
		return FinalMatch{}, ErrNoActiveSession
	}
	if index < 0 || index >= len(e.current.Candidates) {
		return FinalMatch{}, indexError("match number", index, len(e.current.Candidates))
	}

	src := e.current.Source
	target := e.current.Candidates[index].Target()

	fm := FinalMatch{
		Index:               len(e.finalMatches),
		Phase:               e.phase,
		Source:              src,
		Target:              target,
		OriginalAmount:      target.MainAmount(),
		OriginalDescription: target.Description(),
	}

	e.matches.link(src.ID(), target.ID())

	if !src.MainAmount().Equal(target.MainAmount()) {
		target.SetMainAmount(src.MainAmount())
		target.SetDescription(amountNote(fm.OriginalDescription, fm.OriginalAmount.StringFixed(2)))
		fm.Normalized = true
	}

	e.finalMatches = append(e.finalMatches, fm)
	e.current = nil

	e.logger.Debug("match confirmed",
		slog.String("source", src.Description()),
		slog.String("target", target.Description()),
		slog.Bool("normalized", fm.Normalized),
	)
	return fm, nil
}

// UndoFinalMatch reverses a confirmed match, restoring the target's amount
// and description if they were normalized
func (e *Engine) UndoFinalMatch(index int) error {
	return e.UndoFinalMatches([]int{index})
}

// UndoFinalMatches reverses several confirmed matches. Nothing is changed if
// any index is out of range.
func (e *Engine) UndoFinalMatches(indices []int) error {
	if e.phase == PhaseFinished {
		return ErrFinished
	}
	for _, i := range indices {
		if i < 0 || i >= len(e.finalMatches) {
			return indexError("final match", i, len(e.finalMatches))
		}
	}

	for _, i := range indices {
		e.dropFinalMatch(i)
	}
	return nil
}

// dropFinalMatch unlinks the pair, restores normalization and tombstones the entry
func (e *Engine) dropFinalMatch(i int) {
	fm := &e.finalMatches[i]
	if fm.Undone() {
		return
	}
	if targetID, ok := e.matches.targetOf(fm.Source.ID()); ok && targetID == fm.Target.ID() {
		e.matches.unlinkSource(fm.Source.ID())
	}
	if fm.Normalized {
		fm.Target.SetMainAmount(fm.OriginalAmount)
		fm.Target.SetDescription(fm.OriginalDescription)
	}
	fm.Target = nil
	e.logger.Debug("final match undone", slog.Int("index", i))
}

func amountNote(description, originalAmount string) string {
	return fmt.Sprintf("%s (original amount %s)", description, originalAmount)
}
