package reconciler

import (
	"log/slog"
	"slices"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// DeleteCurrentSourceRecord removes the source record under the cursor,
// unmatching its partner first. The cursor steps back so the record that
// followed the deleted one is offered next.
func (e *Engine) DeleteCurrentSourceRecord() (transaction.Source, error) {
	if e.phase == PhaseFinished {
		return nil, ErrFinished
	}
	if e.cursor < 0 || e.cursor >= len(e.sources) {
		return nil, ErrNoActiveSession
	}

	removed := e.removeSource(e.cursor)
	e.cursor--
	e.current = nil
	return removed, nil
}

// DeleteSourceRecordAt removes the source record at index. Deleting the
// record under the cursor behaves like DeleteCurrentSourceRecord; deleting
// any other record keeps the cursor on the same record and leaves the live
// candidate set alone.
func (e *Engine) DeleteSourceRecordAt(index int) (transaction.Source, error) {
	if e.phase == PhaseFinished {
		return nil, ErrFinished
	}
	if index < 0 || index >= len(e.sources) {
		return nil, indexError("source record", index, len(e.sources))
	}
	if index == e.cursor {
		return e.DeleteCurrentSourceRecord()
	}

	removed := e.removeSource(index)
	if index < e.cursor {
		e.cursor--
	}
	return removed, nil
}

// DeleteCandidateAt removes the candidate's target records from the target
// collection and drops the candidate from the live set. Remaining
// candidates are renumbered from zero.
func (e *Engine) DeleteCandidateAt(index int) error {
	if e.phase == PhaseFinished {
		return ErrFinished
	}
	if e.current == nil {
		return ErrNoActiveSession
	}
	if index < 0 || index >= len(e.current.Candidates) {
		return indexError("match number", index, len(e.current.Candidates))
	}

	candidate := e.current.Candidates[index]
	for _, t := range candidate.Targets {
		if e.targetMatched(t) {
			return ErrCannotDeleteMatched
		}
	}

	for _, t := range candidate.Targets {
		e.removeTarget(t)
	}
	e.current.Candidates = slices.Delete(e.current.Candidates, index, index+1)
	return nil
}

func (e *Engine) removeSource(index int) transaction.Source {
	src := e.sources[index]

	for i := range e.finalMatches {
		if !e.finalMatches[i].Undone() && e.finalMatches[i].Source.ID() == src.ID() {
			e.dropFinalMatch(i)
		}
	}
	for i := range e.autoMatches {
		if !e.autoMatches[i].Undone() && e.autoMatches[i].Source.ID() == src.ID() {
			e.autoMatches[i].Candidate = nil
		}
	}
	if targetID, ok := e.matches.unlinkSource(src.ID()); ok {
		e.logger.Debug("partner unmatched", slog.String("target_id", targetID))
	}

	e.sources = slices.Delete(e.sources, index, index+1)
	delete(e.sourceByID, src.ID())

	e.logger.Debug("source record deleted",
		slog.Int("index", index),
		slog.String("description", src.Description()),
	)
	return src
}

func (e *Engine) removeTarget(t transaction.Target) {
	e.targets = slices.DeleteFunc(e.targets, func(x transaction.Target) bool {
		return x.ID() == t.ID()
	})
	delete(e.targetByID, t.ID())

	e.logger.Debug("target record deleted", slog.String("description", t.Description()))
}
