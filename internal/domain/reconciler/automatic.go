package reconciler

import (
	"log/slog"
)

// RunAutomaticPass matches every source record that has exactly one strict
// candidate among the unmatched targets. Matches take effect immediately.
func (e *Engine) RunAutomaticPass() ([]AutoMatch, error) {
	if e.phase == PhaseFinished {
		return nil, ErrFinished
	}
	e.phase = PhaseAutomatic

	for _, src := range e.sources {
		if e.sourceMatched(src) {
			continue
		}

		candidate, ok := e.matcher.AutoMatch(src, e.unmatchedTargets())
		if !ok {
			continue
		}

		target := candidate.Target()
		e.matches.link(src.ID(), target.ID())
		e.autoMatches = append(e.autoMatches, AutoMatch{
			Index:     len(e.autoMatches),
			Source:    src,
			Candidate: &candidate,
		})

		e.logger.Debug("auto matched",
			slog.String("source", src.Description()),
			slog.String("target", target.Description()),
			slog.String("amount", src.MainAmount().String()),
		)
	}

	return e.AutoMatches(), nil
}

// UndoAutoMatch reverses one automatic match. The entry stays in the list
// with an empty candidate so other indices are unaffected.
func (e *Engine) UndoAutoMatch(index int) error {
	return e.UndoAutoMatches([]int{index})
}

// UndoAutoMatches reverses several automatic matches. Nothing is changed if
// any index is out of range.
func (e *Engine) UndoAutoMatches(indices []int) error {
	if e.phase == PhaseFinished {
		return ErrFinished
	}
	for _, i := range indices {
		if i < 0 || i >= len(e.autoMatches) {
			return indexError("auto match", i, len(e.autoMatches))
		}
	}

	for _, i := range indices {
		am := &e.autoMatches[i]
		if am.Undone() {
			continue
		}
		if targetID, ok := e.matches.targetOf(am.Source.ID()); ok && targetID == am.Candidate.Target().ID() {
			e.matches.unlinkSource(am.Source.ID())
		}
		am.Candidate = nil
		e.logger.Debug("auto match undone", slog.Int("index", i))
	}
	return nil
}
