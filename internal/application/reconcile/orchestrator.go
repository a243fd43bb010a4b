// Package reconcile drives the matching engine through its phases in
// response to user decisions. It has no scoring or matching logic of its own.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eshaffer321/statement-reconciler/internal/domain/reconciler"
)

const (
	promptUndoAuto = "Auto match numbers to undo (comma separated), enter to accept, q to quit: "
	promptMatch    = "Match number, d to delete record, dN to delete match N, enter to skip, q to quit: "
	promptReview   = "Match numbers to undo (comma separated), g to go again, f to finish, q to quit: "
)

// Orchestrator runs one interactive reconciliation
type Orchestrator struct {
	prompter  Prompter
	presenter Presenter
	sink      reconciler.Sink
	recorder  RunRecorder // optional
	logger    *slog.Logger
}

// NewOrchestrator creates a new orchestrator. recorder may be nil.
func NewOrchestrator(
	prompter Prompter,
	presenter Presenter,
	sink reconciler.Sink,
	recorder RunRecorder,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		prompter:  prompter,
		presenter: presenter,
		sink:      sink,
		recorder:  recorder,
		logger:    logger,
	}
}

// Run takes the engine from the automatic pass to finalization.
// It returns ErrAborted if the user quits, in which case nothing is written.
func (o *Orchestrator) Run(ctx context.Context, engine *reconciler.Engine, opts Options) (*Result, error) {
	result := &Result{}
	result.RunID = o.startRun(ctx, engine, opts)

	err := o.run(ctx, engine, result)
	o.completeRun(ctx, result, err)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, engine *reconciler.Engine, result *Result) error {
	o.logger.Info("Starting reconciliation",
		"source_records", len(engine.Sources()),
		"ledger_entries", len(engine.Targets()),
	)

	if err := o.automaticPhase(ctx, engine, result); err != nil {
		return err
	}

	if err := o.matchLoop(ctx, engine, engine.AdvanceSemiAutomatic, result); err != nil {
		return err
	}

	if err := o.reviewLoop(ctx, engine, result); err != nil {
		return err
	}

	return o.finalize(ctx, engine, result)
}

func (o *Orchestrator) automaticPhase(ctx context.Context, engine *reconciler.Engine, result *Result) error {
	autos, err := engine.RunAutomaticPass()
	if err != nil {
		return fmt.Errorf("automatic pass failed: %w", err)
	}
	o.logger.Info("Automatic pass complete", "matched", len(autos))
	if len(autos) == 0 {
		return nil
	}

	o.presenter.AutoMatches(engine.AutoMatches())
	for {
		input, err := o.prompter.Ask(ctx, promptUndoAuto)
		if err != nil {
			return err
		}
		d, err := ParseDecision(input)
		if err != nil {
			o.presenter.Notice(err.Error())
			continue
		}

		switch d.Kind {
		case DecisionSkip:
			return nil
		case DecisionQuit:
			return ErrAborted
		case DecisionIndices:
			before := undoneAutoMatches(engine)
			if err := engine.UndoAutoMatches(d.Indices); err != nil {
				if recoverable(err) {
					o.presenter.Notice(err.Error())
					continue
				}
				return err
			}
			result.AutoUndone += undoneAutoMatches(engine) - before
			o.logger.Debug("Auto matches undone", "indices", d.Indices)
			o.presenter.AutoMatches(engine.AutoMatches())
		default:
			o.presenter.Notice("enter auto match numbers to undo, or press enter to accept")
		}
	}
}

// matchLoop offers each record the advance function finds until it reports
// the end of the source records
func (o *Orchestrator) matchLoop(ctx context.Context, engine *reconciler.Engine, advance func() (bool, error), result *Result) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		found, err := advance()
		if err != nil {
			return err
		}
		if !found {
			return nil
		}

		if err := o.decide(ctx, engine, result); err != nil {
			return err
		}
	}
}

// decide prompts until the live candidate set is resolved or skipped
func (o *Orchestrator) decide(ctx context.Context, engine *reconciler.Engine, result *Result) error {
	for {
		set := engine.Current()
		if set.Len() == 0 {
			return nil
		}
		o.presenter.CandidateSet(engine.Phase(), set)

		input, err := o.prompter.Ask(ctx, promptMatch)
		if err != nil {
			return err
		}
		d, err := ParseDecision(input)
		if err != nil {
			o.presenter.Notice(err.Error())
			continue
		}

		switch d.Kind {
		case DecisionSkip:
			return nil

		case DecisionQuit:
			return ErrAborted

		case DecisionIndices:
			if len(d.Indices) != 1 {
				o.presenter.Notice("choose a single match number")
				continue
			}
			fm, err := engine.ConfirmMatch(d.Indices[0])
			if err != nil {
				if recoverable(err) {
					o.presenter.Notice(err.Error())
					continue
				}
				return err
			}
			if fm.Normalized {
				o.presenter.Notice(fmt.Sprintf("ledger amount changed from %s to %s",
					fm.OriginalAmount.StringFixed(2), fm.Source.MainAmount().StringFixed(2)))
			}
			return nil

		case DecisionDeleteSource:
			removed, err := engine.DeleteCurrentSourceRecord()
			if err != nil {
				if recoverable(err) {
					o.presenter.Notice(err.Error())
					continue
				}
				return err
			}
			result.SourcesDeleted++
			o.logger.Info("Source record deleted", "description", removed.Description())
			return nil

		case DecisionDeleteCandidate:
			if err := engine.DeleteCandidateAt(d.Index); err != nil {
				if recoverable(err) {
					o.presenter.Notice(err.Error())
					continue
				}
				return err
			}
			result.CandidatesDeleted++

		default:
			o.presenter.Notice("g and f are only available at the review step")
		}
	}
}

func (o *Orchestrator) reviewLoop(ctx context.Context, engine *reconciler.Engine, result *Result) error {
	for {
		if err := engine.BeginReview(); err != nil {
			return err
		}
		o.presenter.FinalMatches(engine.FinalMatches())
		o.presenter.Tally(engine.Tally())

		input, err := o.prompter.Ask(ctx, promptReview)
		if err != nil {
			return err
		}
		d, err := ParseDecision(input)
		if err != nil {
			o.presenter.Notice(err.Error())
			continue
		}

		switch d.Kind {
		case DecisionFinish:
			return nil

		case DecisionQuit:
			return ErrAborted

		case DecisionGoAgain:
			engine.Rewind()
			o.logger.Info("Starting manual pass")
			if err := o.matchLoop(ctx, engine, engine.AdvanceManual, result); err != nil {
				return err
			}

		case DecisionIndices:
			before := undoneFinalMatches(engine)
			if err := engine.UndoFinalMatches(d.Indices); err != nil {
				if recoverable(err) {
					o.presenter.Notice(err.Error())
					continue
				}
				return err
			}
			result.FinalUndone += undoneFinalMatches(engine) - before

		default:
			o.presenter.Notice("enter match numbers to undo, g to go again or f to finish")
		}
	}
}

func (o *Orchestrator) finalize(ctx context.Context, engine *reconciler.Engine, result *Result) error {
	tally := engine.Tally()
	result.Warnings = tally.Warnings
	for _, w := range tally.Warnings {
		o.logger.Warn("Tally mismatch", "warning", w)
	}

	for _, am := range engine.AutoMatches() {
		if !am.Undone() {
			result.AutoMatched++
		}
	}
	for _, fm := range engine.FinalMatches() {
		if !fm.Undone() {
			result.Confirmed++
		}
	}

	fr, err := engine.FinalizeReconciliation(ctx, o.sink)
	if err != nil {
		return err
	}
	result.Added = fr.Added
	result.Reconciled = fr.Reconciled
	result.Written = fr.Written

	o.presenter.Finalized(fr)
	o.logger.Info("Reconciliation finalized",
		"auto_matched", result.AutoMatched,
		"confirmed", result.Confirmed,
		"added", result.Added,
		"written", result.Written,
	)

	o.recordPairs(ctx, engine, result.RunID)
	return nil
}

// recoverable reports whether err is a user mistake to report and re-prompt on
// undoneAutoMatches counts auto match tombstones, so repeated or
// duplicate undo indices are counted once
func undoneAutoMatches(engine *reconciler.Engine) int {
	n := 0
	for _, am := range engine.AutoMatches() {
		if am.Undone() {
			n++
		}
	}
	return n
}

func undoneFinalMatches(engine *reconciler.Engine) int {
	n := 0
	for _, fm := range engine.FinalMatches() {
		if fm.Undone() {
			n++
		}
	}
	return n
}

func recoverable(err error) bool {
	return errors.Is(err, reconciler.ErrIndexOutOfRange) ||
		errors.Is(err, reconciler.ErrNoActiveSession) ||
		errors.Is(err, reconciler.ErrCannotDeleteMatched)
}
