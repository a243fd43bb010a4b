package reconcile

import (
	"context"
	"errors"

	"github.com/eshaffer321/statement-reconciler/internal/domain/reconciler"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// Run history recording. Failures are logged and never stop a run.

func (o *Orchestrator) startRun(ctx context.Context, engine *reconciler.Engine, opts Options) int64 {
	if o.recorder == nil {
		return 0
	}
	runID, err := o.recorder.StartRun(ctx, storage.RunStart{
		SourcePath:  opts.SourcePath,
		TargetPath:  opts.TargetPath,
		OutputPath:  opts.OutputPath,
		SourceCount: len(engine.Sources()),
		TargetCount: len(engine.Targets()),
	})
	if err != nil {
		o.logger.Error("Failed to start run record", "error", err)
		return 0
	}
	return runID
}

func (o *Orchestrator) completeRun(ctx context.Context, result *Result, runErr error) {
	if o.recorder == nil || result.RunID == 0 {
		return
	}

	summary := storage.RunSummary{
		Status:         storage.RunStatusCompleted,
		AutoMatched:    result.AutoMatched,
		Confirmed:      result.Confirmed,
		SourcesDeleted: result.SourcesDeleted,
		Added:          result.Added,
		Written:        result.Written,
		Warnings:       len(result.Warnings),
	}
	switch {
	case errors.Is(runErr, ErrAborted):
		summary.Status = storage.RunStatusAborted
	case runErr != nil:
		summary.Status = storage.RunStatusFailed
		summary.ErrorMessage = runErr.Error()
	}

	if err := o.recorder.CompleteRun(context.WithoutCancel(ctx), result.RunID, summary); err != nil {
		o.logger.Error("Failed to complete run record", "run_id", result.RunID, "error", err)
	}
}

// recordPairs stores every pairing in force at finalize
func (o *Orchestrator) recordPairs(ctx context.Context, engine *reconciler.Engine, runID int64) {
	if o.recorder == nil || runID == 0 {
		return
	}

	phases := make(map[string]reconciler.Phase)
	normalized := make(map[string]reconciler.FinalMatch)
	for _, am := range engine.AutoMatches() {
		if !am.Undone() {
			phases[am.Source.ID()] = reconciler.PhaseAutomatic
		}
	}
	for _, fm := range engine.FinalMatches() {
		if !fm.Undone() {
			phases[fm.Source.ID()] = fm.Phase
			normalized[fm.Source.ID()] = fm
		}
	}

	for _, src := range engine.Sources() {
		partner := engine.MatchOf(src)
		if partner == nil {
			continue
		}
		pair := newMatchedPair(runID, src, partner, phases[src.ID()])
		if fm, ok := normalized[src.ID()]; ok && fm.Normalized {
			pair.Normalized = true
			pair.OriginalAmount = fm.OriginalAmount.StringFixed(2)
		}
		if err := o.recorder.RecordPair(ctx, pair); err != nil {
			o.logger.Error("Failed to record matched pair", "source_id", src.ID(), "error", err)
		}
	}
}

func newMatchedPair(runID int64, src transaction.Source, target transaction.Record, phase reconciler.Phase) *storage.MatchedPair {
	return &storage.MatchedPair{
		RunID:             runID,
		Phase:             phase.String(),
		SourceID:          src.ID(),
		SourceDate:        src.Date().Format("2006-01-02"),
		SourceAmount:      src.MainAmount().StringFixed(2),
		SourceDescription: src.Description(),
		TargetID:          target.ID(),
		TargetDescription: target.Description(),
	}
}
