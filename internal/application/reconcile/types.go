package reconcile

import (
	"context"
	"errors"

	"github.com/eshaffer321/statement-reconciler/internal/domain/reconciler"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// ErrAborted is returned by Run when the user quits before finalizing
var ErrAborted = errors.New("reconciliation aborted")

// Prompter reads one line of user input. Ask blocks until the user answers
// or ctx is done.
type Prompter interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Presenter renders engine state for the user. It never mutates the engine.
type Presenter interface {
	AutoMatches(matches []reconciler.AutoMatch)
	CandidateSet(phase reconciler.Phase, set *reconciler.CandidateSet)
	FinalMatches(matches []reconciler.FinalMatch)
	Tally(report reconciler.TallyReport)
	Finalized(result reconciler.FinalizeResult)
	Notice(message string)
}

// RunRecorder keeps an audit trail of runs. storage.Storage implements it.
type RunRecorder interface {
	StartRun(ctx context.Context, run storage.RunStart) (int64, error)
	RecordPair(ctx context.Context, pair *storage.MatchedPair) error
	CompleteRun(ctx context.Context, runID int64, summary storage.RunSummary) error
}

// Options describes the run for the audit trail
type Options struct {
	SourcePath string
	TargetPath string
	OutputPath string
}

// Result holds reconciliation results
type Result struct {
	RunID             int64
	AutoMatched       int // automatic matches still in force at finalize
	AutoUndone        int
	Confirmed         int // confirmed matches still in force at finalize
	FinalUndone       int
	SourcesDeleted    int
	CandidatesDeleted int
	Added             int
	Reconciled        int
	Written           int
	Warnings          []string
}
