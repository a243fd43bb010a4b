package storage

import "context"

// Repository defines the complete storage interface.
// This interface allows swapping implementations and makes testing with
// fakes straightforward.
type Repository interface {
	RunRepository
	PairRepository
	LedgerRepository
	Close() error
}

// RunRepository handles reconciliation run tracking
type RunRepository interface {
	// StartRun records the start of a run and returns the run ID
	StartRun(ctx context.Context, run RunStart) (int64, error)

	// CompleteRun records how a run ended
	CompleteRun(ctx context.Context, runID int64, summary RunSummary) error

	// ListRuns returns the most recent runs first
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// GetRun retrieves a run by ID. Returns ErrNotFound if missing.
	GetRun(ctx context.Context, runID int64) (*Run, error)
}

// PairRepository handles the matched pairs recorded at finalize
type PairRepository interface {
	// RecordPair stores one source/ledger pairing for a run
	RecordPair(ctx context.Context, pair *MatchedPair) error

	// ListPairs returns the pairs recorded for a run in insertion order
	ListPairs(ctx context.Context, runID int64) ([]MatchedPair, error)
}

// LedgerRepository stores the reconciled ledger itself
type LedgerRepository interface {
	// ReplaceLedger swaps the stored ledger for entries in one transaction
	ReplaceLedger(ctx context.Context, entries []LedgerRow) error

	// LoadLedger returns the stored ledger in position order
	LoadLedger(ctx context.Context) ([]LedgerRow, error)
}
