package storage

import "errors"

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusAborted   = "aborted"
)

// RunStart describes a run as it begins
type RunStart struct {
	SourcePath  string
	TargetPath  string
	OutputPath  string
	SourceCount int
	TargetCount int
}

// RunSummary describes how a run ended
type RunSummary struct {
	Status         string
	AutoMatched    int
	Confirmed      int
	SourcesDeleted int
	Added          int
	Written        int
	Warnings       int
	ErrorMessage   string
}

// Run represents a reconciliation run record
type Run struct {
	ID             int64  `json:"id"`
	SourcePath     string `json:"source_path"`
	TargetPath     string `json:"target_path"`
	OutputPath     string `json:"output_path"`
	StartedAt      string `json:"started_at"`
	CompletedAt    string `json:"completed_at,omitempty"`
	SourceCount    int    `json:"source_count"`
	TargetCount    int    `json:"target_count"`
	AutoMatched    int    `json:"auto_matched"`
	Confirmed      int    `json:"confirmed"`
	SourcesDeleted int    `json:"sources_deleted"`
	Added          int    `json:"added"`
	Written        int    `json:"written"`
	Warnings       int    `json:"warnings"`
	Status         string `json:"status"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// MatchedPair is one source record paired with a ledger entry in a run.
// Amounts are stored as fixed two-place decimal strings.
type MatchedPair struct {
	ID                int64  `json:"id"`
	RunID             int64  `json:"run_id"`
	Phase             string `json:"phase"`
	SourceID          string `json:"source_id"`
	SourceDate        string `json:"source_date"`
	SourceAmount      string `json:"source_amount"`
	SourceDescription string `json:"source_description"`
	TargetID          string `json:"target_id"`
	TargetDescription string `json:"target_description"`
	Normalized        bool   `json:"normalized"`
	OriginalAmount    string `json:"original_amount,omitempty"`
}

// LedgerRow is a ledger entry as stored in the database
type LedgerRow struct {
	Position int
	EntryID  string
	Date     string // YYYY-MM-DD
	Amount   string
	Memo     string
	Type     string
	Category string
	Notes    string
	Status   string
}
