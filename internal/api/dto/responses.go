package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID             int64  `json:"id"`
	SourcePath     string `json:"source_path"`
	TargetPath     string `json:"target_path,omitempty"`
	OutputPath     string `json:"output_path,omitempty"`
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

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// PairResponse is one source record paired with a ledger entry.
type PairResponse struct {
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

// PairListResponse is returned when listing the pairs of a run.
type PairListResponse struct {
	RunID int64          `json:"run_id"`
	Pairs []PairResponse `json:"pairs"`
	Count int            `json:"count"`
}

// LedgerEntryResponse represents a stored ledger entry.
type LedgerEntryResponse struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Memo     string `json:"memo"`
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Status   string `json:"status"`
}

// LedgerResponse is returned for the stored ledger.
type LedgerResponse struct {
	Entries    []LedgerEntryResponse `json:"entries"`
	Count      int                   `json:"count"`
	Reconciled int                   `json:"reconciled"`
}
