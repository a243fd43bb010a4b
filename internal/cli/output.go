package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "statement-reconciler: %s (%s)\n", cfg.Input.SourcePath, cfg.Input.SourceFormat)

	ledger := cfg.Input.TargetPath
	if ledger == "" {
		ledger = cfg.Storage.DatabasePath + " (database)"
	}
	output := cfg.Output.Path
	if cfg.Output.Format == config.OutputFormatSQLite {
		output = cfg.Storage.DatabasePath + " (database)"
	}
	fmt.Fprintf(w, "Ledger: %s | Output: %s\n", ledger, output)
	fmt.Fprintf(w, "Tolerance: %.2f amount, %g days\n\n",
		cfg.Matching.PartialAmountThreshold, cfg.Matching.PartialDateMatchThreshold)
}

// PrintSummary prints the reconciliation result summary
func PrintSummary(w io.Writer, result *reconcile.Result) {
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Auto=%d Confirmed=%d Added=%d Written=%d\n",
		result.AutoMatched,
		result.Confirmed,
		result.Added,
		result.Written)

	if result.AutoUndone+result.FinalUndone > 0 {
		fmt.Fprintf(w, "Undone: %d automatic, %d confirmed\n", result.AutoUndone, result.FinalUndone)
	}
	if result.SourcesDeleted+result.CandidatesDeleted > 0 {
		fmt.Fprintf(w, "Deleted: %d statement records, %d ledger entries\n", result.SourcesDeleted, result.CandidatesDeleted)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}

	if result.RunID > 0 {
		fmt.Fprintf(w, "\nRun #%d recorded.\n", result.RunID)
	}
}
