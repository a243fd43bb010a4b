package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/eshaffer321/statement-reconciler/internal/adapters/csvfile"
	"github.com/eshaffer321/statement-reconciler/internal/adapters/spreadsheet"
	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/domain/categorizer"
	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/reconciler"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
	"github.com/eshaffer321/statement-reconciler/internal/domain/validator"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// ReconcileIO holds the terminal the reconcile command talks to
type ReconcileIO struct {
	In        io.Reader
	Out       io.Writer
	NoColor   bool
	NoHistory bool
}

// RunReconcile loads the statement and ledger described by cfg, runs an
// interactive reconciliation over term, and writes the result.
func RunReconcile(ctx context.Context, cfg *config.Config, term ReconcileIO, logger *slog.Logger) (*reconcile.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var store *storage.Storage
	if needsStorage(cfg, term.NoHistory) {
		s, err := storage.NewStorageWithLogger(cfg.Storage.DatabasePath, logger.With("system", "storage"))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	sources, err := csvfile.ReadSourceFile(cfg.Input.SourcePath, cfg.Input.SourceFormat, cfg.Input.DateLayout)
	if err != nil {
		return nil, err
	}
	targets, err := LoadLedger(ctx, cfg, store, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded records", "statement", len(sources), "ledger", len(targets))
	CheckBalances(sources, logger)

	categories := categorizer.NewCategorizer(nil)
	if n := categories.Learn(targets); n > 0 {
		logger.Debug("Learned ledger categories", "entries", n)
	}

	sink, err := NewSink(cfg, store)
	if err != nil {
		return nil, err
	}

	engine := reconciler.NewEngine(reconciler.Config{
		Matcher: matcher.Config{
			PartialAmountThreshold:    cfg.Matching.PartialAmountThreshold,
			PartialDateMatchThreshold: cfg.Matching.PartialDateMatchThreshold,
		},
		Factory: transaction.LedgerFactory{Categories: categories},
		Logger:  logger.With("system", "engine"),
	}, sources, targets)

	var recorder reconcile.RunRecorder
	if store != nil && !term.NoHistory {
		recorder = store
	}

	prompter := NewLinePrompter(term.In, term.Out)
	defer func() { _ = prompter.Close() }()

	orchestrator := reconcile.NewOrchestrator(
		prompter,
		NewConsolePresenter(term.Out, term.NoColor),
		sink,
		recorder,
		logger.With("system", "reconcile"),
	)

	return orchestrator.Run(ctx, engine, reconcile.Options{
		SourcePath: cfg.Input.SourcePath,
		TargetPath: cfg.Input.TargetPath,
		OutputPath: cfg.Output.Path,
	})
}

// CheckBalances warns when a bank statement's running balance breaks,
// which usually means the export is missing a line. It reports whether the
// balance chain held.
func CheckBalances(sources []transaction.Source, logger *slog.Logger) bool {
	var bank []*transaction.BankTransaction
	for _, s := range sources {
		if tx, ok := s.(*transaction.BankTransaction); ok {
			bank = append(bank, tx)
		}
	}

	result := validator.ValidateRunningBalance(bank)
	if result.Valid {
		if result.Checked > 0 {
			logger.Debug("Running balance verified", "checked", result.Checked)
		}
		return true
	}
	logger.Warn("Statement running balance does not add up",
		"row", result.Row+1,
		"difference", result.Difference.StringFixed(2),
		"reason", result.Reason)
	return false
}

func needsStorage(cfg *config.Config, noHistory bool) bool {
	return !noHistory || cfg.Input.TargetPath == "" || cfg.Output.Format == config.OutputFormatSQLite
}

// LoadLedger reads the ledger from the configured file, or from store when
// no file is configured. A ledger file that does not exist yet is empty.
func LoadLedger(ctx context.Context, cfg *config.Config, store *storage.Storage, logger *slog.Logger) ([]transaction.Target, error) {
	path := cfg.Input.TargetPath

	var entries []*transaction.LedgerEntry
	var err error
	switch {
	case path == "":
		if store == nil {
			return nil, errors.New("no ledger file configured and no database open")
		}
		entries, err = store.LoadLedgerEntries(ctx)
	case strings.HasSuffix(strings.ToLower(path), ".xlsx"):
		entries, err = spreadsheet.ReadLedger(path, cfg.Input.DateLayout)
	default:
		entries, err = csvfile.ReadLedgerFile(path, cfg.Input.DateLayout)
	}
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ledger file not found, starting an empty ledger", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	targets := make([]transaction.Target, len(entries))
	for i, e := range entries {
		targets[i] = e
	}
	return targets, nil
}

// NewSink returns the writer for the configured output format
func NewSink(cfg *config.Config, store *storage.Storage) (reconciler.Sink, error) {
	switch cfg.Output.Format {
	case config.OutputFormatCSV:
		return csvfile.NewLedgerWriter(cfg.Output.Path, cfg.Input.DateLayout), nil
	case config.OutputFormatXLSX:
		return spreadsheet.NewWriter(cfg.Output.Path, cfg.Input.DateLayout), nil
	case config.OutputFormatSQLite:
		if store == nil {
			return nil, errors.New("sqlite output needs a database")
		}
		return storage.NewLedgerSink(store), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}
}
