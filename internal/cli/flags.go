package cli

import (
	"flag"

	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
)

// ReconcileFlags are the flags of the reconcile command. Empty values leave
// the loaded configuration untouched.
type ReconcileFlags struct {
	ConfigPath   string
	Source       string
	SourceFormat string
	Ledger       string
	Output       string
	DateLayout   string
	DBPath       string
	NoHistory    bool
	NoColor      bool
	Verbose      bool
}

// ParseReconcileFlags parses reconcile flags from command line
func ParseReconcileFlags() ReconcileFlags {
	var flags ReconcileFlags
	registerReconcileFlags(flag.CommandLine, &flags)
	flag.Parse()
	return flags
}

func registerReconcileFlags(fs *flag.FlagSet, flags *ReconcileFlags) {
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Path to config file")
	fs.StringVar(&flags.Source, "source", "", "Statement CSV to reconcile")
	fs.StringVar(&flags.SourceFormat, "format", "", "Statement format: bank or card")
	fs.StringVar(&flags.Ledger, "ledger", "", "Ledger file (.csv or .xlsx); empty reads the ledger from the database")
	fs.StringVar(&flags.Output, "output", "", "Where to write the reconciled ledger (default: the ledger file)")
	fs.StringVar(&flags.DateLayout, "date-layout", "", "Go time layout of statement and ledger dates")
	fs.StringVar(&flags.DBPath, "db", "", "SQLite database for run history")
	fs.BoolVar(&flags.NoHistory, "no-history", false, "Do not record the run in the database")
	fs.BoolVar(&flags.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
}

// Apply overrides cfg with the flags that were set
func (f ReconcileFlags) Apply(cfg *config.Config) {
	if f.Source != "" {
		cfg.Input.SourcePath = f.Source
	}
	if f.SourceFormat != "" {
		cfg.Input.SourceFormat = f.SourceFormat
	}
	if f.Ledger != "" {
		cfg.Input.TargetPath = f.Ledger
		// output follows the new ledger unless given too
		cfg.Output = config.OutputConfig{}
	}
	if f.Output != "" {
		cfg.Output = config.OutputConfig{Path: f.Output}
	}
	if f.DateLayout != "" {
		cfg.Input.DateLayout = f.DateLayout
	}
	if f.DBPath != "" {
		cfg.Storage.DatabasePath = f.DBPath
	}
	if f.Verbose {
		cfg.Observability.Logging.Level = "debug"
	}
	cfg.ApplyDefaults()
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	ConfigPath string
	Port       int
	DBPath     string
	Verbose    bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "Path to config file")
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (default from config)")
	flag.StringVar(&flags.DBPath, "db", "", "SQLite database to serve")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
