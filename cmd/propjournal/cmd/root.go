package cmd

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/config"
	"github.com/rustyeddy/propjournal/internal/logging"
	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/psych"
	"github.com/rustyeddy/propjournal/store"
)

var rootCmd = &cobra.Command{
	Use:   "propjournal",
	Short: "A trading journal and account tracker for prop-firm traders",
	Long: `Propjournal keeps the books for prop-firm trading accounts.

It provides tools for:
  - Grading trades against playbook rules and sizing by grade
  - Logging trades and withdrawals with balances kept in step
  - Daily psychological check-ins that gate trading
  - Prop-firm limit checks for each account
  - Performance statistics, CSV and Org-mode export
  - Full-store snapshots, backups and restore

Data lives in JSON files or a SQLite database (see 'propjournal config init').`,
	SilenceUsage: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return app.close()
	},
}

var (
	cfgFile      string
	flagDataDir  string
	flagStore    string
	flagDB       string
	flagLogLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "propjournal.yaml", "config file (YAML or JSON), defaults apply when absent")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "store backend: json or sqlite (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (overrides config)")
}

// environment is loaded on first use so that commands which only touch
// config files never open the store.
type environment struct {
	cfg *config.Config
	log *logrus.Entry
	st  *store.Store
}

var app environment

func (e *environment) config() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.Store.Dir = flagDataDir
		cfg.Store.BackupDir = filepath.Join(flagDataDir, "backups")
		if flagDB == "" {
			cfg.Store.DBPath = filepath.Join(flagDataDir, "propjournal.db")
		}
	}
	if flagStore != "" {
		cfg.Store.Type = flagStore
	}
	if flagDB != "" {
		cfg.Store.DBPath = flagDB
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e.cfg = cfg
	e.log = logrus.NewEntry(logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr))
	return cfg, nil
}

func (e *environment) store() (*store.Store, error) {
	if e.st != nil {
		return e.st, nil
	}
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Type == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.DBPath), 0o755); err != nil {
			return nil, err
		}
	}
	st, err := store.Open(cfg.Store.Type, cfg.Store.Dir, cfg.Store.DBPath, e.log)
	if err != nil {
		return nil, err
	}
	e.st = st
	return st, nil
}

func (e *environment) close() error {
	if e.st == nil {
		return nil
	}
	err := e.st.Close()
	e.st = nil
	return err
}

func (e *environment) trades() (*ledger.TradeLedger, error) {
	st, err := e.store()
	if err != nil {
		return nil, err
	}
	return ledger.NewTradeLedger(st, e.log), nil
}

func (e *environment) withdrawals() (*ledger.WithdrawalLedger, error) {
	st, err := e.store()
	if err != nil {
		return nil, err
	}
	return ledger.NewWithdrawalLedger(st, e.log), nil
}

func (e *environment) accounts() (*ledger.Accounts, error) {
	st, err := e.store()
	if err != nil {
		return nil, err
	}
	return ledger.NewAccounts(st, e.log), nil
}

func (e *environment) journal() (*psych.Journal, error) {
	st, err := e.store()
	if err != nil {
		return nil, err
	}
	return psych.NewJournal(st, e.log), nil
}
