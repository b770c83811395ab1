package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/auth"
	"github.com/and161185/card-keeper/internal/config"
	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/kv"
	"github.com/and161185/card-keeper/internal/kv/memory"
	"github.com/and161185/card-keeper/internal/kv/postgres"
	"github.com/and161185/card-keeper/internal/kv/rediskv"
	"github.com/and161185/card-keeper/internal/kv/sqlite"
	"github.com/and161185/card-keeper/internal/logging"
	"github.com/and161185/card-keeper/internal/repository/blob"
	"github.com/and161185/card-keeper/internal/service"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	envFile    string
	backend    string
	sqlitePath string
	logLevel   string
}

// app is the per-invocation wiring: config, logger, medium, store and gate.
type app struct {
	opts rootOptions

	cfg    config.Config
	log    *zap.Logger
	medium kv.Store
	store  *blob.Store
	gate   *auth.Gate
}

const skipStore = "skip-store"

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(lo, hi)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cardkeeper",
		Short:         "cardkeeper - PIN-gated personal record cards",
		Long:          "Keep record cards with photos, small tabular files and media attachments behind a PIN.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipStore] != "" {
				return nil
			}
			return a.open(cmd)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	f := cmd.PersistentFlags()
	f.StringVar(&a.opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cardkeeper/config.yaml)")
	f.StringVar(&a.opts.envFile, "env-file", ".env", "dotenv file, skipped when missing")
	f.StringVar(&a.opts.backend, "backend", "", "storage backend (memory|sqlite|postgres|redis)")
	f.StringVar(&a.opts.sqlitePath, "sqlite-path", "", "sqlite database file")
	f.StringVar(&a.opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newLoginCommand(a))
	cmd.AddCommand(newLogoutCommand(a))
	cmd.AddCommand(newResetPINCommand(a))
	cmd.AddCommand(newCardCommand(a))
	cmd.AddCommand(newSheetCommand(a))
	cmd.AddCommand(newMediaCommand(a))
	cmd.AddCommand(newSettingsCommand(a))
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version",
		Args:        exactArgs(0),
		Annotations: map[string]string{skipStore: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cardkeeper %s (%s)\n", version, buildDate)
		},
	}
}

// open loads configuration and connects the storage medium.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.opts.configPath, a.opts.envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = a.opts.backend
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = a.opts.sqlitePath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}
	a.cfg = cfg

	a.log, err = logging.New(cfg.LogLevel)
	if err != nil {
		return usageError{err}
	}
	a.medium, err = openMedium(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}
	a.log.Debug("storage opened", zap.String("backend", cfg.Backend))

	a.store = blob.New(a.medium, a.log)
	a.gate = auth.NewGate(a.store.Secrets(), a.log)
	return nil
}

func (a *app) close() {
	if a.medium != nil {
		_ = a.medium.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// session resumes the gate from the saved token and returns a context
// carrying it.
func (a *app) session(ctx context.Context) (context.Context, error) {
	tok, err := loadSession()
	if err != nil {
		return nil, fmt.Errorf("not logged in (run cardkeeper login): %w", errs.ErrUnauthorized)
	}
	if err := a.gate.Resume(ctx, tok); err != nil {
		return nil, fmt.Errorf("session expired (run cardkeeper login): %w", err)
	}
	return auth.WithGate(ctx, a.gate), nil
}

func (a *app) cards() *service.CardServiceImpl {
	return service.NewCardService(a.store.Cards(), a.log)
}

func (a *app) sheets() *service.SheetServiceImpl {
	return service.NewSheetService(a.store.Sheets(), a.log)
}

func (a *app) media() *service.MediaServiceImpl {
	return service.NewMediaService(a.store.Media(), a.log)
}

func (a *app) settings() *service.SettingsServiceImpl {
	return service.NewSettingsService(a.store.Settings(), a.log)
}

func openMedium(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o700); err != nil {
			return nil, err
		}
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendRedis:
		s, err := rediskv.Open(ctx, rediskv.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
