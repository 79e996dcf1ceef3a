package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvport/internal/config"
	"github.com/JonMunkholm/csvport/internal/core"
	"github.com/JonMunkholm/csvport/internal/logging"
	"github.com/JonMunkholm/csvport/internal/store"
)

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg   *config.Config
	store *store.Store
	svc   *core.Service
}

func newRootCmd(a *app) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "csvport",
		Short: "Export and import projects, users and memberships as CSV",
		Long: `csvport moves records between a SQL database and CSV files.

Exports carry a UTF-8 BOM, quote every field and render timestamps in
CSV_TIME_ZONE. Imports accept the same shape with or without a BOM.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before configuration")

	root.AddCommand(
		newMigrateCmd(a),
		newEntitiesCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newHistoryCmd(a),
		newResetCmd(a),
	)
	return root
}

// open loads configuration, sets up logging and connects to the database.
func (a *app) open(ctx context.Context, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return withCode(exitUsage, fmt.Errorf("load %s: %w", envFile, err))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return withCode(exitUsage, err)
	}
	a.cfg = cfg

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	a.store = st

	svc, err := core.NewService(st, cfg)
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}
