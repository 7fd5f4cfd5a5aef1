package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledgerline/identity-core/internal/config"
	"github.com/ledgerline/identity-core/internal/pkg/database"
	"github.com/ledgerline/identity-core/internal/repository/postgresql"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(parseLevel(cfg.App.LogLevel), cfg.App.Env, globals.Version)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgresql.RunMigrations(ctx, db); err != nil {
		return err
	}
	logger.Info("Migrations applied")
	return nil
}
