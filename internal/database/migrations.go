package database

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"graca-pdv/migrations"
)

func prepareGoose(dialect string, logger *zap.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(zap.NewStdLog(logger.Named("goose")))
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// EnsureSchema applies every pending embedded migration. Running it against an
// up-to-date store is a no-op, so it is safe on every start.
func EnsureSchema(svc Service, logger *zap.Logger) error {
	return RunMigrations(svc.DB(), svc.Dialect(), logger)
}

// RunMigrations executes all pending database migrations
func RunMigrations(db *sql.DB, dialect string, logger *zap.Logger) error {
	if err := prepareGoose(dialect, logger); err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...", zap.String("dialect", dialect))

	if err := goose.Up(db, dialect); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// GetMigrationStatus logs the current migration status
func GetMigrationStatus(db *sql.DB, dialect string, logger *zap.Logger) error {
	if err := prepareGoose(dialect, logger); err != nil {
		return err
	}

	return goose.Status(db, dialect)
}
