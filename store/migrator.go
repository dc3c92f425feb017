package store

import (
	"context"
	"database/sql"
	"embed"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

// Migration System Overview:
//
// The schema lives in store/migration/{driver}/LATEST.sql and only uses
// "CREATE ... IF NOT EXISTS" statements, so applying it is idempotent.
//
// Migration Flow:
// 1. IsInitialized: check whether both tables already exist (for logging only).
// 2. Apply LATEST.sql inside a single transaction on every boot, so objects
//    missing from an older file (e.g. indexes) are created too.

//go:embed migration
var migrationFS embed.FS

const (
	// LatestSchemaFileName is the name of the latest schema file.
	LatestSchemaFileName = "LATEST.sql"
)

// Migrate ensures the database schema exists. It is safe to call on every boot.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}

	filePath := s.getMigrationBasePath() + LatestSchemaFileName
	bytes, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Errorf("failed to read latest schema file: %s", err)
	}

	// Start a transaction to apply the latest schema.
	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	if initialized {
		slog.Debug("database schema present, ensuring missing objects", slog.String("file", filePath))
	} else {
		slog.Info("initializing database with latest schema", slog.String("file", filePath))
	}
	if err := s.executeMultiStmt(ctx, tx, string(bytes)); err != nil {
		return errors.Wrapf(err, "failed to execute SQL file %s", filePath)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	if !initialized {
		slog.Info("database initialized successfully", slog.String("dsn", s.profile.DSN))
	}
	return nil
}

func (s *Store) getMigrationBasePath() string {
	return "migration/" + s.profile.Driver + "/"
}

func (s *Store) executeMultiStmt(ctx context.Context, tx *sql.Tx, sql string) error {
	statements := splitSQL(sql)
	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to execute statement %d: %s", i+1, stmt)
		}
	}
	return nil
}

// splitSQL splits a schema file into statements, dropping "--" comment lines.
func splitSQL(sql string) []string {
	var lines []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var statements []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
