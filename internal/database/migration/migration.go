package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// The input tables are owned by the loan origination system; they are created here only so a fresh
// database can serve the generator. generated_documents is the sentinel.
var steps = []migrationStep{
	{
		Name: "create_table_customers",
		SQL: `CREATE TABLE IF NOT EXISTS customers (
  id         BIGSERIAL PRIMARY KEY,
  full_name  TEXT      NOT NULL,
  id_number  TEXT      NOT NULL DEFAULT '',
  phone      TEXT      NOT NULL DEFAULT '',
  email      TEXT      NOT NULL DEFAULT '',
  address    TEXT      NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_collaterals",
		SQL: `CREATE TABLE IF NOT EXISTS collaterals (
  id              BIGSERIAL      PRIMARY KEY,
  customer_id     BIGINT         REFERENCES customers (id),
  collateral_type TEXT           NOT NULL,
  value           NUMERIC(20, 2) NOT NULL DEFAULT 0,
  description     TEXT           NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_credit_assessments",
		SQL: `CREATE TABLE IF NOT EXISTS credit_assessments (
  id              BIGSERIAL      PRIMARY KEY,
  customer_id     BIGINT         REFERENCES customers (id),
  approved_amount NUMERIC(20, 2),
  interest_rate   DOUBLE PRECISION,
  loan_term       INTEGER,
  loan_info       JSONB
);`,
	},
	{
		Name: "create_table_generated_documents",
		SQL: `CREATE TABLE IF NOT EXISTS generated_documents (
  id            UUID        PRIMARY KEY,
  document_type TEXT        NOT NULL,
  customer_id   BIGINT      NOT NULL,
  collateral_id BIGINT,
  assessment_id BIGINT,
  file_name     TEXT        NOT NULL UNIQUE,
  file_url      TEXT        NOT NULL DEFAULT '',
  content_type  TEXT        NOT NULL,
  size          BIGINT      NOT NULL CHECK (size >= 0),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_generated_documents_customer_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_generated_documents_customer_id ON generated_documents (customer_id);`,
	},
	{
		Name: "create_index_generated_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_generated_documents_created_at ON generated_documents (created_at);`,
	},
}

// EnsureMigrated checks if the 'generated_documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("checking schema", zap.String("event", "db_migration_check"), zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.generated_documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("failed to check sentinel table",
			zap.String("event", "db_migration_failed"),
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration",
			zap.String("event", "db_migration_skip"),
			zap.String("status", "success"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("migrating schema", zap.String("event", "db_migration_start"), zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("migration step failed",
				zap.String("event", "db_migration_failed"),
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("migration step applied",
			zap.String("event", "db_migration_step"),
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("schema migrated",
		zap.String("event", "db_migration_success"),
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
