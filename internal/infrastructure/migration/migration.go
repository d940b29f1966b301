package migration

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Name string
	SQL  string
}

// Migrations are applied in order on every start; each one is idempotent.
var Migrations = []Migration{
	{
		Name: "create_portfolios",
		SQL: `
		CREATE TABLE IF NOT EXISTS portfolios (
			id         UUID PRIMARY KEY,
			user_id    TEXT NOT NULL DEFAULT '',
			document   JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Name: "index_portfolios_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS portfolios_user_id_idx ON portfolios (user_id);`,
	},
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	return run(ctx, func(ctx context.Context, sql string) error {
		_, err := pool.Exec(ctx, sql)
		return err
	}, log)
}

func run(ctx context.Context, exec func(context.Context, string) error, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("starting database migrations")
	for _, m := range Migrations {
		if err := exec(ctx, m.SQL); err != nil {
			log.Error("migration failed", zap.String("name", m.Name), zap.Error(err))
			return err
		}
		log.Info("migration completed", zap.String("name", m.Name))
	}
	log.Info("all migrations completed successfully")
	return nil
}
