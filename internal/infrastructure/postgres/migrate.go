package postgres

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/samber/oops"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations.
func (db *Database) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return oops.Code("MIGRATION_FAILED").Wrap(err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return oops.Code("MIGRATION_FAILED").Wrapf(err, "apply migrations")
	}
	return nil
}

// MigrationVersion reports the newest applied migration.
func (db *Database) MigrationVersion(ctx context.Context) (int64, error) {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, oops.Code("MIGRATION_FAILED").Wrap(err)
	}
	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, oops.Code("MIGRATION_FAILED").Wrapf(err, "read migration version")
	}
	return version, nil
}
