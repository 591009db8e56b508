package postgres

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/baechuer/account-service/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the account schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
