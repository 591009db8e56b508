package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/baechuer/account-service/internal/logger"
)

// Pool sizing for the account tables: short transactions, mostly reads on
// login and session resume.
const (
	dbMaxOpenConns    = 20
	dbMaxIdleConns    = 10
	dbConnMaxIdleTime = 5 * time.Minute
	dbConnMaxLifetime = time.Hour
	dbPingTimeout     = 3 * time.Second
)

// NewDB opens a pgx-backed pool and pings it. With debug set it logs which
// role and database the pool landed on.
func NewDB(dsn string, debug bool) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("open db: empty DSN")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxIdleTime(dbConnMaxIdleTime)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if debug {
		var who, dbname, ver string
		_ = db.QueryRowContext(ctx, "SELECT current_user, current_database(), current_setting('server_version')").
			Scan(&who, &dbname, &ver)
		logger.Logger.Debug().
			Str("db_user", who).
			Str("db_name", dbname).
			Str("db_version", ver).
			Msg("db connected")
	}

	return db, nil
}
