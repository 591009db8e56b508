package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/account-service/internal/config"
)

func testEnv(cfg *config.Config, stdin string) (env, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return env{
		loadConfig: func() (*config.Config, error) { return cfg, nil },
		openDB: func(string, bool) (*sql.DB, error) {
			return nil, errors.New("unexpected db dial")
		},
		stdin:  strings.NewReader(stdin),
		stdout: &out,
		stderr: &errOut,
	}, &out, &errOut
}

func TestRun_NoArgs_PrintsUsage(t *testing.T) {
	e, _, errOut := testEnv(&config.Config{}, "")

	assert.Equal(t, 2, run(context.Background(), nil, e))
	assert.Contains(t, errOut.String(), "usage: tool")
}

func TestRun_UnknownCommand(t *testing.T) {
	e, _, errOut := testEnv(&config.Config{}, "")

	assert.Equal(t, 2, run(context.Background(), []string{"install"}, e))
	assert.Contains(t, errOut.String(), `unknown command "install"`)
}

func TestRun_Hash(t *testing.T) {
	e, out, _ := testEnv(nil, "Secret123\n")

	code := run(context.Background(), []string{"hash", "-cost", "4"}, e)
	require.Equal(t, 0, code)

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Secret123")))
}

func TestRun_Hash_RejectsEmptyAndBadCost(t *testing.T) {
	e, _, errOut := testEnv(nil, "\n")
	assert.Equal(t, 1, run(context.Background(), []string{"hash", "-cost", "4"}, e))
	assert.Contains(t, errOut.String(), "empty password")

	e, _, errOut = testEnv(nil, "Secret123\n")
	assert.Equal(t, 1, run(context.Background(), []string{"hash", "-cost", "99"}, e))
	assert.Contains(t, errOut.String(), "cost must be between")
}

func TestRun_Migrate_RequiresDB(t *testing.T) {
	e, _, errOut := testEnv(&config.Config{}, "")

	assert.Equal(t, 1, run(context.Background(), []string{"migrate"}, e))
	assert.Contains(t, errOut.String(), "DB_ADDR is required")
}

func TestRun_Migrate_AppliesSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	e, out, _ := testEnv(&config.Config{DBAddr: "postgres://localhost/app"}, "")
	e.openDB = func(string, bool) (*sql.DB, error) { return db, nil }

	require.Equal(t, 0, run(context.Background(), []string{"migrate"}, e))
	assert.Contains(t, out.String(), "schema applied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_Master_RequiresCredentials(t *testing.T) {
	e, _, errOut := testEnv(&config.Config{DBAddr: "postgres://localhost/app", MasterUserID: "m-1"}, "")

	assert.Equal(t, 1, run(context.Background(), []string{"master"}, e))
	assert.Contains(t, errOut.String(), "MASTER_PASSWORD and MASTER_EMAIL are required")
}

func TestRun_ConfigError(t *testing.T) {
	e, _, errOut := testEnv(nil, "")
	e.loadConfig = func() (*config.Config, error) { return nil, errors.New("missing required env var: CSRF_SECRET") }

	assert.Equal(t, 1, run(context.Background(), []string{"master"}, e))
	assert.Contains(t, errOut.String(), "CSRF_SECRET")
}
