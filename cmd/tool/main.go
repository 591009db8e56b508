// Command tool is the operator CLI: schema migration, master account
// seeding and password hashing.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/bootstrap"
	"github.com/baechuer/account-service/internal/config"
	"github.com/baechuer/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/account-service/internal/infrastructure/security"
	"github.com/baechuer/account-service/internal/logger"
)

const usage = `usage: tool <command> [flags]

commands:
  migrate   apply the account schema
  master    create the default groups and the master account
  hash      read a password from stdin and print its bcrypt hash
`

// env holds what the commands need from the outside world.
type env struct {
	loadConfig func() (*config.Config, error)
	openDB     func(addr string, debug bool) (*sql.DB, error)
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

func run(ctx context.Context, args []string, e env) int {
	if len(args) == 0 {
		fmt.Fprint(e.stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "migrate":
		err = runMigrate(ctx, e)
	case "master":
		err = runMaster(ctx, e)
	case "hash":
		err = runHash(args[1:], e)
	case "help", "-h", "--help":
		fmt.Fprint(e.stdout, usage)
		return 0
	default:
		fmt.Fprintf(e.stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func openDB(cfg *config.Config, e env) (*sql.DB, error) {
	if cfg.DBAddr == "" {
		return nil, errors.New("DB_ADDR is required")
	}
	return e.openDB(cfg.DBAddr, cfg.DBDebug)
}

func runMigrate(ctx context.Context, e env) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg, e)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, "schema applied")
	return nil
}

func runMaster(ctx context.Context, e env) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if cfg.MasterPassword == "" || cfg.MasterEmail == "" {
		return errors.New("MASTER_PASSWORD and MASTER_EMAIL are required")
	}

	db, err := openDB(cfg, e)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	created, err := account.SeedMaster(ctx,
		postgres.NewGroupRepo(db),
		postgres.NewUserRepo(db),
		security.NewBcryptHasher(cfg.BcryptCost),
		bootstrap.MasterFromConfig(cfg),
	)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(e.stdout, "master account %s created\n", cfg.MasterUserID)
	} else {
		fmt.Fprintf(e.stdout, "master account %s already exists\n", cfg.MasterUserID)
	}
	return nil
}

func runHash(args []string, e env) error {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cost < bcrypt.MinCost || *cost > bcrypt.MaxCost {
		return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	line, err := bufio.NewReader(e.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("empty password")
	}

	hash, err := security.NewBcryptHasher(*cost).Hash(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, hash)
	return nil
}

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], env{
		loadConfig: config.Load,
		openDB:     config.NewDB,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}))
}
