package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/audit"
	"github.com/baechuer/account-service/internal/config"
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/i18n"
	"github.com/baechuer/account-service/internal/infrastructure/captcha"
	"github.com/baechuer/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/account-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/account-service/internal/infrastructure/redis"
	"github.com/baechuer/account-service/internal/infrastructure/security"
	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/policy"
	"github.com/baechuer/account-service/internal/schema"
	http_handlers "github.com/baechuer/account-service/internal/transport/http/handlers"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
	"github.com/baechuer/account-service/internal/transport/http/router"
	"github.com/baechuer/account-service/internal/validation"
)

// CSRFIssuer is the iss claim of every CSRF token this service signs.
const CSRFIssuer = "account-service"

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	// NewDB is skipped when DB_ADDR is empty (dev only).
	NewDB func(addr string, debug bool) (*sql.DB, error)

	// NewRedis is optional; without it sessions stay in process.
	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitURL, exchange string) (account.EventPublisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type groupStore interface {
	account.GroupRepo
	account.GroupSeeder
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()

	// 1) db, or in-memory repos in dev
	var (
		sqlDB  *sql.DB
		users  account.UserRepo
		groups groupStore
	)
	if cfg.DBAddr != "" {
		sqlDB, err = deps.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return nil, nil, err
		}
		cleanupFns = append(cleanupFns, func() { _ = sqlDB.Close() })

		if cfg.Env == "dev" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := postgres.Migrate(ctx, sqlDB)
			cancel()
			if err != nil {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
		}
		users = postgres.NewUserRepo(sqlDB)
		groups = postgres.NewGroupRepo(sqlDB)
	} else {
		logger.Logger.Warn().Msg("DB_ADDR empty; using in-memory repositories")
		users = memory.NewUserRepo()
		groups = memory.NewGroupRepo()
	}

	// 2) redis (best-effort)
	var redisCli *redis.Client
	if deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(context.Background()); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; sessions kept in process")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	var sessions account.SessionStore
	if redisCli != nil {
		sessions = redis.NewSessionStore(redisCli, cfg.SessionTTL)
	} else {
		sessions = memory.NewSessionStore(cfg.SessionTTL)
	}

	// 3) publisher
	var pub account.EventPublisher
	if cfg.RabbitURL == "" {
		logger.Logger.Warn().Msg("RABBIT_URL empty; using noop publisher")
		pub = memory.NewNoopPublisher()
	} else if pub, err = deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange); err != nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			pub = memory.NewNoopPublisher()
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}
	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 4) security
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	csrf := security.NewCSRFSigner(cfg.CSRFSecret, CSRFIssuer, cfg.CSRFTokenTTL)

	// 5) master account
	if cfg.MasterPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := account.SeedMaster(ctx, groups, users, hasher, MasterFromConfig(cfg))
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}

	// 6) schemas + policy
	schemaFS := schema.Defaults()
	if cfg.SchemaPath != "" {
		schemaFS = schema.Dir(cfg.SchemaPath)
	}
	schemas, err := schema.NewRepository(schemaFS, validation.New().CheckTag)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	pol, err := policy.Default(cfg.EditableFields, cfg.AdminGroupID)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 7) service
	svc := account.NewService(
		users,
		groups,
		hasher,
		sessions,
		schemas,
		pol,
		pub,
		account.Config{Site: siteFromConfig(cfg)},
	).
		WithAudit(audit.New(logger.Logger)).
		WithMetrics(middleware.ObserveOutcome).
		WithCaptchaRenderer(captcha.NewRenderer())

	// 8) handlers + middleware
	renderer, err := i18n.New()
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	secureCookies := cfg.Env != "dev"
	accountH := http_handlers.NewAccountHandler(svc, csrf, renderer, cfg.SessionTTL, secureCookies)

	checks := map[string]http_handlers.Check{}
	if sqlDB != nil {
		checks["db"] = sqlDB.PingContext
	}
	if redisCli != nil {
		checks["redis"] = redisCli.Ping
	}
	healthH := http_handlers.NewHealthHandler(checks)

	writeErr := func(w http.ResponseWriter, r *http.Request, err error) {
		response.WriteError(w, r, err, nil)
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 && cfg.Env == "dev" {
		origins = middleware.DefaultAllowedOrigins()
	}

	// rate limit (fail-open); falls back to per-IP limiting without redis
	limiter := redis.NewFixedWindowLimiter(redisCli)
	rl := func(scope string, limit int) func(http.Handler) http.Handler {
		return middleware.RateLimit(limiter, middleware.RateLimitConfig{
			Scope:  scope,
			Limit:  limit,
			Window: cfg.RLWindow,
		}, writeErr)
	}

	// 9) router
	mux, err := deps.NewRouter(router.Deps{
		Health:     healthH,
		Account:    accountH,
		SessionMW:  middleware.Session(svc, writeErr),
		OriginMW:   middleware.OriginCheck(origins, writeErr),
		LoginRL:    rl("login", cfg.RLLoginLimit),
		RegisterRL: rl("register", cfg.RLRegisterLimit),
		SettingsRL: rl("settings", cfg.RLSettingsLimit),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 10) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

func siteFromConfig(cfg *config.Config) domain.SiteSettings {
	return domain.SiteSettings{
		MasterUserID:      cfg.MasterUserID,
		CanRegister:       cfg.CanRegister,
		EnableCaptcha:     cfg.EnableCaptcha,
		RequireActivation: cfg.RequireActivation,
		EmailLoginEnabled: cfg.EmailLoginEnabled,
		DefaultLocale:     cfg.DefaultLocale,
		AvailableLocales:  cfg.AvailableLocales,
	}
}

// MasterFromConfig is shared with cmd/tool so both seed the same account.
func MasterFromConfig(cfg *config.Config) account.Master {
	return account.Master{
		ID:          cfg.MasterUserID,
		UserName:    domain.NormalizeIdentifier(cfg.MasterUserName),
		Email:       domain.NormalizeIdentifier(cfg.MasterEmail),
		DisplayName: cfg.MasterDisplayName,
		Password:    cfg.MasterPassword,
	}
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis:   redis.New,
		NewPublisher: func(url, exchange string) (account.EventPublisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
