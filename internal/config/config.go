package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr       string
	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Infrastructure
	DBAddr         string
	DBDebug        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL      string
	RabbitExchange string

	// Security
	CSRFSecret   string
	CSRFTokenTTL time.Duration
	SessionTTL   time.Duration
	BcryptCost   int

	// Request schemas; empty means the embedded defaults.
	SchemaPath string

	// Master account; name, email and password are only read when seeding.
	MasterUserID      string
	MasterUserName    string
	MasterEmail       string
	MasterPassword    string
	MasterDisplayName string

	// Site settings
	CanRegister       bool
	EnableCaptcha     bool
	RequireActivation bool
	EmailLoginEnabled bool
	DefaultLocale     string
	AvailableLocales  []string

	// Authorization policy
	EditableFields []string
	AdminGroupID   int64

	// Rate limits
	RLLoginLimit    int
	RLRegisterLimit int
	RLSettingsLimit int
	RLWindow        time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		AllowedOrigins: getList("ALLOWED_ORIGINS", nil),
		RedisAddr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "account.events"),
		SchemaPath:     os.Getenv("SCHEMA_PATH"),
		DefaultLocale:  getEnv("DEFAULT_LOCALE", "en-US"),

		MasterUserName:    getEnv("MASTER_USER_NAME", "admin"),
		MasterEmail:       os.Getenv("MASTER_EMAIL"),
		MasterPassword:    os.Getenv("MASTER_PASSWORD"),
		MasterDisplayName: getEnv("MASTER_DISPLAY_NAME", "Administrator"),
	}

	// required values
	cfg.CSRFSecret = os.Getenv("CSRF_SECRET")
	if cfg.CSRFSecret == "" {
		return nil, fmt.Errorf("missing required env var: CSRF_SECRET")
	}

	cfg.MasterUserID = os.Getenv("MASTER_USER_ID")
	if cfg.MasterUserID == "" {
		return nil, fmt.Errorf("missing required env var: MASTER_USER_ID")
	}

	// The in-memory stores are only acceptable in dev.
	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" && cfg.Env != "dev" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}

	var err error
	if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// site toggles
	if cfg.CanRegister, err = getBool("CAN_REGISTER", true); err != nil {
		return nil, err
	}
	if cfg.EnableCaptcha, err = getBool("ENABLE_CAPTCHA", true); err != nil {
		return nil, err
	}
	if cfg.RequireActivation, err = getBool("REQUIRE_ACTIVATION", true); err != nil {
		return nil, err
	}
	if cfg.EmailLoginEnabled, err = getBool("EMAIL_LOGIN_ENABLED", true); err != nil {
		return nil, err
	}
	cfg.AvailableLocales = getList("AVAILABLE_LOCALES", []string{"en-US", "fr-FR"})
	if !contains(cfg.AvailableLocales, cfg.DefaultLocale) {
		return nil, fmt.Errorf("DEFAULT_LOCALE %q must be one of AVAILABLE_LOCALES", cfg.DefaultLocale)
	}

	cfg.EditableFields = getList("EDITABLE_FIELDS", []string{"email", "locale", "display_name", "password"})
	admin, err := getInt("ADMIN_GROUP_ID", 2)
	if err != nil {
		return nil, err
	}
	cfg.AdminGroupID = int64(admin)

	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}

	if cfg.CSRFTokenTTL, err = getDuration("CSRF_TOKEN_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	// rate limits
	if cfg.RLLoginLimit, err = getInt("RL_LOGIN_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.RLRegisterLimit, err = getInt("RL_REGISTER_LIMIT", 3); err != nil {
		return nil, err
	}
	if cfg.RLSettingsLimit, err = getInt("RL_SETTINGS_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.RLWindow, err = getDuration("RL_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	// Rabbit: dev can be empty (noop publisher).
	if cfg.RabbitURL == "" && cfg.Env != "dev" {
		return nil, fmt.Errorf("missing required env var: RABBIT_URL")
	}

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return i, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean for %s: %q", key, v)
	}
}

// getList splits a comma separated value, dropping empty items.
func getList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
