package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	ctxpkg "github.com/baechuer/account-service/internal/pkg/context"
)

// Logger provides structured audit logging for account business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// SpamRejected records a submission that failed the honeypot check. Values
// of secret fields are replaced before logging.
func (l *Logger) SpamRejected(ctx context.Context, kind string, payload map[string]string) {
	l.log.Warn().
		Str("action", "spam_rejected").
		Str("kind", kind).
		Interface("payload", MaskPayload(payload)).
		Str("request_id", ctxpkg.GetRequestID(ctx)).
		Msg("Possible spam received")
}

// LoginSuccess logs a successful login
func (l *Logger) LoginSuccess(ctx context.Context, userID, userName string) {
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("user_name", userName).
		Str("request_id", ctxpkg.GetRequestID(ctx)).
		Msg("User logged in successfully")
}

// LoginFailed logs a failed login attempt
func (l *Logger) LoginFailed(ctx context.Context, identifier, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("identifier", maskIdentifier(identifier)).
		Str("reason", reason).
		Str("request_id", ctxpkg.GetRequestID(ctx)).
		Msg("Login attempt failed")
}

// Registered logs a new account
func (l *Logger) Registered(ctx context.Context, userID, email string, active bool) {
	l.log.Info().
		Str("action", "registered").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Bool("active", active).
		Str("request_id", ctxpkg.GetRequestID(ctx)).
		Msg("User registered")
}

// SettingsUpdated logs which account fields changed
func (l *Logger) SettingsUpdated(ctx context.Context, userID string, fields []string) {
	l.log.Info().
		Str("action", "settings_updated").
		Str("user_id", userID).
		Strs("fields", fields).
		Str("request_id", ctxpkg.GetRequestID(ctx)).
		Msg("Account settings updated")
}

// AccessDenied logs a refused page or field access
func (l *Logger) AccessDenied(ctx context.Context, userID, what string) {
	l.log.Warn().
		Str("action", "access_denied").
		Str("user_id", userID).
		Str("target", what).
		Str("request_id", ctxpkg.GetRequestID(ctx)).
		Msg("Access denied")
}

// SessionsRevoked logs when all sessions are revoked
func (l *Logger) SessionsRevoked(ctx context.Context, userID string) {
	l.log.Warn().
		Str("action", "sessions_revoked").
		Str("user_id", userID).
		Str("request_id", ctxpkg.GetRequestID(ctx)).
		Msg("All sessions revoked for user")
}

// Logout logs a user logout
func (l *Logger) Logout(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "logout").
		Str("user_id", userID).
		Str("request_id", ctxpkg.GetRequestID(ctx)).
		Msg("User logged out")
}

var secretFields = map[string]bool{
	"password":      true,
	"passwordc":     true,
	"passwordcheck": true,
	"csrf_token":    true,
}

// MaskPayload copies payload, replacing secret values with "***".
func MaskPayload(payload map[string]string) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		if secretFields[strings.ToLower(k)] {
			out[k] = "***"
			continue
		}
		out[k] = v
	}
	return out
}

func maskIdentifier(s string) string {
	if strings.Contains(s, "@") {
		return maskEmail(s)
	}
	if len(s) < 3 {
		return "***"
	}
	return s[:2] + "***"
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	// Show first 2 chars and domain
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
