package account

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/schema"
	"github.com/baechuer/account-service/internal/session"
)

/*
UserRepo
--------
Persistence port for users.
Lookups take already-normalized (lower-cased) identifiers.
Create and Update must enforce user_name / email uniqueness at write time and
report a violation as domain.ErrUsernameInUse / domain.ErrEmailInUse.
*/
type UserRepo interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, userName string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Exists(ctx context.Context, by Identifier, value string) (bool, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// Update persists the whole entity in one transaction.
	Update(ctx context.Context, u domain.User) error
}

// Identifier selects the column Exists looks at.
type Identifier string

const (
	ByID       Identifier = "id"
	ByUserName Identifier = "user_name"
	ByEmail    Identifier = "email"
)

/*
GroupRepo
---------
Read model for permission groups.
*/
type GroupRepo interface {
	GetDefaultPrimary(ctx context.Context) (domain.Group, error)
	ListDefault(ctx context.Context) ([]domain.Group, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
SessionStore
------------
Server-side session state, keyed by session id.
Load reports found=false for unknown, expired or revoked sessions.
RevokeUser bumps the user's session version so every session bound under an
older version stops loading.
*/
type SessionStore interface {
	Load(ctx context.Context, id string) (st session.State, found bool, err error)
	Save(ctx context.Context, st session.State) error
	Destroy(ctx context.Context, id string) error
	UserVersion(ctx context.Context, userID string) (int64, error)
	RevokeUser(ctx context.Context, userID string) (int64, error)
}

/*
AuthorizationPolicy
-------------------
Per-field capability predicate plus page-level actions.
*/
type AuthorizationPolicy interface {
	CheckFieldAccess(actor, target domain.User, field string) bool
	CheckAccess(actor domain.User, action string) bool
}

/*
SchemaRepository
----------------
Immutable request schemas, shared read-only across requests.
*/
type SchemaRepository interface {
	Load(kind schema.Kind) (*schema.RequestSchema, error)
}

/*
CaptchaRenderer
---------------
Turns a CAPTCHA code into a PNG image.
*/
type CaptchaRenderer interface {
	Render(code string) ([]byte, error)
}

/*
EventPublisher
--------------
Publishes account events to RabbitMQ.
Email-service consumes AccountRegistered to send activation mail.
*/
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, evt AccountRegisteredEvent) error
	PublishSettingsUpdated(ctx context.Context, evt SettingsUpdatedEvent) error
}

type AccountRegisteredEvent struct {
	UserID            string
	UserName          string
	Email             string
	Locale            string
	RequireActivation bool
}

type SettingsUpdatedEvent struct {
	UserID string
	Fields []string
}

/*
Auditor
-------
Security-relevant event log (audit.Logger).
*/
type Auditor interface {
	SpamRejected(ctx context.Context, kind string, payload map[string]string)
	LoginSuccess(ctx context.Context, userID, userName string)
	LoginFailed(ctx context.Context, identifier, reason string)
	Registered(ctx context.Context, userID, email string, active bool)
	SettingsUpdated(ctx context.Context, userID string, fields []string)
	AccessDenied(ctx context.Context, userID, what string)
	SessionsRevoked(ctx context.Context, userID string)
	Logout(ctx context.Context, userID string)
}
