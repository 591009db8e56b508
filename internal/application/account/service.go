package account

import (
	"context"
	"errors"
	"sync"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/session"
	"github.com/baechuer/account-service/internal/validation"
)

type Service struct {
	users    UserRepo
	groups   GroupRepo
	hasher   PasswordHasher
	sessions SessionStore
	schemas  SchemaRepository
	policy   AuthorizationPolicy
	pub      EventPublisher
	captcha  CaptchaRenderer
	audit    Auditor
	observe  func(op, outcome string)

	engine *validation.Engine
	site   domain.SiteSettings

	dummyOnce sync.Once
	dummy     string
}

type Config struct {
	Site domain.SiteSettings
}

func NewService(
	users UserRepo,
	groups GroupRepo,
	hasher PasswordHasher,
	sessions SessionStore,
	schemas SchemaRepository,
	policy AuthorizationPolicy,
	pub EventPublisher,
	cfg Config,
) *Service {
	return &Service{
		users:    users,
		groups:   groups,
		hasher:   hasher,
		sessions: sessions,
		schemas:  schemas,
		policy:   policy,
		pub:      pub,
		audit:    nopAuditor{},
		observe:  func(string, string) {},
		engine:   validation.New(),
		site:     cfg.Site,
	}
}

func (s *Service) WithAudit(a Auditor) *Service {
	if a != nil {
		s.audit = a
	}
	return s
}

// WithMetrics registers a callback invoked once per operation outcome.
func (s *Service) WithMetrics(fn func(op, outcome string)) *Service {
	if fn != nil {
		s.observe = fn
	}
	return s
}

func (s *Service) WithCaptchaRenderer(r CaptchaRenderer) *Service {
	s.captcha = r
	return s
}

// Site returns the settings the service was built with.
func (s *Service) Site() domain.SiteSettings { return s.site }

// Request is one raw submission together with the caller's session.
type Request struct {
	Session session.State
	Raw     map[string]string
}

// Result carries the session to continue with, which may have been rotated,
// and the affected user when there is one.
type Result struct {
	Session session.State
	User    domain.User
}

// Operation outcomes reported to the metrics callback.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeSpam     = "spam"
	OutcomeError    = "error"
)

func (s *Service) record(op string, err error) {
	switch {
	case err == nil:
		s.observe(op, OutcomeSuccess)
	case domain.HasKind(err, domain.KindSpam):
		s.observe(op, OutcomeSpam)
	case domain.HasKind(err, domain.KindInfrastructure), domain.HasKind(err, domain.KindInternal):
		s.observe(op, OutcomeError)
	default:
		s.observe(op, OutcomeRejected)
	}
}

// fail appends a terminal danger message and returns err.
func fail(ms *Messages, err *domain.Error, code string, params map[string]string) error {
	ms.Danger(code, params)
	return err
}

// internal reports an unexpected collaborator failure.
func (s *Service) internal(ctx context.Context, ms *Messages, op string, err error) error {
	logger.WithCtx(ctx).Error().Err(err).Str("op", op).Msg("account operation failed")
	ms.Danger(domain.MsgServerError, nil)
	return err
}

// dummyHash is compared against when a login identifier matches nobody so
// unknown and known users cost the same.
func (s *Service) dummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("account-service-timing-equalizer")
		if err == nil {
			s.dummy = h
		}
	})
	return s.dummy
}

type nopAuditor struct{}

func (nopAuditor) SpamRejected(context.Context, string, map[string]string) {}
func (nopAuditor) LoginSuccess(context.Context, string, string)           {}
func (nopAuditor) LoginFailed(context.Context, string, string)            {}
func (nopAuditor) Registered(context.Context, string, string, bool)       {}
func (nopAuditor) SettingsUpdated(context.Context, string, []string)      {}
func (nopAuditor) AccessDenied(context.Context, string, string)           {}
func (nopAuditor) SessionsRevoked(context.Context, string)                {}
func (nopAuditor) Logout(context.Context, string)                         {}

var errNoRenderer = errors.New("captcha renderer not configured")
