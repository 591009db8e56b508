package account

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/schema"
	"github.com/baechuer/account-service/internal/session"
)

const opLogin = "login"

/*
Login
-----
An already-authenticated session succeeds trivially with a warning.
Otherwise: sanitize + validate, master-account precondition, checkpoint,
then authenticate and bind.

Unknown user, email login disabled for an email-shaped identifier and wrong
password all fail with the same code and message. Disabled and inactive
accounts get their own messages.
*/
func (s *Service) Login(ctx context.Context, req Request, ms *Messages) (Result, error) {
	res, err := s.login(ctx, req, ms)
	s.record(opLogin, err)
	return res, err
}

func (s *Service) login(ctx context.Context, req Request, ms *Messages) (Result, error) {
	res := Result{Session: req.Session}

	if !req.Session.IsGuest() {
		ms.Warning(domain.MsgLoginAlreadyComplete, nil)
		return res, nil
	}

	sch, err := s.schemas.Load(schema.KindLogin)
	if err != nil {
		return res, s.internal(ctx, ms, opLogin, err)
	}
	raw := stripControlFields(sch, req.Raw)
	if err := s.checkSpam(ctx, sch, raw, ms); err != nil {
		return res, err
	}

	g := newGate(ms)
	vals := s.sanitizeAndValidate(sch, raw, g)

	exists, err := s.masterExists(ctx)
	if err != nil {
		return res, s.internal(ctx, ms, opLogin, err)
	}
	if !exists {
		g.fail(domain.ErrMasterAccountMissing(), domain.MsgMasterAccountNotExists, nil)
	}
	if err := g.checkpoint(); err != nil {
		return res, err
	}

	u, err := s.authenticate(ctx, vals.String("user_name"), vals.String("password"), ms)
	if err != nil {
		return res, err
	}

	st, err := s.bind(ctx, req.Session, u.ID)
	if err != nil {
		return res, s.internal(ctx, ms, opLogin, err)
	}

	ms.Success(domain.MsgWelcome, u.Export())
	s.audit.LoginSuccess(ctx, u.ID, u.UserName)
	return Result{Session: st, User: u}, nil
}

// authenticate resolves identifier to a user and verifies password.
func (s *Service) authenticate(ctx context.Context, identifier, password string, ms *Messages) (domain.User, error) {
	identifier = domain.NormalizeIdentifier(identifier)
	byEmail := s.engine.IsEmail(identifier)

	invalid := func(reason string) (domain.User, error) {
		s.audit.LoginFailed(ctx, identifier, reason)
		return domain.User{}, fail(ms, domain.ErrInvalidCredentials(), domain.MsgUserOrPassInvalid, nil)
	}

	if byEmail && !s.site.EmailLoginEnabled {
		_ = s.hasher.Compare(s.dummyHash(), password)
		return invalid("email_login_disabled")
	}

	var (
		u   domain.User
		err error
	)
	if byEmail {
		u, err = s.users.GetByEmail(ctx, identifier)
	} else {
		u, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if domain.Is(err, domain.ErrUserNotFound().Code) {
			_ = s.hasher.Compare(s.dummyHash(), password)
			return invalid("unknown_user")
		}
		return domain.User{}, s.internal(ctx, ms, opLogin, err)
	}

	if !u.Enabled {
		s.audit.LoginFailed(ctx, identifier, "disabled")
		return domain.User{}, fail(ms, domain.ErrAccountDisabled(), domain.MsgAccountDisabled, nil)
	}
	if !u.Active {
		s.audit.LoginFailed(ctx, identifier, "inactive")
		return domain.User{}, fail(ms, domain.ErrAccountInactive(), domain.MsgAccountInactive, nil)
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return invalid("bad_password")
	}
	return u, nil
}

// bind attaches userID to a freshly issued session id and drops the old
// session, so a pre-login id never carries an identity.
func (s *Service) bind(ctx context.Context, prev session.State, userID string) (session.State, error) {
	id, err := session.NewID()
	if err != nil {
		return prev, domain.ErrRandomFailed(err)
	}
	ver, err := s.sessions.UserVersion(ctx, userID)
	if err != nil {
		return prev, err
	}
	st := session.State{ID: id, UserID: userID, Version: ver}
	if err := s.sessions.Save(ctx, st); err != nil {
		return prev, err
	}
	if prev.ID != "" && prev.ID != id {
		if err := s.sessions.Destroy(ctx, prev.ID); err != nil {
			logger.WithCtx(ctx).Warn().Err(err).Msg("destroy previous session failed")
		}
	}
	return st, nil
}
