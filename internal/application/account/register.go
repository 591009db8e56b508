package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/schema"
	"github.com/baechuer/account-service/internal/validation"
)

const opRegister = "register"

/*
Register
--------
Stages, in order:
  - spam filter (terminal, generic)
  - sanitize + validate (accumulated)
  - business rules: master account, registration toggle, guest session;
    then captcha and both uniqueness checks (accumulated)
  - checkpoint
  - create

Uniqueness is checked here for early reporting; the repository enforces it
again at write time.
*/
func (s *Service) Register(ctx context.Context, req Request, ms *Messages) (Result, error) {
	res, err := s.register(ctx, req, ms)
	s.record(opRegister, err)
	return res, err
}

func (s *Service) register(ctx context.Context, req Request, ms *Messages) (Result, error) {
	res := Result{Session: req.Session}

	sch, err := s.schemas.Load(schema.KindRegister)
	if err != nil {
		return res, s.internal(ctx, ms, opRegister, err)
	}
	raw := stripControlFields(sch, req.Raw)

	if err := s.checkSpam(ctx, sch, raw, ms); err != nil {
		return res, err
	}

	g := newGate(ms)
	vals := s.sanitizeAndValidate(sch, raw, g)

	ok, err := s.registrationOpen(ctx, req, g)
	if err != nil {
		return res, s.internal(ctx, ms, opRegister, err)
	}
	if ok {
		if err := s.checkRegistrationData(ctx, req, vals, g); err != nil {
			return res, s.internal(ctx, ms, opRegister, err)
		}
	}
	if err := g.checkpoint(); err != nil {
		return res, err
	}

	u, err := s.create(ctx, vals)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) && de.Kind == domain.KindConflict {
			g.fail(de, conflictMessage(de), conflictParams(de, vals))
			return res, g.checkpoint()
		}
		return res, s.internal(ctx, ms, opRegister, err)
	}

	if s.site.RequireActivation {
		ms.Success(domain.MsgRegistrationCompleteType2, map[string]string{"email": u.Email})
	} else {
		ms.Success(domain.MsgRegistrationCompleteType1, nil)
	}
	s.audit.Registered(ctx, u.ID, u.Email, u.Active)

	evt := AccountRegisteredEvent{
		UserID:            u.ID,
		UserName:          u.UserName,
		Email:             u.Email,
		Locale:            u.Locale,
		RequireActivation: s.site.RequireActivation,
	}
	if err := s.pub.PublishAccountRegistered(ctx, evt); err != nil {
		s.logPublishFailure(ctx, "account.registered", err)
	}

	res.User = u
	return res, nil
}

// registrationOpen evaluates the preconditions that make the remaining
// registration checks meaningful. Every failure is recorded.
func (s *Service) registrationOpen(ctx context.Context, req Request, g *gate) (bool, error) {
	open := true

	exists, err := s.masterExists(ctx)
	if err != nil {
		return false, err
	}
	if !exists {
		g.fail(domain.ErrMasterAccountMissing(), domain.MsgMasterAccountNotExists, nil)
		open = false
	}
	if !s.site.CanRegister {
		g.fail(domain.ErrRegistrationDisabled(), domain.MsgRegistrationDisabled, nil)
		open = false
	}
	if !req.Session.IsGuest() {
		g.fail(domain.ErrAlreadyAuthenticated(), domain.MsgRegistrationLogout, nil)
		open = false
	}
	return open, nil
}

// checkRegistrationData runs captcha and both uniqueness checks. The
// uniqueness checks always both run.
func (s *Service) checkRegistrationData(ctx context.Context, req Request, vals validation.Values, g *gate) error {
	if s.site.EnableCaptcha && !req.Session.CaptchaMatches(vals.String("captcha")) {
		g.fail(domain.ErrCaptchaMismatch(), domain.MsgCaptchaFail, nil)
	}

	if name := domain.NormalizeIdentifier(vals.String("user_name")); name != "" {
		taken, err := s.users.Exists(ctx, ByUserName, name)
		if err != nil {
			return err
		}
		if taken {
			g.fail(domain.ErrUsernameInUse(), domain.MsgUsernameInUse, map[string]string{"user_name": name})
		}
	}
	if email := domain.NormalizeIdentifier(vals.String("email")); email != "" {
		taken, err := s.users.Exists(ctx, ByEmail, email)
		if err != nil {
			return err
		}
		if taken {
			g.fail(domain.ErrEmailInUse(), domain.MsgEmailInUse, map[string]string{"email": email})
		}
	}
	return nil
}

// create builds and persists a new account from accepted values.
func (s *Service) create(ctx context.Context, vals validation.Values) (domain.User, error) {
	primary, err := s.groups.GetDefaultPrimary(ctx)
	if err != nil {
		return domain.User{}, err
	}
	defaults, err := s.groups.ListDefault(ctx)
	if err != nil {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(vals.String("password"))
	if err != nil {
		return domain.User{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:             uuid.NewString(),
		UserName:       domain.NormalizeIdentifier(vals.String("user_name")),
		Email:          domain.NormalizeIdentifier(vals.String("email")),
		DisplayName:    vals.String("display_name"),
		PasswordHash:   hash,
		Locale:         s.site.DefaultLocale,
		Title:          primary.NewUserTitle,
		Active:         !s.site.RequireActivation,
		Enabled:        true,
		PrimaryGroupID: primary.ID,
	}
	u.AddGroup(primary.ID)
	for _, grp := range defaults {
		u.AddGroup(grp.ID)
	}
	return s.users.Create(ctx, u)
}

func conflictMessage(de *domain.Error) string {
	if de.Code == domain.ErrEmailInUse().Code {
		return domain.MsgEmailInUse
	}
	return domain.MsgUsernameInUse
}

func conflictParams(de *domain.Error, vals validation.Values) map[string]string {
	if de.Code == domain.ErrEmailInUse().Code {
		return map[string]string{"email": domain.NormalizeIdentifier(vals.String("email"))}
	}
	return map[string]string{"user_name": domain.NormalizeIdentifier(vals.String("user_name"))}
}

func (s *Service) logPublishFailure(ctx context.Context, event string, err error) {
	logger.WithCtx(ctx).Warn().Err(err).Str("event", event).Msg("event publish failed")
}
