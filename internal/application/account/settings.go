package account

import (
	"context"
	"errors"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/policy"
	"github.com/baechuer/account-service/internal/schema"
	"github.com/baechuer/account-service/internal/validation"
)

const opSettings = "settings"

/*
UpdateSettings
--------------
Stages, in order:
  - page access (terminal)
  - current password re-check (terminal, nothing else evaluated)
  - per changed field: field authorization (terminal), then email uniqueness
    and locale membership (accumulated)
  - validate (accumulated)
  - checkpoint
  - update, then revoke other sessions when the password changed

Unchanged fields skip authorization entirely.
*/
func (s *Service) UpdateSettings(ctx context.Context, req Request, ms *Messages) (Result, error) {
	res, err := s.updateSettings(ctx, req, ms)
	s.record(opSettings, err)
	return res, err
}

// mutableFields are checked in this order. Password is handled separately
// because an empty value means "keep".
var mutableFields = []string{policy.FieldEmail, policy.FieldLocale, policy.FieldDisplayName}

func (s *Service) updateSettings(ctx context.Context, req Request, ms *Messages) (Result, error) {
	res := Result{Session: req.Session}

	actor, err := s.actor(ctx, req)
	if err != nil {
		return res, s.internal(ctx, ms, opSettings, err)
	}
	if !s.policy.CheckAccess(actor, policy.ActionAccountSettings) {
		s.audit.AccessDenied(ctx, actor.ID, policy.ActionAccountSettings)
		return res, fail(ms, domain.ErrAccessDenied(), domain.MsgAccessDenied, nil)
	}

	sch, err := s.schemas.Load(schema.KindAccountSettings)
	if err != nil {
		return res, s.internal(ctx, ms, opSettings, err)
	}
	raw := stripControlFields(sch, req.Raw)
	if err := s.checkSpam(ctx, sch, raw, ms); err != nil {
		return res, err
	}
	vals := validation.Sanitize(sch, raw)

	check := vals.String("passwordcheck")
	if check == "" || s.hasher.Compare(actor.PasswordHash, check) != nil {
		s.audit.AccessDenied(ctx, actor.ID, "password_check")
		return res, fail(ms, domain.ErrPasswordInvalid(), domain.MsgPasswordInvalid, nil)
	}

	// Only self-service edits exist today.
	target := actor
	g := newGate(ms)

	changed, err := s.authorizeChanges(ctx, actor, target, vals, g, ms)
	if err != nil {
		return res, err
	}

	out := s.engine.Validate(sch, vals)
	if !out.Accepted() {
		g.reject(out.Errors)
	}
	if err := g.checkpoint(); err != nil {
		return res, err
	}

	if len(changed) == 0 {
		ms.Success(domain.MsgSettingsUpdated, nil)
		res.User = target
		return res, nil
	}

	updated, err := s.apply(target, vals, changed)
	if err != nil {
		return res, s.internal(ctx, ms, opSettings, err)
	}
	if err := s.users.Update(ctx, updated); err != nil {
		var de *domain.Error
		if errors.As(err, &de) && de.Kind == domain.KindConflict {
			g.fail(de, domain.MsgEmailInUse, map[string]string{"email": updated.Email})
			return res, g.checkpoint()
		}
		return res, s.internal(ctx, ms, opSettings, err)
	}

	st := req.Session
	if contains(changed, policy.FieldPassword) {
		if _, err := s.sessions.RevokeUser(ctx, updated.ID); err != nil {
			return res, s.internal(ctx, ms, opSettings, err)
		}
		s.audit.SessionsRevoked(ctx, updated.ID)
		if st, err = s.bind(ctx, req.Session, updated.ID); err != nil {
			return res, s.internal(ctx, ms, opSettings, err)
		}
	}

	ms.Success(domain.MsgSettingsUpdated, nil)
	s.audit.SettingsUpdated(ctx, updated.ID, changed)
	evt := SettingsUpdatedEvent{UserID: updated.ID, Fields: changed}
	if err := s.pub.PublishSettingsUpdated(ctx, evt); err != nil {
		s.logPublishFailure(ctx, "account.settings.updated", err)
	}
	return Result{Session: st, User: updated}, nil
}

// actor resolves the session identity. Guests and stale sessions resolve to
// the zero user, which no access rule admits.
func (s *Service) actor(ctx context.Context, req Request) (domain.User, error) {
	if req.Session.IsGuest() {
		return domain.User{}, nil
	}
	u, err := s.users.GetByID(ctx, req.Session.UserID)
	if err != nil {
		if domain.Is(err, domain.ErrUserNotFound().Code) {
			return domain.User{}, nil
		}
		return domain.User{}, err
	}
	return u, nil
}

// authorizeChanges normalizes submitted mutable fields, runs the field
// authorization gate on every value that differs from target and records
// email and locale constraint failures in g. A denied field is terminal.
// Fields left out of the request take target's value and count as unchanged.
func (s *Service) authorizeChanges(ctx context.Context, actor, target domain.User, vals validation.Values, g *gate, ms *Messages) ([]string, error) {
	var changed []string

	for _, field := range mutableFields {
		if !vals.Has(field) {
			vals.Set(field, currentValue(target, field))
			continue
		}
		next := vals.String(field)
		current := currentValue(target, field)

		switch field {
		case policy.FieldEmail:
			next = domain.NormalizeIdentifier(next)
			vals.Set(field, next)
		case policy.FieldLocale:
			if c, ok := domain.CanonicalLocale(next); ok {
				next = c
				vals.Set(field, next)
			}
		}
		if next == current {
			continue
		}

		if !s.policy.CheckFieldAccess(actor, target, field) {
			s.audit.AccessDenied(ctx, actor.ID, field)
			return nil, fail(ms, domain.ErrAccessDenied(), domain.MsgAccessDenied, nil)
		}

		switch field {
		case policy.FieldEmail:
			if next != "" {
				taken, err := s.users.Exists(ctx, ByEmail, next)
				if err != nil {
					return nil, s.internal(ctx, ms, opSettings, err)
				}
				if taken {
					g.fail(domain.ErrEmailInUse(), domain.MsgEmailInUse, map[string]string{"email": next})
				}
			}
		case policy.FieldLocale:
			if !s.site.HasLocale(next) {
				g.fail(domain.ErrLocaleNotAvailable(next), domain.MsgSpecifyLocale, map[string]string{"locale": next})
			}
		}
		changed = append(changed, field)
	}

	if vals.String(policy.FieldPassword) == "" {
		vals.Delete(policy.FieldPassword, "passwordc")
		return changed, nil
	}
	if !s.policy.CheckFieldAccess(actor, target, policy.FieldPassword) {
		s.audit.AccessDenied(ctx, actor.ID, policy.FieldPassword)
		return nil, fail(ms, domain.ErrAccessDenied(), domain.MsgAccessDenied, nil)
	}
	// A new password always needs its confirmation.
	if !vals.Has("passwordc") {
		vals.Set("passwordc", "")
	}
	return append(changed, policy.FieldPassword), nil
}

// apply copies accepted values onto a copy of u. Fields not in changed keep
// their prior value.
func (s *Service) apply(u domain.User, vals validation.Values, changed []string) (domain.User, error) {
	for _, field := range changed {
		switch field {
		case policy.FieldEmail:
			u.Email = vals.String(field)
		case policy.FieldLocale:
			u.Locale = vals.String(field)
		case policy.FieldDisplayName:
			u.DisplayName = vals.String(field)
		case policy.FieldPassword:
			hash, err := s.hasher.Hash(vals.String(field))
			if err != nil {
				return u, domain.ErrHashFailed(err)
			}
			u.PasswordHash = hash
		}
	}
	return u, nil
}

func currentValue(u domain.User, field string) string {
	switch field {
	case policy.FieldEmail:
		return u.Email
	case policy.FieldLocale:
		if c, ok := domain.CanonicalLocale(u.Locale); ok {
			return c
		}
		return u.Locale
	case policy.FieldDisplayName:
		return u.DisplayName
	}
	return ""
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
