package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/session"
)

const (
	opLogout  = "logout"
	opCaptcha = "captcha"

	captchaLen = 5
)

// Resume loads the session named by id. A missing, expired or revoked
// session yields a fresh, unsaved guest state.
func (s *Service) Resume(ctx context.Context, id string) (session.State, error) {
	if id != "" {
		st, found, err := s.sessions.Load(ctx, id)
		if err != nil {
			return session.State{}, err
		}
		if found {
			return st, nil
		}
	}
	return newGuest()
}

// CurrentUser returns the user bound to st. Guests and users that no longer
// exist yield a zero User.
func (s *Service) CurrentUser(ctx context.Context, st session.State) (domain.User, error) {
	return s.actor(ctx, Request{Session: st})
}

// EnsureSession persists st so later requests can resume it.
func (s *Service) EnsureSession(ctx context.Context, st session.State) error {
	return s.sessions.Save(ctx, st)
}

// Logout destroys the session unconditionally and returns a fresh guest.
func (s *Service) Logout(ctx context.Context, st session.State, ms *Messages) (session.State, error) {
	next, err := s.logout(ctx, st, ms)
	s.record(opLogout, err)
	return next, err
}

func (s *Service) logout(ctx context.Context, st session.State, ms *Messages) (session.State, error) {
	if st.ID != "" {
		if err := s.sessions.Destroy(ctx, st.ID); err != nil {
			return st, s.internal(ctx, ms, opLogout, err)
		}
	}
	if !st.IsGuest() {
		s.audit.Logout(ctx, st.UserID)
	}
	guest, err := newGuest()
	if err != nil {
		return st, s.internal(ctx, ms, opLogout, err)
	}
	ms.Success(domain.MsgLogoutComplete, nil)
	return guest, nil
}

type CaptchaResult struct {
	Session session.State
	Image   string // data:image/png;base64,...
}

// Captcha issues a new code, stashes its transform in the session
// (replacing any previous one) and renders the image.
func (s *Service) Captcha(ctx context.Context, st session.State) (CaptchaResult, error) {
	res, err := s.issueCaptcha(ctx, st)
	s.record(opCaptcha, err)
	return res, err
}

func (s *Service) issueCaptcha(ctx context.Context, st session.State) (CaptchaResult, error) {
	if s.captcha == nil {
		return CaptchaResult{Session: st}, domain.ErrInternal(errNoRenderer)
	}
	code, err := captchaCode()
	if err != nil {
		return CaptchaResult{Session: st}, domain.ErrRandomFailed(err)
	}
	img, err := s.captcha.Render(code)
	if err != nil {
		return CaptchaResult{Session: st}, domain.ErrInternal(err)
	}

	next := st.WithCaptcha(code)
	if err := s.sessions.Save(ctx, next); err != nil {
		return CaptchaResult{Session: st}, err
	}
	return CaptchaResult{
		Session: next,
		Image:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(img),
	}, nil
}

func captchaCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:captchaLen], nil
}

func newGuest() (session.State, error) {
	id, err := session.NewID()
	if err != nil {
		return session.State{}, domain.ErrRandomFailed(err)
	}
	return session.Guest(id), nil
}
