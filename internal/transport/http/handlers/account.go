package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/i18n"
	"github.com/baechuer/account-service/internal/infrastructure/security"
	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/session"
	"github.com/baechuer/account-service/internal/transport/http/dto"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
)

const (
	HeaderCSRFToken = "X-CSRF-Token"
	csrfField       = "csrf_token"
)

type CSRFTokens interface {
	Issue(sessionID string) (string, error)
	Verify(token, sessionID string) error
}

type MessageRenderer interface {
	Render(msgs []domain.Message, prefs ...string) []i18n.Rendered
}

type AccountHandler struct {
	svc           *account.Service
	csrf          CSRFTokens
	msgs          MessageRenderer
	sessionTTL    time.Duration
	secureCookies bool
}

func NewAccountHandler(svc *account.Service, csrf CSRFTokens, msgs MessageRenderer, sessionTTL time.Duration, secureCookies bool) *AccountHandler {
	return &AccountHandler{
		svc:           svc,
		csrf:          csrf,
		msgs:          msgs,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

// CSRF handles GET /account/csrf. A guest without a stored session gets one
// so the token has something to bind to.
func (h *AccountHandler) CSRF(w http.ResponseWriter, r *http.Request) {
	st := currentSession(r)
	if st.ID != security.ReadSessionCookie(r) {
		if err := h.svc.EnsureSession(r.Context(), st); err != nil {
			h.fail(w, r, st, err, nil)
			return
		}
	}
	token, err := h.csrf.Issue(st.ID)
	if err != nil {
		h.fail(w, r, st, err, nil)
		return
	}
	h.setCookie(w, r, st)
	response.OK(w, dto.CSRFData{Token: token}, nil)
}

// Captcha handles GET /account/captcha
func (h *AccountHandler) Captcha(w http.ResponseWriter, r *http.Request) {
	st := currentSession(r)
	res, err := h.svc.Captcha(r.Context(), st)
	if err != nil {
		h.fail(w, r, st, err, nil)
		return
	}
	h.setCookie(w, r, res.Session)
	response.OK(w, dto.CaptchaData{Image: res.Image}, nil)
}

// Login handles POST /account/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	st := currentSession(r)
	raw, err := dto.DecodeRaw(w, r)
	if err != nil {
		h.fail(w, r, st, err, nil)
		return
	}

	ms := account.NewMessages()
	res, err := h.svc.Login(r.Context(), account.Request{Session: st, Raw: raw}, ms)
	if err != nil {
		h.fail(w, r, st, err, ms)
		return
	}

	h.setCookie(w, r, res.Session)
	response.OK(w, dto.NewAccountData(res.Session, res.User), h.render(r, ms, res.User.Locale))
}

// Register handles POST /account/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	st := currentSession(r)
	raw, err := dto.DecodeRaw(w, r)
	if err != nil {
		h.fail(w, r, st, err, nil)
		return
	}

	ms := account.NewMessages()
	res, err := h.svc.Register(r.Context(), account.Request{Session: st, Raw: raw}, ms)
	if err != nil {
		h.fail(w, r, st, err, ms)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("account_registered")

	response.Created(w, dto.NewAccountData(res.Session, res.User), h.render(r, ms, ""))
}

// Settings handles POST /account/settings
func (h *AccountHandler) Settings(w http.ResponseWriter, r *http.Request) {
	st := currentSession(r)
	raw, err := dto.DecodeRaw(w, r)
	if err != nil {
		h.fail(w, r, st, err, nil)
		return
	}
	if err := h.verifyCSRF(r, st, raw); err != nil {
		h.fail(w, r, st, err, nil)
		return
	}

	ms := account.NewMessages()
	res, err := h.svc.UpdateSettings(r.Context(), account.Request{Session: st, Raw: raw}, ms)
	if err != nil {
		h.fail(w, r, st, err, ms)
		return
	}

	h.setCookie(w, r, res.Session)
	response.OK(w, dto.NewAccountData(res.Session, res.User), h.render(r, ms, res.User.Locale))
}

// Logout handles POST /account/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	st := currentSession(r)
	raw, err := dto.DecodeRaw(w, r)
	if err != nil {
		h.fail(w, r, st, err, nil)
		return
	}
	if err := h.verifyCSRF(r, st, raw); err != nil {
		h.fail(w, r, st, err, nil)
		return
	}

	locale := h.userLocale(r.Context(), st)

	ms := account.NewMessages()
	next, err := h.svc.Logout(r.Context(), st, ms)
	if err != nil {
		h.fail(w, r, st, err, ms)
		return
	}

	security.ClearSessionCookie(w, h.secureCookies)
	response.OK(w, dto.NewAccountData(next, domain.User{}), h.render(r, ms, locale))
}

// ---- helpers ----

func currentSession(r *http.Request) session.State {
	st, _ := middleware.SessionFromContext(r.Context())
	return st
}

// verifyCSRF accepts the token from the header or the form field.
func (h *AccountHandler) verifyCSRF(r *http.Request, st session.State, raw map[string]string) error {
	token := r.Header.Get(HeaderCSRFToken)
	if token == "" {
		token = raw[csrfField]
	}
	return h.csrf.Verify(token, st.ID)
}

// setCookie (re)issues the session cookie when the session id differs from
// the one the client sent.
func (h *AccountHandler) setCookie(w http.ResponseWriter, r *http.Request, st session.State) {
	if st.ID == "" || st.ID == security.ReadSessionCookie(r) {
		return
	}
	security.SetSessionCookie(w, st.ID, h.sessionTTL, h.secureCookies)
}

func (h *AccountHandler) userLocale(ctx context.Context, st session.State) string {
	if st.IsGuest() {
		return ""
	}
	u, err := h.svc.CurrentUser(ctx, st)
	if err != nil {
		return ""
	}
	return u.Locale
}

// render prefers the user's locale, then Accept-Language.
func (h *AccountHandler) render(r *http.Request, ms *account.Messages, locale string) []i18n.Rendered {
	if ms == nil {
		return nil
	}
	return h.msgs.Render(ms.Drain(), locale, r.Header.Get("Accept-Language"))
}

func (h *AccountHandler) fail(w http.ResponseWriter, r *http.Request, st session.State, err error, ms *account.Messages) {
	response.WriteError(w, r, err, h.render(r, ms, h.userLocale(r.Context(), st)))
}
