package http_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/i18n"
	"github.com/baechuer/account-service/internal/infrastructure/captcha"
	"github.com/baechuer/account-service/internal/infrastructure/memory"
	"github.com/baechuer/account-service/internal/infrastructure/security"
	"github.com/baechuer/account-service/internal/policy"
	"github.com/baechuer/account-service/internal/schema"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
	"github.com/baechuer/account-service/internal/validation"
)

const (
	masterID       = "master-1"
	masterPassword = "MasterPass1"
)

// testServer is the account handler mounted the way the router mounts it,
// over in-memory adapters.
type testServer struct {
	t        *testing.T
	handler  http.Handler
	users    *memory.UserRepo
	sessions *memory.SessionStore
	cookie   string // current session cookie value
}

func newTestServer(t *testing.T, mut func(*domain.SiteSettings)) *testServer {
	t.Helper()
	ctx := context.Background()

	site := domain.SiteSettings{
		MasterUserID:      masterID,
		CanRegister:       true,
		EmailLoginEnabled: true,
		DefaultLocale:     "en-US",
		AvailableLocales:  []string{"en-US", "fr-FR"},
	}
	if mut != nil {
		mut(&site)
	}

	users := memory.NewUserRepo()
	groups := memory.NewGroupRepo()
	sessions := memory.NewSessionStore(time.Hour)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)

	schemas, err := schema.NewRepository(schema.Defaults(), validation.New().CheckTag)
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	pol, err := policy.Default([]string{"email", "locale", "display_name", "password"}, 2)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}

	svc := account.NewService(users, groups, hasher, sessions, schemas, pol, memory.NewNoopPublisher(), account.Config{Site: site}).
		WithCaptchaRenderer(captcha.NewRenderer())

	if _, err := account.SeedMaster(ctx, groups, users, hasher, account.Master{
		ID:          masterID,
		UserName:    "master",
		Email:       "master@example.com",
		DisplayName: "Master",
		Password:    masterPassword,
	}); err != nil {
		t.Fatalf("seed master: %v", err)
	}

	renderer, err := i18n.New()
	if err != nil {
		t.Fatalf("i18n: %v", err)
	}

	writeErr := func(w http.ResponseWriter, r *http.Request, err error) { response.WriteError(w, r, err, nil) }
	h := NewAccountHandler(svc, security.NewCSRFSigner("test-secret", "account-service", time.Hour), renderer, time.Hour, false)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/account", func(r chi.Router) {
		r.Use(middleware.Session(svc, writeErr))
		r.Get("/csrf", h.CSRF)
		r.Get("/captcha", h.Captcha)
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/settings", h.Settings)
		r.Post("/logout", h.Logout)
	})

	return &testServer{t: t, handler: r, users: users, sessions: sessions}
}

// do sends one request carrying the current cookie and remembers any
// session cookie the response sets.
func (s *testServer) do(method, path string, form url.Values, header map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	if s.cookie != "" {
		req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: s.cookie})
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	for _, c := range rr.Result().Cookies() {
		if c.Name == security.SessionCookieName {
			if c.MaxAge < 0 {
				s.cookie = ""
			} else {
				s.cookie = c.Value
			}
		}
	}
	return rr
}

func (s *testServer) csrfToken() string {
	s.t.Helper()
	rr := s.do(http.MethodGet, "/account/csrf", nil, nil)
	if rr.Code != http.StatusOK {
		s.t.Fatalf("csrf: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Data struct {
			Token string `json:"csrf_token"`
		} `json:"data"`
	}
	mustDecode(s.t, rr, &out)
	return out.Data.Token
}

func (s *testServer) login(userName, password string) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(http.MethodPost, "/account/login", url.Values{
		"user_name": {userName},
		"password":  {password},
	}, nil)
}

// envelope is the union of the success and error bodies.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code   string `json:"code"`
		Fields []struct {
			Field string `json:"field"`
			Code  string `json:"code"`
		} `json:"fields"`
		Causes []string `json:"causes"`
	} `json:"error"`
	Messages []i18n.Rendered `json:"messages"`
}

func mustDecode(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("decode: %v body=%s", err, rr.Body.String())
	}
}

func mustEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	mustDecode(t, rr, &env)
	return env
}

func messageCodes(env envelope) []string {
	out := make([]string, 0, len(env.Messages))
	for _, m := range env.Messages {
		out = append(out, m.Code)
	}
	return out
}

func registerForm(mut func(url.Values)) url.Values {
	f := url.Values{
		"spiderbro":    {"http://"},
		"user_name":    {"bob_1"},
		"display_name": {"Bob Builder"},
		"email":        {"bob@example.com"},
		"password":     {"Builder123"},
		"passwordc":    {"Builder123"},
	}
	if mut != nil {
		mut(f)
	}
	return f
}

var errProbe = errors.New("probe failed")
