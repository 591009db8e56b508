package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubHealth struct{}

func (stubHealth) Healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

// stubAccount answers with the handler name so routing can be asserted.
type stubAccount struct{}

func named(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(name))
	}
}

func (stubAccount) CSRF(w http.ResponseWriter, r *http.Request)     { named("csrf")(w, r) }
func (stubAccount) Captcha(w http.ResponseWriter, r *http.Request)  { named("captcha")(w, r) }
func (stubAccount) Login(w http.ResponseWriter, r *http.Request)    { named("login")(w, r) }
func (stubAccount) Register(w http.ResponseWriter, r *http.Request) { named("register")(w, r) }
func (stubAccount) Settings(w http.ResponseWriter, r *http.Request) { named("settings")(w, r) }
func (stubAccount) Logout(w http.ResponseWriter, r *http.Request)   { named("logout")(w, r) }

// tagMW records that it ran by appending to a response header.
func tagMW(tag string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-MW", tag)
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h, err := New(Deps{
		Health:     stubHealth{},
		Account:    stubAccount{},
		SessionMW:  tagMW("session"),
		OriginMW:   tagMW("origin"),
		LoginRL:    tagMW("rl-login"),
		RegisterRL: tagMW("rl-register"),
		SettingsRL: tagMW("rl-settings"),
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return h
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Fatalf("expected error for empty deps")
	}
	if _, err := New(Deps{Health: stubHealth{}, Account: stubAccount{}}); err == nil {
		t.Fatalf("expected error for missing middlewares")
	}
	if _, err := New(Deps{Health: stubHealth{}, Account: stubAccount{}, SessionMW: tagMW("s"), OriginMW: tagMW("o")}); err != nil {
		t.Fatalf("rate limiters are optional, got %v", err)
	}
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(t)

	cases := []struct {
		method, path string
		body         string
		mws          string
	}{
		{http.MethodGet, "/account/csrf", "csrf", "session"},
		{http.MethodGet, "/account/captcha", "captcha", "session"},
		{http.MethodPost, "/account/login", "login", "session,origin,rl-login"},
		{http.MethodPost, "/account/register", "register", "session,origin,rl-register"},
		{http.MethodPost, "/account/settings", "settings", "session,origin,rl-settings"},
		{http.MethodPost, "/account/logout", "logout", "session,origin"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200, got %d", tc.method, tc.path, rr.Code)
		}
		if rr.Body.String() != tc.body {
			t.Fatalf("%s %s: expected %q, got %q", tc.method, tc.path, tc.body, rr.Body.String())
		}
		if got := strings.Join(rr.Header().Values("X-MW"), ","); got != tc.mws {
			t.Fatalf("%s %s: expected middlewares %q, got %q", tc.method, tc.path, tc.mws, got)
		}
		if rr.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s %s: expected request id header", tc.method, tc.path)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "account_service_http_requests_total") {
		t.Fatalf("metrics: expected prometheus output, got %d", rr.Code)
	}
}

func TestWrongMethod(t *testing.T) {
	h := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/account/login", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
