package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/account-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	CSRF(w http.ResponseWriter, r *http.Request)
	Captcha(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	Settings(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health  HealthHandler
	Account AccountHandler

	SessionMW func(http.Handler) http.Handler
	OriginMW  func(http.Handler) http.Handler

	LoginRL    func(http.Handler) http.Handler
	RegisterRL func(http.Handler) http.Handler
	SettingsRL func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler { return next }

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Account == nil {
		return nil, fmt.Errorf("nil Account handler")
	}
	if deps.SessionMW == nil {
		return nil, fmt.Errorf("nil Session middleware")
	}
	if deps.OriginMW == nil {
		return nil, fmt.Errorf("nil Origin middleware")
	}
	for _, rl := range []*func(http.Handler) http.Handler{&deps.LoginRL, &deps.RegisterRL, &deps.SettingsRL} {
		if *rl == nil {
			*rl = passthrough
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	r.Get("/healthz", deps.Health.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/account", func(r chi.Router) {
		r.Use(deps.SessionMW)

		r.Get("/csrf", deps.Account.CSRF)
		r.Get("/captcha", deps.Account.Captcha)

		r.With(deps.OriginMW, deps.LoginRL).Post("/login", deps.Account.Login)
		r.With(deps.OriginMW, deps.RegisterRL).Post("/register", deps.Account.Register)
		r.With(deps.OriginMW, deps.SettingsRL).Post("/settings", deps.Account.Settings)
		r.With(deps.OriginMW).Post("/logout", deps.Account.Logout)
	})

	return r, nil
}
