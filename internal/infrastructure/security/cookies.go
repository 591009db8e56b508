package security

import (
	"net/http"
	"time"
)

const SessionCookieName = "sid"

func cookieName(secure bool) string {
	if secure {
		return "__Host-" + SessionCookieName
	}
	return SessionCookieName
}

func SetSessionCookie(w http.ResponseWriter, id string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(secure),
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure, // prod=true, dev=false
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(secure),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// ReadSessionCookie prefers the __Host- cookie and falls back to the plain
// one used by local non-HTTPS development.
func ReadSessionCookie(r *http.Request) string {
	if c, err := r.Cookie("__Host-" + SessionCookieName); err == nil {
		return c.Value
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
