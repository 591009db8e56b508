package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
)

// OriginCheck validates Origin/Referer headers on state-changing requests.
// Same-host requests and the configured origins are accepted.
func OriginCheck(allowedOrigins []string, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	allowedHosts := make(map[string]struct{})
	for _, origin := range allowedOrigins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			allowedHosts[strings.ToLower(u.Host)] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = r.Header.Get("Referer")
			}
			if origin == "" {
				writeErr(w, r, domain.ErrCSRFInvalid())
				return
			}

			u, err := url.Parse(origin)
			if err != nil || u.Host == "" {
				writeErr(w, r, domain.ErrCSRFInvalid())
				return
			}

			host := strings.ToLower(u.Host)
			if host != strings.ToLower(r.Host) {
				if _, ok := allowedHosts[host]; !ok {
					writeErr(w, r, domain.ErrCSRFInvalid())
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultAllowedOrigins returns sensible defaults for local development
func DefaultAllowedOrigins() []string {
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
	}
}
