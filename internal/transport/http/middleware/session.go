package middleware

import (
	"context"
	"net/http"

	"github.com/baechuer/account-service/internal/infrastructure/security"
	ctxpkg "github.com/baechuer/account-service/internal/pkg/context"
	"github.com/baechuer/account-service/internal/session"
)

type SessionResumer interface {
	Resume(ctx context.Context, id string) (session.State, error)
}

type sessionCtxKey struct{}

func WithSession(ctx context.Context, st session.State) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, st)
}

func SessionFromContext(ctx context.Context) (session.State, bool) {
	st, ok := ctx.Value(sessionCtxKey{}).(session.State)
	return st, ok
}

// Session resumes the session named by the cookie, or starts an unsaved
// guest, and stores it in the request context.
func Session(resumer SessionResumer, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, err := resumer.Resume(r.Context(), security.ReadSessionCookie(r))
			if err != nil {
				writeErr(w, r, err)
				return
			}
			ctx := WithSession(r.Context(), st)
			if !st.IsGuest() {
				ctx = ctxpkg.WithUserID(ctx, st.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
