package middleware

import (
	"net/http"

	"github.com/google/uuid"

	ctxpkg "github.com/baechuer/account-service/internal/pkg/context"
)

const HeaderXRequestID = "X-Request-Id"

// WriteErrFunc renders an error produced by a middleware.
type WriteErrFunc func(w http.ResponseWriter, r *http.Request, err error)

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)

		ctx := ctxpkg.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
