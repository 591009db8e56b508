package response

import (
	"net/http"

	ctxpkg "github.com/baechuer/account-service/internal/pkg/context"
)

// RequestIDFromContext extracts the id set by the RequestID middleware.
func RequestIDFromContext(r *http.Request) string {
	return ctxpkg.GetRequestID(r.Context())
}
