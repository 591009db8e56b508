package response

import (
	"errors"
	"net/http"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/i18n"
)

type ErrorBody struct {
	Error    ErrorPayload    `json:"error"`
	Messages []i18n.Rendered `json:"messages"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	Fields    []FieldPayload    `json:"fields,omitempty"`
	Causes    []string          `json:"causes,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

type FieldPayload struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Code  string `json:"code"`
}

// WriteError converts a domain error into a consistent JSON HTTP error response.
// Non-domain errors are treated as internal errors (500) without leaking details.
// Spam rejections are written exactly like internal errors.
func WriteError(w http.ResponseWriter, r *http.Request, err error, msgs []i18n.Rendered) {
	status := http.StatusInternalServerError
	payload := ErrorPayload{
		Code:    "internal_error",
		Message: "internal error",
	}

	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindSpam {
		status = statusFromKind(de.Kind)
		payload.Code = de.Code
		payload.Message = de.Message
		payload.Meta = de.Meta
		for _, fe := range de.Fields {
			payload.Fields = append(payload.Fields, FieldPayload{Field: fe.Field, Rule: fe.Rule, Code: fe.Code})
		}
		for _, c := range de.Causes {
			if c != nil {
				payload.Causes = append(payload.Causes, c.Code)
			}
		}
	}
	payload.RequestID = RequestIDFromContext(r)

	if status == http.StatusTooManyRequests && de != nil {
		if s := de.Meta["retry_after"]; s != "" {
			w.Header().Set("Retry-After", s)
		}
	}
	if msgs == nil {
		msgs = []i18n.Rendered{}
	}
	WriteJSON(w, status, ErrorBody{Error: payload, Messages: msgs})
}

// statusFromKind maps domain error kinds to HTTP status codes.
func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	case domain.KindInternal, domain.KindSpam:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
