package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindSpam           ErrKind = "spam"           // 500, indistinguishable from internal on purpose
	KindInfrastructure ErrKind = "infrastructure" // 503/500
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking sensitive details)
// - Meta: optional details (field, reason, etc.)
// - Fields: accumulated field-level violations (validation_failed / business_rule_failed)
// - Causes: accumulated business-rule failures behind one rejection
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Fields  FieldErrorSet
	Causes  []*Error
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether err carries code, either at the top level or as one
// of its accumulated causes.
func Is(err error, code string) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	if de.Code == code {
		return true
	}
	for _, c := range de.Causes {
		if c != nil && c.Code == code {
			return true
		}
	}
	return false
}

// HasKind is the Kind counterpart of Is.
func HasKind(err error, kind ErrKind) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	if de.Kind == kind {
		return true
	}
	for _, c := range de.Causes {
		if c != nil && c.Kind == kind {
			return true
		}
	}
	return false
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrInvalidForm(cause error) *Error {
	return Wrap(KindValidation, "invalid_form", "invalid form body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// ErrValidationFailed carries every field-level violation found in one request.
func ErrValidationFailed(fields FieldErrorSet) *Error {
	e := New(KindValidation, "validation_failed", "request validation failed")
	e.Fields = fields
	return e
}

// ErrBusinessRuleFailed is the single rejection raised at the pipeline
// checkpoint. Its Kind is the kind of the first recorded cause so the
// transport status reflects the most relevant failure.
func ErrBusinessRuleFailed(causes []*Error, fields FieldErrorSet) *Error {
	kind := KindValidation
	if len(causes) > 0 && causes[0] != nil {
		kind = causes[0].Kind
	}
	e := New(kind, "business_rule_failed", "request rejected")
	e.Causes = causes
	e.Fields = fields
	return e
}

func ErrLocaleNotAvailable(locale string) *Error {
	return WithMeta(New(KindValidation, "locale_not_available", "locale not available"), map[string]string{
		"locale": locale,
	})
}

func ErrCaptchaMismatch() *Error {
	return New(KindValidation, "captcha_mismatch", "captcha mismatch")
}

// ----------------------
// Spam (generic, 500)
// ----------------------

// ErrSpamRejected must stay vague: the real cause is never described.
func ErrSpamRejected() *Error {
	return New(KindSpam, "spam_rejected", "request could not be processed")
}

// ----------------------
// Auth errors (401)
// ----------------------

// IMPORTANT: use this for every login failure that must not reveal which
// part of the credential pair was wrong.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "invalid username or password")
}

// ErrPasswordInvalid is the failed fresh-credential re-check on mutations.
func ErrPasswordInvalid() *Error {
	return New(KindAuth, "password_invalid", "current password is invalid")
}

func ErrCSRFInvalid() *Error {
	return New(KindForbidden, "csrf_invalid", "invalid anti-forgery token")
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrAccessDenied() *Error {
	return New(KindForbidden, "access_denied", "access denied")
}

func ErrAccountDisabled() *Error {
	return New(KindForbidden, "account_disabled", "account disabled")
}

func ErrAccountInactive() *Error {
	return New(KindForbidden, "account_inactive", "account not activated")
}

func ErrRegistrationDisabled() *Error {
	return New(KindForbidden, "registration_disabled", "registration disabled")
}

func ErrAlreadyAuthenticated() *Error {
	return New(KindForbidden, "already_authenticated", "already signed in")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "user not found")
}

func ErrGroupNotFound() *Error {
	return New(KindNotFound, "group_not_found", "group not found")
}

func ErrMasterAccountMissing() *Error {
	return New(KindNotFound, "master_account_missing", "master account has not been created")
}

func ErrSchemaNotFound(kind string) *Error {
	return WithMeta(New(KindNotFound, "schema_not_found", "request schema not found"), map[string]string{
		"kind": kind,
	})
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrUsernameInUse() *Error {
	return New(KindConflict, "username_in_use", "username already in use")
}

func ErrEmailInUse() *Error {
	return New(KindConflict, "email_in_use", "email already in use")
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "too many requests"), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrRedisUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "redis_unavailable", "cache unavailable", cause)
}

func ErrRabbitUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "rabbit_unavailable", "message broker unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
