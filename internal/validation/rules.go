package validation

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/account-service/internal/domain"
)

// validatePasswordStrength is a custom validator that checks if password has:
// - At least one uppercase letter
// - At least one lowercase letter
// - At least one number
func validatePasswordStrength(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	hasUpper := false
	hasLower := false
	hasNumber := false

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		}
		if unicode.IsLower(char) {
			hasLower = true
		}
		if unicode.IsNumber(char) {
			hasNumber = true
		}
		if hasUpper && hasLower && hasNumber {
			return true
		}
	}

	return hasUpper && hasLower && hasNumber
}

// validateUsernameFormat checks if username contains only letters, numbers and underscores
func validateUsernameFormat(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	if len(username) == 0 {
		return false
	}

	for _, char := range username {
		if !unicode.IsLetter(char) && !unicode.IsNumber(char) && char != '_' {
			return false
		}
	}

	return true
}

// validateLocale accepts well-formed locale identifiers. Membership in the
// site's locale set is a business rule and is checked elsewhere.
func validateLocale(fl validator.FieldLevel) bool {
	_, ok := domain.CanonicalLocale(fl.Field().String())
	return ok
}
