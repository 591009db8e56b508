package domain

import (
	"golang.org/x/text/language"
)

// SiteSettings are the administrative toggles the account pipeline consults.
type SiteSettings struct {
	MasterUserID      string
	CanRegister       bool
	EnableCaptcha     bool
	RequireActivation bool
	EmailLoginEnabled bool
	DefaultLocale     string
	AvailableLocales  []string
}

// CanonicalLocale parses a locale identifier ("en_US", "en-us", ...) into its
// BCP 47 form. ok is false when the identifier is not well-formed.
func CanonicalLocale(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	return tag.String(), true
}

// HasLocale reports whether locale belongs to the configured locale set.
// Both sides are compared in canonical form.
func (s SiteSettings) HasLocale(locale string) bool {
	want, ok := CanonicalLocale(locale)
	if !ok {
		return false
	}
	for _, l := range s.AvailableLocales {
		if c, ok := CanonicalLocale(l); ok && c == want {
			return true
		}
	}
	return false
}
