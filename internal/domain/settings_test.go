package domain

import "testing"

func TestCanonicalLocale(t *testing.T) {
	cases := map[string]string{
		"en_US": "en-US",
		"en-us": "en-US",
		"fr":    "fr",
	}
	for in, want := range cases {
		got, ok := CanonicalLocale(in)
		if !ok || got != want {
			t.Fatalf("CanonicalLocale(%q) = %q,%v want %q", in, got, ok, want)
		}
	}

	if _, ok := CanonicalLocale(""); ok {
		t.Fatalf("empty locale must not parse")
	}
	if _, ok := CanonicalLocale("not a locale!"); ok {
		t.Fatalf("garbage must not parse")
	}
}

func TestSiteSettings_HasLocale(t *testing.T) {
	s := SiteSettings{AvailableLocales: []string{"en_US", "fr"}}

	if !s.HasLocale("en-US") {
		t.Fatalf("expected en-US to be available")
	}
	if !s.HasLocale("fr") {
		t.Fatalf("expected fr to be available")
	}
	if s.HasLocale("de") {
		t.Fatalf("de is not configured")
	}
	if s.HasLocale("") {
		t.Fatalf("empty locale is never available")
	}
}

func TestFieldErrorSet_KeepsEveryViolation(t *testing.T) {
	var fs FieldErrorSet
	fs.Add("password", "min=8", "ACCOUNT_PASS_CHAR_LIMIT")
	fs.Add("password", "password_strength", "ACCOUNT_PASS_WEAK")
	fs.Add("email", "email", "ACCOUNT_INVALID_EMAIL")

	if len(fs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(fs))
	}
	if got := fs.ForField("password"); len(got) != 2 {
		t.Fatalf("expected 2 password entries, got %v", got)
	}
	if fs[0].Rule != "min=8" || fs[1].Rule != "password_strength" {
		t.Fatalf("order not preserved: %v", fs)
	}
}
