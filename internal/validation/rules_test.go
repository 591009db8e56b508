package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordStrength(t *testing.T) {
	e := New()
	cases := map[string]bool{
		"Password1": true,
		"password1": false,
		"PASSWORD1": false,
		"Password":  false,
		"Pässwörd9": true,
		"":          false,
	}
	for pw, want := range cases {
		got := e.v.Var(pw, "password_strength") == nil
		assert.Equal(t, want, got, "password %q", pw)
	}
}

func TestUsernameFormat(t *testing.T) {
	e := New()
	cases := map[string]bool{
		"alice":     true,
		"alice_01":  true,
		"alice-01":  false,
		"alice bob": false,
		"":          false,
	}
	for name, want := range cases {
		got := e.v.Var(name, "username_format") == nil
		assert.Equal(t, want, got, "username %q", name)
	}
}

func TestLocaleRule(t *testing.T) {
	e := New()
	assert.NoError(t, e.v.Var("en_US", "locale"))
	assert.NoError(t, e.v.Var("fr-FR", "locale"))
	assert.Error(t, e.v.Var("!!", "locale"))
}
