package session

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// State is the request-scoped view of one session. It is passed into and
// returned from the account service; nothing reads it from ambient state.
type State struct {
	ID          string
	UserID      string // empty for guests
	CaptchaHash string // one-way transform of the last issued CAPTCHA code
	Version     int64  // user's session version when the identity was bound
}

// IsGuest reports whether no identity is bound.
func (s State) IsGuest() bool { return s.UserID == "" }

// Guest returns an anonymous state carrying id.
func Guest(id string) State { return State{ID: id} }

// WithCaptcha returns a copy of s stashing the transform of code.
func (s State) WithCaptcha(code string) State {
	s.CaptchaHash = HashCaptcha(code)
	return s
}

// CaptchaMatches reports whether answer matches the stashed CAPTCHA.
// An empty stash or answer never matches.
func (s State) CaptchaMatches(answer string) bool {
	if s.CaptchaHash == "" || strings.TrimSpace(answer) == "" {
		return false
	}
	got := HashCaptcha(answer)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.CaptchaHash)) == 1
}

// HashCaptcha is the one-way transform stored in the session. Codes are
// compared case-insensitively.
func HashCaptcha(code string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(code))))
	return hex.EncodeToString(sum[:])
}

// NewID returns a URL-safe random session id.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
