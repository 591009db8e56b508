package security

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/account-service/internal/domain"
)

// CSRFSigner issues anti-forgery tokens bound to one session id.
type CSRFSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewCSRFSigner(secret, issuer string, ttl time.Duration) *CSRFSigner {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &CSRFSigner{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

type csrfClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *CSRFSigner) Issue(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", domain.ErrMissingField("session_id")
	}
	now := s.now()
	claims := csrfClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Verify accepts token only if it is well signed, unexpired and bound to
// sessionID.
func (s *CSRFSigner) Verify(token, sessionID string) error {
	if token == "" || sessionID == "" {
		return domain.ErrCSRFInvalid()
	}
	parsed, err := jwt.ParseWithClaims(token, &csrfClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.ErrCSRFInvalid()
	}
	claims, ok := parsed.Claims.(*csrfClaims)
	if !ok || !parsed.Valid {
		return domain.ErrCSRFInvalid()
	}
	if subtle.ConstantTimeCompare([]byte(claims.SessionID), []byte(sessionID)) != 1 {
		return domain.ErrCSRFInvalid()
	}
	return nil
}
