package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/account-service/internal/domain"
)

// BcryptHasher implements account.PasswordHasher. Every Hash call salts
// anew, so equal passwords never share a hash.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

// Compare returns nil on a match. A malformed stored hash is reported the
// same way as a mismatch.
func (h *BcryptHasher) Compare(hash string, password string) error {
	if hash == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
