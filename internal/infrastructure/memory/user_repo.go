package memory

import (
	"context"
	"sync"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
)

// UserRepo keeps users in process. The single mutex serializes writes with
// their uniqueness checks.
type UserRepo struct {
	mu     sync.RWMutex
	byID   map[string]domain.User
	byName map[string]string // lower(user_name) -> userID
	byMail map[string]string // lower(email) -> userID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:   make(map[string]domain.User),
		byName: make(map[string]string),
		byMail: make(map[string]string),
	}
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return clone(u), nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, userName string) (domain.User, error) {
	return r.lookup(r.byName, userName)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.lookup(r.byMail, email)
}

func (r *UserRepo) lookup(index map[string]string, key string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := index[domain.NormalizeIdentifier(key)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepo) Exists(ctx context.Context, by account.Identifier, value string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ok bool
	switch by {
	case account.ByID:
		_, ok = r.byID[value]
	case account.ByUserName:
		_, ok = r.byName[domain.NormalizeIdentifier(value)]
	case account.ByEmail:
		_, ok = r.byMail[domain.NormalizeIdentifier(value)]
	default:
		return false, domain.ErrInvalidField("identifier", string(by))
	}
	return ok, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	u.UserName = domain.NormalizeIdentifier(u.UserName)
	u.Email = domain.NormalizeIdentifier(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[u.UserName]; exists {
		return domain.User{}, domain.ErrUsernameInUse()
	}
	if _, exists := r.byMail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailInUse()
	}

	u = clone(u)
	r.byID[u.ID] = u
	r.byName[u.UserName] = u.ID
	r.byMail[u.Email] = u.ID
	return clone(u), nil
}

func (r *UserRepo) Update(ctx context.Context, u domain.User) error {
	u.Email = domain.NormalizeIdentifier(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.byID[u.ID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	if owner, exists := r.byMail[u.Email]; exists && owner != u.ID {
		return domain.ErrEmailInUse()
	}

	// user_name is immutable
	u.UserName = prev.UserName
	delete(r.byMail, prev.Email)
	r.byMail[u.Email] = u.ID
	r.byID[u.ID] = clone(u)
	return nil
}

func clone(u domain.User) domain.User {
	u.GroupIDs = append([]int64(nil), u.GroupIDs...)
	return u
}
