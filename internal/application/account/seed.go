package account

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
)

// Built-in group ids. The administrator id is what ADMIN_GROUP_ID defaults to.
const (
	GroupUser          int64 = 1
	GroupAdministrator int64 = 2
)

// DefaultGroups are created by SeedMaster when missing.
func DefaultGroups() []domain.Group {
	return []domain.Group{
		{ID: GroupUser, Name: "User", IsDefault: true, IsDefaultPrimary: true, NewUserTitle: "New User"},
		{ID: GroupAdministrator, Name: "Administrator", NewUserTitle: "Site Administrator"},
	}
}

type SeederRepo interface {
	Exists(ctx context.Context, by Identifier, value string) (bool, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

type GroupSeeder interface {
	EnsureGroups(ctx context.Context, gs []domain.Group) error
}

// Master describes the master account to create.
type Master struct {
	ID          string
	UserName    string
	Email       string
	DisplayName string
	Password    string
}

// SeedMaster creates the default groups and the master account. It is safe
// to rerun: an existing master is left alone and created reports false.
func SeedMaster(ctx context.Context, groups GroupSeeder, repo SeederRepo, hasher PasswordHasher, m Master) (created bool, err error) {
	if m.ID == "" {
		return false, domain.ErrMissingField("id")
	}
	if err := groups.EnsureGroups(ctx, DefaultGroups()); err != nil {
		return false, err
	}

	exists, err := repo.Exists(ctx, ByID, m.ID)
	if err != nil {
		return false, err
	}
	if exists {
		logger.Logger.Info().Str("user_id", m.ID).Msg("[seed] master account already present")
		return false, nil
	}

	hash, err := hasher.Hash(m.Password)
	if err != nil {
		return false, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:             m.ID,
		UserName:       m.UserName,
		Email:          m.Email,
		DisplayName:    m.DisplayName,
		PasswordHash:   hash,
		Locale:         "en-US",
		Title:          "Site Administrator",
		Active:         true,
		Enabled:        true,
		PrimaryGroupID: GroupAdministrator,
		GroupIDs:       []int64{GroupUser, GroupAdministrator},
	}
	if _, err := repo.Create(ctx, u); err != nil {
		return false, err
	}

	logger.Logger.Info().Str("user_id", m.ID).Msg("[seed] master account created")
	return true, nil
}
