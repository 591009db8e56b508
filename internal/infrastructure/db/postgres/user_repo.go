package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
)

const uniqueViolation = "23505"

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func toDomainUser(ur userRow, groups []int64) domain.User {
	return domain.User{
		ID:             ur.ID,
		UserName:       ur.UserName,
		Email:          ur.Email,
		DisplayName:    ur.DisplayName,
		PasswordHash:   ur.PasswordHash,
		Locale:         ur.Locale,
		Title:          ur.Title,
		Active:         ur.Active,
		Enabled:        ur.Enabled,
		PrimaryGroupID: ur.PrimaryGroupID.Int64,
		GroupIDs:       groups,
	}
}

// mapWriteErr turns unique violations into the matching conflict error.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return domain.ErrEmailInUse()
		}
		return domain.ErrUsernameInUse()
	}
	return domain.ErrDBUnavailable(err)
}

func nullGroup(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg string) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1;`

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	groups, err := r.groupIDs(ctx, ur.ID)
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(ur, groups), nil
}

func (r *UserRepo) groupIDs(ctx context.Context, userID string) ([]int64, error) {
	const q = `SELECT group_id FROM user_groups WHERE user_id = $1 ORDER BY group_id;`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return ids, nil
}

func replaceGroups(ctx context.Context, tx *sql.Tx, userID string, ids []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_groups WHERE user_id = $1;`, userID); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2);`, userID, id); err != nil {
			return err
		}
	}
	return nil
}

// ---------- account.UserRepo ----------

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	return r.getOne(ctx, "id = $1", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, userName string) (domain.User, error) {
	userName = domain.NormalizeIdentifier(userName)
	if userName == "" {
		return domain.User{}, domain.ErrMissingField("user_name")
	}
	return r.getOne(ctx, "lower(user_name) = $1", userName)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = domain.NormalizeIdentifier(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	return r.getOne(ctx, "lower(email) = $1", email)
}

func (r *UserRepo) Exists(ctx context.Context, by account.Identifier, value string) (bool, error) {
	var q string
	switch by {
	case account.ByID:
		q = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1);`
		value = strings.TrimSpace(value)
	case account.ByUserName:
		q = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(user_name) = $1);`
		value = domain.NormalizeIdentifier(value)
	case account.ByEmail:
		q = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = $1);`
		value = domain.NormalizeIdentifier(value)
	default:
		return false, domain.ErrInvalidField("identifier", string(by))
	}

	var ok bool
	if err := r.db.QueryRowContext(ctx, q, value).Scan(&ok); err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return ok, nil
}

// Create inserts the user and its memberships in one transaction. The
// unique indexes on lower(user_name) and lower(email) make concurrent
// registrations of the same identity fail with a conflict.
func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.UserName = domain.NormalizeIdentifier(u.UserName)
	u.Email = domain.NormalizeIdentifier(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.UserName == "" {
		return domain.User{}, domain.ErrMissingField("user_name")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
INSERT INTO users (id, user_name, email, display_name, password_hash, locale, title, active, enabled, primary_group_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);
`
	if _, err := tx.ExecContext(ctx, q,
		u.ID, u.UserName, u.Email, u.DisplayName, u.PasswordHash,
		u.Locale, u.Title, u.Active, u.Enabled, nullGroup(u.PrimaryGroupID),
	); err != nil {
		return domain.User{}, mapWriteErr(err)
	}
	if err := replaceGroups(ctx, tx, u.ID, u.GroupIDs); err != nil {
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return u, nil
}

// Update writes every column and the memberships of u in one transaction.
func (r *UserRepo) Update(ctx context.Context, u domain.User) error {
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return domain.ErrMissingField("id")
	}
	u.Email = domain.NormalizeIdentifier(u.Email)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
UPDATE users
SET email = $2,
    display_name = $3,
    password_hash = $4,
    locale = $5,
    title = $6,
    active = $7,
    enabled = $8,
    primary_group_id = $9,
    updated_at = NOW()
WHERE id = $1;
`
	res, err := tx.ExecContext(ctx, q,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.Locale,
		u.Title, u.Active, u.Enabled, nullGroup(u.PrimaryGroupID),
	)
	if err != nil {
		return mapWriteErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	if err := replaceGroups(ctx, tx, u.ID, u.GroupIDs); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
