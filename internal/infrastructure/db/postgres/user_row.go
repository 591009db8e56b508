package postgres

import (
	"database/sql"
	"time"
)

type userRow struct {
	ID             string
	UserName       string
	Email          string
	DisplayName    string
	PasswordHash   string
	Locale         string
	Title          string
	Active         bool
	Enabled        bool
	PrimaryGroupID sql.NullInt64
	CreatedAt      time.Time
}

const userColumns = `id, user_name, email, display_name, password_hash, locale, title, active, enabled, primary_group_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row rowScanner) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.UserName,
		&ur.Email,
		&ur.DisplayName,
		&ur.PasswordHash,
		&ur.Locale,
		&ur.Title,
		&ur.Active,
		&ur.Enabled,
		&ur.PrimaryGroupID,
		&ur.CreatedAt,
	)
	return ur, err
}
