package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/baechuer/account-service/internal/domain"
)

type GroupRepo struct {
	db *sql.DB
}

func NewGroupRepo(db *sql.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

const groupColumns = `id, name, is_default, is_default_primary, new_user_title`

func scanGroup(row rowScanner) (domain.Group, error) {
	var g domain.Group
	err := row.Scan(&g.ID, &g.Name, &g.IsDefault, &g.IsDefaultPrimary, &g.NewUserTitle)
	return g, err
}

func (r *GroupRepo) GetDefaultPrimary(ctx context.Context) (domain.Group, error) {
	q := `SELECT ` + groupColumns + ` FROM groups WHERE is_default_primary LIMIT 1;`

	g, err := scanGroup(r.db.QueryRowContext(ctx, q))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Group{}, domain.ErrGroupNotFound()
		}
		return domain.Group{}, domain.ErrDBUnavailable(err)
	}
	return g, nil
}

func (r *GroupRepo) ListDefault(ctx context.Context) ([]domain.Group, error) {
	q := `SELECT ` + groupColumns + ` FROM groups WHERE is_default ORDER BY id;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var out []domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// EnsureGroups inserts gs, keeping rows that already exist, and moves the
// id sequence past the explicit ids.
func (r *GroupRepo) EnsureGroups(ctx context.Context, gs []domain.Group) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
INSERT INTO groups (id, name, is_default, is_default_primary, new_user_title)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO NOTHING;
`
	for _, g := range gs {
		if _, err := tx.ExecContext(ctx, q, g.ID, g.Name, g.IsDefault, g.IsDefaultPrimary, g.NewUserTitle); err != nil {
			return domain.ErrDBUnavailable(err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`SELECT setval(pg_get_serial_sequence('groups', 'id'), (SELECT MAX(id) FROM groups));`); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
