package postgres

import (
	"context"
	"database/sql"
	"errors"

	"herd-registry/internal/domain/owners"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	q := queryTarget(ctx, r.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO owners (id, name, user_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, o.ID, o.Name, o.UserID, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	q := queryTarget(ctx, r.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, name, user_id, created_at, updated_at
		FROM owners
		WHERE id = $1
	`, id)

	var o owners.Owner
	if err := row.Scan(&o.ID, &o.Name, &o.UserID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return owners.Owner{}, ErrNotFound
		}
		return owners.Owner{}, err
	}
	return o, nil
}

func (r *OwnersRepo) List(ctx context.Context) ([]owners.Owner, error) {
	q := queryTarget(ctx, r.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, user_id, created_at, updated_at
		FROM owners
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]owners.Owner, 0)
	for rows.Next() {
		var o owners.Owner
		if err := rows.Scan(&o.ID, &o.Name, &o.UserID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
