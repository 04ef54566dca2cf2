package postgres

import (
	"context"
	"database/sql"
	"errors"

	"herd-registry/internal/domain/farms"
)

type FarmsRepo struct {
	db *sql.DB
}

func NewFarmsRepo(db *sql.DB) *FarmsRepo {
	return &FarmsRepo{db: db}
}

func (r *FarmsRepo) CreateFarm(ctx context.Context, f farms.Farm) error {
	q := queryTarget(ctx, r.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO farms (id, name, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, f.ID, f.Name, f.CreatedBy, f.CreatedAt, f.UpdatedAt)
	return err
}

func (r *FarmsRepo) GetFarm(ctx context.Context, id string) (farms.Farm, error) {
	q := queryTarget(ctx, r.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, name, created_by, created_at, updated_at
		FROM farms
		WHERE id = $1
	`, id)

	var f farms.Farm
	if err := row.Scan(&f.ID, &f.Name, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return farms.Farm{}, ErrNotFound
		}
		return farms.Farm{}, err
	}
	return f, nil
}

func (r *FarmsRepo) CreatePaddock(ctx context.Context, p farms.Paddock) error {
	q := queryTarget(ctx, r.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO paddocks (id, farm_id, name, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, p.ID, p.FarmID, p.Name, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *FarmsRepo) GetPaddock(ctx context.Context, id string) (farms.Paddock, error) {
	q := queryTarget(ctx, r.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, farm_id, name, created_at, updated_at
		FROM paddocks
		WHERE id = $1
	`, id)

	var p farms.Paddock
	if err := row.Scan(&p.ID, &p.FarmID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return farms.Paddock{}, ErrNotFound
		}
		return farms.Paddock{}, err
	}
	return p, nil
}

func (r *FarmsRepo) ListPaddocksByFarm(ctx context.Context, farmID string) ([]farms.Paddock, error) {
	q := queryTarget(ctx, r.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, farm_id, name, created_at, updated_at
		FROM paddocks
		WHERE farm_id = $1
		ORDER BY created_at ASC
	`, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]farms.Paddock, 0)
	for rows.Next() {
		var p farms.Paddock
		if err := rows.Scan(&p.ID, &p.FarmID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *FarmsRepo) CreateLot(ctx context.Context, l farms.Lot) error {
	q := queryTarget(ctx, r.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO lots (id, paddock_id, name, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, l.ID, l.PaddockID, l.Name, string(l.Status), l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *FarmsRepo) GetLot(ctx context.Context, id string) (farms.Lot, error) {
	q := queryTarget(ctx, r.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, paddock_id, name, status, created_at, updated_at
		FROM lots
		WHERE id = $1
	`, id)

	var l farms.Lot
	var status string
	if err := row.Scan(&l.ID, &l.PaddockID, &l.Name, &status, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return farms.Lot{}, ErrNotFound
		}
		return farms.Lot{}, err
	}
	l.Status = farms.LotStatus(status)
	return l, nil
}

func (r *FarmsRepo) UpdateLot(ctx context.Context, l farms.Lot) error {
	q := queryTarget(ctx, r.db)
	res, err := q.ExecContext(ctx, `
		UPDATE lots
		SET paddock_id = $2, name = $3, status = $4, updated_at = $5
		WHERE id = $1
	`, l.ID, l.PaddockID, l.Name, string(l.Status), l.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FarmsRepo) ListLotsByPaddock(ctx context.Context, paddockID string) ([]farms.Lot, error) {
	q := queryTarget(ctx, r.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, paddock_id, name, status, created_at, updated_at
		FROM lots
		WHERE paddock_id = $1
		ORDER BY created_at ASC
	`, paddockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]farms.Lot, 0)
	for rows.Next() {
		var l farms.Lot
		var status string
		if err := rows.Scan(&l.ID, &l.PaddockID, &l.Name, &status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.Status = farms.LotStatus(status)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *FarmsRepo) AddMember(ctx context.Context, m farms.Member) error {
	q := queryTarget(ctx, r.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO farm_members (farm_id, user_id, role, created_at)
		VALUES ($1,$2,$3,$4)
	`, m.FarmID, m.UserID, string(m.Role), m.CreatedAt)
	return err
}

func (r *FarmsRepo) GetMember(ctx context.Context, farmID, userID string) (farms.Member, error) {
	q := queryTarget(ctx, r.db)
	row := q.QueryRowContext(ctx, `
		SELECT farm_id, user_id, role, created_at
		FROM farm_members
		WHERE farm_id = $1 AND user_id = $2
	`, farmID, userID)

	var m farms.Member
	var role string
	if err := row.Scan(&m.FarmID, &m.UserID, &role, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return farms.Member{}, ErrNotFound
		}
		return farms.Member{}, err
	}
	m.Role = farms.Role(role)
	return m, nil
}

func (r *FarmsRepo) ListMembers(ctx context.Context, farmID string) ([]farms.Member, error) {
	q := queryTarget(ctx, r.db)
	rows, err := q.QueryContext(ctx, `
		SELECT farm_id, user_id, role, created_at
		FROM farm_members
		WHERE farm_id = $1
		ORDER BY created_at ASC
	`, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]farms.Member, 0)
	for rows.Next() {
		var m farms.Member
		var role string
		if err := rows.Scan(&m.FarmID, &m.UserID, &role, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = farms.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}
