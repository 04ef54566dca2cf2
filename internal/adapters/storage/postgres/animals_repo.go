package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"herd-registry/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, farm_id, lot_id,
	cuia, visual_tag, name,
	sex, birth_date,
	mother_id, father_id,
	life_status, production_status, reproductive_status, health_status,
	photo_url,
	created_at, updated_at
`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	q := queryTarget(ctx, r.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO animals (
			id, farm_id, lot_id,
			cuia, visual_tag, name,
			sex, birth_date,
			mother_id, father_id,
			life_status, production_status, reproductive_status, health_status,
			photo_url,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		a.ID,
		a.FarmID,
		a.LotID,
		toNullString(a.CUIA),
		a.VisualTag,
		a.Name,
		string(a.Sex),
		toNullDate(a.BirthDate),
		a.MotherID,
		a.FatherID,
		string(a.LifeStatus),
		string(a.ProductionStatus),
		string(a.ReproductiveStatus),
		string(a.HealthStatus),
		a.PhotoURL,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}

	return r.insertOwners(ctx, q, a.ID, a.Owners)
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	q := queryTarget(ctx, r.db)

	res, err := q.ExecContext(ctx, `
		UPDATE animals
		SET
			farm_id = $2,
			lot_id = $3,
			cuia = $4,
			visual_tag = $5,
			name = $6,
			birth_date = $7,
			mother_id = $8,
			father_id = $9,
			life_status = $10,
			production_status = $11,
			reproductive_status = $12,
			health_status = $13,
			photo_url = $14,
			updated_at = $15
		WHERE id = $1
	`,
		a.ID,
		a.FarmID,
		a.LotID,
		toNullString(a.CUIA),
		a.VisualTag,
		a.Name,
		toNullDate(a.BirthDate),
		a.MotherID,
		a.FatherID,
		string(a.LifeStatus),
		string(a.ProductionStatus),
		string(a.ReproductiveStatus),
		string(a.HealthStatus),
		a.PhotoURL,
		a.UpdatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}

	// Reemplazo completo de la lista de owners.
	if _, err := q.ExecContext(ctx, `DELETE FROM animal_owners WHERE animal_id = $1`, a.ID); err != nil {
		return err
	}
	return r.insertOwners(ctx, q, a.ID, a.Owners)
}

func (r *AnimalsRepo) insertOwners(ctx context.Context, q querier, animalID string, shares []animals.OwnerShare) error {
	for _, s := range shares {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO animal_owners (animal_id, owner_id, share_percent)
			VALUES ($1, $2, $3)
		`, animalID, s.OwnerID, s.SharePercent); err != nil {
			return err
		}
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrNotFound
	}
	q := queryTarget(ctx, r.db)

	row := q.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1`, id)
	a, err := scanAnimal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.Animal{}, animals.ErrNotFound
		}
		return animals.Animal{}, err
	}

	a.Owners, err = r.loadOwners(ctx, q, a.ID)
	if err != nil {
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) ListByCUIA(ctx context.Context, farmID, cuia string) ([]animals.Animal, error) {
	return r.list(ctx, `SELECT `+animalColumns+` FROM animals WHERE farm_id = $1 AND cuia = $2`, farmID, cuia)
}

func (r *AnimalsRepo) ListByName(ctx context.Context, farmID, name string) ([]animals.Animal, error) {
	return r.list(ctx, `SELECT `+animalColumns+` FROM animals WHERE farm_id = $1 AND name = $2`, farmID, name)
}

func (r *AnimalsRepo) ListByParent(ctx context.Context, parentID string) ([]animals.Animal, error) {
	return r.list(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE mother_id = $1 OR father_id = $1
		ORDER BY created_at ASC
	`, parentID)
}

func (r *AnimalsRepo) ListByFarm(ctx context.Context, farmID string, filter animals.ListFilter) ([]animals.Animal, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + animalColumns + ` FROM animals WHERE farm_id = $1`)

	args := []any{farmID}
	argN := 2

	if filter.LifeStatus != nil {
		sb.WriteString(fmt.Sprintf(" AND life_status = $%d", argN))
		args = append(args, string(*filter.LifeStatus))
		argN++
	}
	if filter.LotID != "" {
		sb.WriteString(fmt.Sprintf(" AND lot_id = $%d", argN))
		args = append(args, filter.LotID)
		argN++
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		sb.WriteString(fmt.Sprintf(" AND (name ILIKE $%d OR visual_tag ILIKE $%d OR cuia ILIKE $%d)", argN, argN, argN))
		args = append(args, "%"+q+"%")
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	sb.WriteString(" ORDER BY created_at ASC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)
	argN++
	if filter.Offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", argN))
		args = append(args, filter.Offset)
	}

	return r.list(ctx, sb.String(), args...)
}

func (r *AnimalsRepo) list(ctx context.Context, query string, args ...any) ([]animals.Animal, error) {
	q := queryTarget(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Owners, err = r.loadOwners(ctx, q, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *AnimalsRepo) loadOwners(ctx context.Context, q querier, animalID string) ([]animals.OwnerShare, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT owner_id, share_percent
		FROM animal_owners
		WHERE animal_id = $1
		ORDER BY owner_id ASC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.OwnerShare, 0)
	for rows.Next() {
		var s animals.OwnerShare
		if err := rows.Scan(&s.OwnerID, &s.SharePercent); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var cuia sql.NullString
	var bd sql.NullTime
	var sex, life, production, reproductive, health string

	if err := row.Scan(
		&a.ID,
		&a.FarmID,
		&a.LotID,
		&cuia,
		&a.VisualTag,
		&a.Name,
		&sex,
		&bd,
		&a.MotherID,
		&a.FatherID,
		&life,
		&production,
		&reproductive,
		&health,
		&a.PhotoURL,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	if cuia.Valid {
		a.CUIA = cuia.String
	}
	if bd.Valid {
		t := bd.Time
		a.BirthDate = &t
	}
	a.Sex = animals.Sex(sex)
	a.LifeStatus = animals.LifeStatus(life)
	a.ProductionStatus = animals.ProductionStatus(production)
	a.ReproductiveStatus = animals.ReproductiveStatus(reproductive)
	a.HealthStatus = animals.HealthStatus(health)

	return a, nil
}

// mapUniqueViolation re-mapea el unique index parcial (cuia/name por farm
// entre animales bloqueantes) al mismo error kind que la uniqueness policy:
// el constraint del storage es el guard autoritativo, el validador es
// advisory (check-then-write).
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", animals.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
