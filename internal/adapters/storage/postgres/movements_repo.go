package postgres

import (
	"context"
	"database/sql"

	"herd-registry/internal/domain/movements"
)

type MovementsRepo struct {
	db *sql.DB
}

func NewMovementsRepo(db *sql.DB) *MovementsRepo {
	return &MovementsRepo{db: db}
}

// Create inserta el registro de auditoría. No existe UPDATE ni DELETE sobre
// esta tabla.
func (r *MovementsRepo) Create(ctx context.Context, m movements.Movement) error {
	q := queryTarget(ctx, r.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO movements (
			id, entity_type, entity_id,
			from_id, to_id,
			moved_at, reason, moved_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		m.ID,
		string(m.EntityType),
		m.EntityID,
		m.FromID,
		m.ToID,
		m.MovedAt,
		m.Reason,
		m.MovedBy,
	)
	return err
}

func (r *MovementsRepo) ListByEntity(ctx context.Context, entityType movements.EntityType, entityID string, limit int) ([]movements.Movement, error) {
	q := queryTarget(ctx, r.db)

	if limit <= 0 {
		limit = 50
	}

	rows, err := q.QueryContext(ctx, `
		SELECT
			id, entity_type, entity_id,
			from_id, to_id,
			moved_at, reason, moved_by
		FROM movements
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY moved_at DESC, id DESC
		LIMIT $3
	`, string(entityType), entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]movements.Movement, 0)
	for rows.Next() {
		var m movements.Movement
		var typ string
		if err := rows.Scan(
			&m.ID,
			&typ,
			&m.EntityID,
			&m.FromID,
			&m.ToID,
			&m.MovedAt,
			&m.Reason,
			&m.MovedBy,
		); err != nil {
			return nil, err
		}
		m.EntityType = movements.EntityType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}
