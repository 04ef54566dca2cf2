package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"herd-registry/internal/domain/movements"
)

type movementsRepo struct {
	mu   sync.RWMutex
	rows []movements.Movement
}

func NewMovementsRepo() *movementsRepo {
	return &movementsRepo{
		rows: make([]movements.Movement, 0),
	}
}

// Create es append-only: no hay Update ni Delete sobre movimientos.
func (r *movementsRepo) Create(ctx context.Context, m movements.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("movement id required")
	}
	r.rows = append(r.rows, m)
	return nil
}

func (r *movementsRepo) ListByEntity(ctx context.Context, entityType movements.EntityType, entityID string, limit int) ([]movements.Movement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]movements.Movement, 0)
	for _, m := range r.rows {
		if m.EntityType == entityType && m.EntityID == entityID {
			out = append(out, m)
		}
	}

	// Más reciente primero; a igual timestamp decide el orden de inserción.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MovedAt.After(out[j].MovedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *movementsRepo) snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make([]movements.Movement, len(r.rows))
	copy(snap, r.rows)
	return snap
}

func (r *movementsRepo) restore(snap any) {
	rows, ok := snap.([]movements.Movement)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
}
