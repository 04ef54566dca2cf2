package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"herd-registry/internal/domain/animals"
)

type animalsRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
}

func NewAnimalsRepo() *animalsRepo {
	return &animalsRepo{
		byID: make(map[string]animals.Animal),
	}
}

func (r *animalsRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}
	r.byID[a.ID] = cloneAnimal(a)
	return nil
}

func (r *animalsRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return animals.ErrNotFound
	}
	r.byID[a.ID] = cloneAnimal(a)
	return nil
}

func (r *animalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return cloneAnimal(a), nil
}

func (r *animalsRepo) ListByCUIA(ctx context.Context, farmID, cuia string) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.FarmID == farmID && a.CUIA != "" && a.CUIA == cuia {
			out = append(out, cloneAnimal(a))
		}
	}
	return out, nil
}

func (r *animalsRepo) ListByName(ctx context.Context, farmID, name string) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.FarmID == farmID && a.Name == name {
			out = append(out, cloneAnimal(a))
		}
	}
	return out, nil
}

func (r *animalsRepo) ListByParent(ctx context.Context, parentID string) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if (a.MotherID != nil && *a.MotherID == parentID) || (a.FatherID != nil && *a.FatherID == parentID) {
			out = append(out, cloneAnimal(a))
		}
	}

	// Orden estable por created_at asc (consistencia en dev y tests).
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *animalsRepo) ListByFarm(ctx context.Context, farmID string, filter animals.ListFilter) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.FarmID != farmID {
			continue
		}
		if filter.LifeStatus != nil && a.LifeStatus != *filter.LifeStatus {
			continue
		}
		if filter.LotID != "" && a.LotID != filter.LotID {
			continue
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			hay := strings.ToLower(a.Name + " " + a.VisualTag + " " + a.CUIA)
			if !strings.Contains(hay, strings.ToLower(q)) {
				continue
			}
		}
		out = append(out, cloneAnimal(a))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []animals.Animal{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *animalsRepo) snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[string]animals.Animal, len(r.byID))
	for k, v := range r.byID {
		snap[k] = cloneAnimal(v)
	}
	return snap
}

func (r *animalsRepo) restore(snap any) {
	m, ok := snap.(map[string]animals.Animal)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = m
}

// cloneAnimal copia el slice de owners para que el caller no pueda mutar el
// estado guardado por referencia.
func cloneAnimal(a animals.Animal) animals.Animal {
	if a.Owners != nil {
		shares := make([]animals.OwnerShare, len(a.Owners))
		copy(shares, a.Owners)
		a.Owners = shares
	}
	return a
}
