package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"herd-registry/internal/domain/farms"
)

type farmsRepo struct {
	mu       sync.RWMutex
	farms    map[string]farms.Farm
	paddocks map[string]farms.Paddock
	lots     map[string]farms.Lot
	members  map[string]farms.Member // key: farmID + "/" + userID
}

func NewFarmsRepo() *farmsRepo {
	return &farmsRepo{
		farms:    make(map[string]farms.Farm),
		paddocks: make(map[string]farms.Paddock),
		lots:     make(map[string]farms.Lot),
		members:  make(map[string]farms.Member),
	}
}

func memberKey(farmID, userID string) string {
	return farmID + "/" + userID
}

func (r *farmsRepo) CreateFarm(ctx context.Context, f farms.Farm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(f.ID) == "" {
		return errors.New("farm id required")
	}
	if _, exists := r.farms[f.ID]; exists {
		return errors.New("farm already exists")
	}
	r.farms[f.ID] = f
	return nil
}

func (r *farmsRepo) GetFarm(ctx context.Context, id string) (farms.Farm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.farms[id]
	if !ok {
		return farms.Farm{}, ErrNotFound
	}
	return f, nil
}

func (r *farmsRepo) CreatePaddock(ctx context.Context, p farms.Paddock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("paddock id required")
	}
	if _, exists := r.paddocks[p.ID]; exists {
		return errors.New("paddock already exists")
	}
	r.paddocks[p.ID] = p
	return nil
}

func (r *farmsRepo) GetPaddock(ctx context.Context, id string) (farms.Paddock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.paddocks[id]
	if !ok {
		return farms.Paddock{}, ErrNotFound
	}
	return p, nil
}

func (r *farmsRepo) ListPaddocksByFarm(ctx context.Context, farmID string) ([]farms.Paddock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]farms.Paddock, 0)
	for _, p := range r.paddocks {
		if p.FarmID == farmID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *farmsRepo) CreateLot(ctx context.Context, l farms.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("lot id required")
	}
	if _, exists := r.lots[l.ID]; exists {
		return errors.New("lot already exists")
	}
	r.lots[l.ID] = l
	return nil
}

func (r *farmsRepo) GetLot(ctx context.Context, id string) (farms.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lots[id]
	if !ok {
		return farms.Lot{}, ErrNotFound
	}
	return l, nil
}

func (r *farmsRepo) UpdateLot(ctx context.Context, l farms.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lots[l.ID]; !exists {
		return ErrNotFound
	}
	r.lots[l.ID] = l
	return nil
}

func (r *farmsRepo) ListLotsByPaddock(ctx context.Context, paddockID string) ([]farms.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]farms.Lot, 0)
	for _, l := range r.lots {
		if l.PaddockID == paddockID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *farmsRepo) AddMember(ctx context.Context, m farms.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memberKey(m.FarmID, m.UserID)
	if _, exists := r.members[key]; exists {
		return errors.New("member already exists")
	}
	r.members[key] = m
	return nil
}

func (r *farmsRepo) GetMember(ctx context.Context, farmID, userID string) (farms.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[memberKey(farmID, userID)]
	if !ok {
		return farms.Member{}, ErrNotFound
	}
	return m, nil
}

func (r *farmsRepo) ListMembers(ctx context.Context, farmID string) ([]farms.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]farms.Member, 0)
	for _, m := range r.members {
		if m.FarmID == farmID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type farmsSnap struct {
	farms    map[string]farms.Farm
	paddocks map[string]farms.Paddock
	lots     map[string]farms.Lot
	members  map[string]farms.Member
}

func (r *farmsRepo) snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := farmsSnap{
		farms:    make(map[string]farms.Farm, len(r.farms)),
		paddocks: make(map[string]farms.Paddock, len(r.paddocks)),
		lots:     make(map[string]farms.Lot, len(r.lots)),
		members:  make(map[string]farms.Member, len(r.members)),
	}
	for k, v := range r.farms {
		s.farms[k] = v
	}
	for k, v := range r.paddocks {
		s.paddocks[k] = v
	}
	for k, v := range r.lots {
		s.lots[k] = v
	}
	for k, v := range r.members {
		s.members[k] = v
	}
	return s
}

func (r *farmsRepo) restore(snap any) {
	s, ok := snap.(farmsSnap)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.farms = s.farms
	r.paddocks = s.paddocks
	r.lots = s.lots
	r.members = s.members
}
