package farms

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"herd-registry/internal/domain/movements"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	farms    map[string]Farm
	paddocks map[string]Paddock
	lots     map[string]Lot
	members  map[string]Member // farmID+"/"+userID
}

func newTestRepo() *testRepo {
	return &testRepo{
		farms:    map[string]Farm{},
		paddocks: map[string]Paddock{},
		lots:     map[string]Lot{},
		members:  map[string]Member{},
	}
}

func (r *testRepo) CreateFarm(ctx context.Context, f Farm) error {
	r.farms[f.ID] = f
	return nil
}

func (r *testRepo) GetFarm(ctx context.Context, id string) (Farm, error) {
	f, ok := r.farms[id]
	if !ok {
		return Farm{}, errRepoNotFound
	}
	return f, nil
}

func (r *testRepo) CreatePaddock(ctx context.Context, p Paddock) error {
	r.paddocks[p.ID] = p
	return nil
}

func (r *testRepo) GetPaddock(ctx context.Context, id string) (Paddock, error) {
	p, ok := r.paddocks[id]
	if !ok {
		return Paddock{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) ListPaddocksByFarm(ctx context.Context, farmID string) ([]Paddock, error) {
	out := make([]Paddock, 0)
	for _, p := range r.paddocks {
		if p.FarmID == farmID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *testRepo) CreateLot(ctx context.Context, l Lot) error {
	r.lots[l.ID] = l
	return nil
}

func (r *testRepo) GetLot(ctx context.Context, id string) (Lot, error) {
	l, ok := r.lots[id]
	if !ok {
		return Lot{}, errRepoNotFound
	}
	return l, nil
}

func (r *testRepo) UpdateLot(ctx context.Context, l Lot) error {
	if _, ok := r.lots[l.ID]; !ok {
		return errRepoNotFound
	}
	r.lots[l.ID] = l
	return nil
}

func (r *testRepo) ListLotsByPaddock(ctx context.Context, paddockID string) ([]Lot, error) {
	out := make([]Lot, 0)
	for _, l := range r.lots {
		if l.PaddockID == paddockID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *testRepo) AddMember(ctx context.Context, m Member) error {
	r.members[m.FarmID+"/"+m.UserID] = m
	return nil
}

func (r *testRepo) GetMember(ctx context.Context, farmID, userID string) (Member, error) {
	m, ok := r.members[farmID+"/"+userID]
	if !ok {
		return Member{}, errRepoNotFound
	}
	return m, nil
}

func (r *testRepo) ListMembers(ctx context.Context, farmID string) ([]Member, error) {
	out := make([]Member, 0)
	for _, m := range r.members {
		if m.FarmID == farmID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type testMovementsRepo struct {
	rows []movements.Movement
}

func (r *testMovementsRepo) Create(ctx context.Context, m movements.Movement) error {
	r.rows = append(r.rows, m)
	return nil
}

func (r *testMovementsRepo) ListByEntity(ctx context.Context, entityType movements.EntityType, entityID string, limit int) ([]movements.Movement, error) {
	out := make([]movements.Movement, 0)
	for _, m := range r.rows {
		if m.EntityType == entityType && m.EntityID == entityID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type passthroughUOW struct{}

func (passthroughUOW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *testRepo, *testMovementsRepo) {
	repo := newTestRepo()
	movRepo := &testMovementsRepo{}
	svc := NewService(repo, movements.NewRecorder(movRepo), passthroughUOW{})
	return svc, repo, movRepo
}

// seedHierarchy arma farm -> paddock -> lot con un owner ya asignado.
func seedHierarchy(t *testing.T, svc *Service, ownerID string) (Farm, Paddock, Lot) {
	t.Helper()
	ctx := context.Background()

	f, err := svc.CreateFarm(ctx, ownerID, "La Esperanza")
	if err != nil {
		t.Fatalf("CreateFarm error: %v", err)
	}
	p, err := svc.CreatePaddock(ctx, ownerID, f.ID, "Potrero Norte")
	if err != nil {
		t.Fatalf("CreatePaddock error: %v", err)
	}
	l, err := svc.CreateLot(ctx, ownerID, p.ID, "Lote 1")
	if err != nil {
		t.Fatalf("CreateLot error: %v", err)
	}
	return f, p, l
}

// -------------------------
// Tests
// -------------------------

func TestService_CreateFarm_SeedsCreatorAsOwner(t *testing.T) {
	svc, repo, _ := newTestService()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	f, err := svc.CreateFarm(context.Background(), "user-1", "La Esperanza")
	if err != nil {
		t.Fatalf("CreateFarm error: %v", err)
	}

	m, err := repo.GetMember(context.Background(), f.ID, "user-1")
	if err != nil {
		t.Fatalf("expected creator membership, got %v", err)
	}
	if m.Role != RoleOwner {
		t.Fatalf("expected role owner, got %s", m.Role)
	}
	if f.CreatedAt != now {
		t.Fatalf("expected CreatedAt = now")
	}
}

func TestService_AddMember_RequiresMutator(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	f, _, _ := seedHierarchy(t, svc, "user-1")

	// Un no-miembro no puede agregar gente.
	if _, err := svc.AddMember(ctx, "stranger", f.ID, "user-2", RoleViewer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// El owner sí.
	if _, err := svc.AddMember(ctx, "user-1", f.ID, "viewer-1", RoleViewer); err != nil {
		t.Fatalf("AddMember error: %v", err)
	}

	// Un viewer tampoco puede.
	if _, err := svc.AddMember(ctx, "viewer-1", f.ID, "user-3", RoleViewer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for viewer, got %v", err)
	}

	// Rol inventado: invalid input.
	if _, err := svc.AddMember(ctx, "user-1", f.ID, "user-4", Role("janitor")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_FarmOfLot_FollowsChain(t *testing.T) {
	svc, _, _ := newTestService()

	f, _, l := seedHierarchy(t, svc, "user-1")

	got, err := svc.FarmOfLot(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("FarmOfLot error: %v", err)
	}
	if got.ID != f.ID {
		t.Fatalf("expected farm %s, got %s", f.ID, got.ID)
	}

	if _, err := svc.FarmOfLot(context.Background(), "no-such-lot"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_AuthorizeLotMutation_ViewerForbidden(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	f, _, l := seedHierarchy(t, svc, "user-1")
	if _, err := svc.AddMember(ctx, "user-1", f.ID, "viewer-1", RoleViewer); err != nil {
		t.Fatalf("AddMember error: %v", err)
	}

	if _, _, err := svc.AuthorizeLotMutation(ctx, l.ID, "viewer-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for viewer, got %v", err)
	}
	// Pero sí puede leer.
	if _, err := svc.AuthorizeLotRead(ctx, l.ID, "viewer-1"); err != nil {
		t.Fatalf("expected viewer read to pass, got %v", err)
	}
	// Un no-miembro no puede ni leer.
	if _, err := svc.AuthorizeLotRead(ctx, l.ID, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestService_SetLotStatus(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, l := seedHierarchy(t, svc, "user-1")

	got, err := svc.SetLotStatus(ctx, "user-1", l.ID, LotMaintenance)
	if err != nil {
		t.Fatalf("SetLotStatus error: %v", err)
	}
	if got.Status != LotMaintenance {
		t.Fatalf("expected maintenance, got %s", got.Status)
	}

	if _, err := svc.SetLotStatus(ctx, "user-1", l.ID, LotStatus("demolished")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_MoveLot_RecordsMovement(t *testing.T) {
	svc, repo, movRepo := newTestService()
	ctx := context.Background()

	_, p1, l := seedHierarchy(t, svc, "user-1")
	p2, err := svc.CreatePaddock(ctx, "user-1", p1.FarmID, "Potrero Sur")
	if err != nil {
		t.Fatalf("CreatePaddock error: %v", err)
	}

	mov, err := svc.MoveLot(ctx, "user-1", l.ID, p2.ID, "rotación")
	if err != nil {
		t.Fatalf("MoveLot error: %v", err)
	}
	if mov.EntityType != movements.EntityLot || mov.EntityID != l.ID {
		t.Fatalf("movement entity mismatch")
	}
	if mov.FromID == nil || *mov.FromID != p1.ID {
		t.Fatalf("expected FromID %s", p1.ID)
	}
	if mov.ToID != p2.ID {
		t.Fatalf("expected ToID %s, got %s", p2.ID, mov.ToID)
	}

	stored, _ := repo.GetLot(ctx, l.ID)
	if stored.PaddockID != p2.ID {
		t.Fatalf("expected lot reassigned to %s, got %s", p2.ID, stored.PaddockID)
	}
	if len(movRepo.rows) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movRepo.rows))
	}

	// Mover al mismo paddock: invalid input.
	if _, err := svc.MoveLot(ctx, "user-1", l.ID, p2.ID, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_MoveLot_CrossFarm_RequiresBothMemberships(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, l := seedHierarchy(t, svc, "user-1")

	// Segunda farm de otro usuario.
	f2, err := svc.CreateFarm(ctx, "user-2", "El Recreo")
	if err != nil {
		t.Fatalf("CreateFarm error: %v", err)
	}
	p2, err := svc.CreatePaddock(ctx, "user-2", f2.ID, "Potrero Único")
	if err != nil {
		t.Fatalf("CreatePaddock error: %v", err)
	}

	// user-1 no es miembro de f2: forbidden.
	if _, err := svc.MoveLot(ctx, "user-1", l.ID, p2.ID, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Con rol admin en f2, el move cross-farm pasa.
	if _, err := svc.AddMember(ctx, "user-2", f2.ID, "user-1", RoleAdmin); err != nil {
		t.Fatalf("AddMember error: %v", err)
	}
	if _, err := svc.MoveLot(ctx, "user-1", l.ID, p2.ID, "traslado"); err != nil {
		t.Fatalf("MoveLot cross-farm error: %v", err)
	}
}
