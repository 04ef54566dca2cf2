package animals

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"herd-registry/internal/domain/farms"
	"herd-registry/internal/domain/movements"
	"herd-registry/internal/domain/owners"
)

// -------------------------
// Test fixtures (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Animal
}

func newTestAnimalsRepo() *testRepo {
	return &testRepo{byID: map[string]Animal{}}
}

func (r *testRepo) Create(ctx context.Context, a Animal) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Animal) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) ListByCUIA(ctx context.Context, farmID, cuia string) ([]Animal, error) {
	out := make([]Animal, 0)
	for _, a := range r.byID {
		if a.FarmID == farmID && a.CUIA == cuia && cuia != "" {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ListByName(ctx context.Context, farmID, name string) ([]Animal, error) {
	out := make([]Animal, 0)
	for _, a := range r.byID {
		if a.FarmID == farmID && a.Name == name {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ListByParent(ctx context.Context, parentID string) ([]Animal, error) {
	out := make([]Animal, 0)
	for _, a := range r.byID {
		if (a.MotherID != nil && *a.MotherID == parentID) || (a.FatherID != nil && *a.FatherID == parentID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *testRepo) ListByFarm(ctx context.Context, farmID string, filter ListFilter) ([]Animal, error) {
	out := make([]Animal, 0)
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
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// testGate simula farms.Service: lots fijos y un set de users con permiso.
type testGate struct {
	lots     map[string]farms.Lot  // lotID -> lot
	lotFarms map[string]farms.Farm // lotID -> farm dueña
	mutators map[string]bool       // userID -> puede mutar
}

func newTestGate() *testGate {
	return &testGate{
		lots:     map[string]farms.Lot{},
		lotFarms: map[string]farms.Farm{},
		mutators: map[string]bool{},
	}
}

func (g *testGate) addLot(lotID, farmID string, status farms.LotStatus) {
	g.lots[lotID] = farms.Lot{ID: lotID, PaddockID: "paddock-" + farmID, Name: "lot " + lotID, Status: status}
	g.lotFarms[lotID] = farms.Farm{ID: farmID, Name: "farm " + farmID}
}

func (g *testGate) AuthorizeLotMutation(ctx context.Context, lotID, userID string) (farms.Lot, farms.Farm, error) {
	lot, ok := g.lots[lotID]
	if !ok {
		return farms.Lot{}, farms.Farm{}, farms.ErrNotFound
	}
	if !g.mutators[userID] {
		return farms.Lot{}, farms.Farm{}, farms.ErrForbidden
	}
	return lot, g.lotFarms[lotID], nil
}

func (g *testGate) GetLot(ctx context.Context, id string) (farms.Lot, error) {
	lot, ok := g.lots[id]
	if !ok {
		return farms.Lot{}, farms.ErrNotFound
	}
	return lot, nil
}

type testOwnerDir struct {
	byID map[string]owners.Owner
}

func (d *testOwnerDir) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	o, ok := d.byID[id]
	if !ok {
		return owners.Owner{}, errRepoNotFound
	}
	return o, nil
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
	sort.SliceStable(out, func(i, j int) bool { return out[i].MovedAt.After(out[j].MovedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// passthroughUOW ejecuta fn sin transacción; suficiente para unit tests.
type passthroughUOW struct{}

func (passthroughUOW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testEnv struct {
	svc     *Service
	repo    *testRepo
	gate    *testGate
	ownDir  *testOwnerDir
	movRepo *testMovementsRepo
}

func newTestEnv() *testEnv {
	repo := newTestAnimalsRepo()
	gate := newTestGate()
	gate.addLot("lot-1", "farm-1", farms.LotActive)
	gate.addLot("lot-2", "farm-1", farms.LotActive)
	gate.addLot("lot-closed", "farm-1", farms.LotInactive)
	gate.addLot("lot-other", "farm-2", farms.LotActive)
	gate.mutators["user-1"] = true

	ownDir := &testOwnerDir{byID: map[string]owners.Owner{
		"owner-1": {ID: "owner-1", Name: "Juan"},
		"owner-2": {ID: "owner-2", Name: "Ana"},
		"owner-3": {ID: "owner-3", Name: "Pedro"},
	}}
	movRepo := &testMovementsRepo{}

	svc := NewService(repo, gate, ownDir, movements.NewRecorder(movRepo), passthroughUOW{})
	return &testEnv{svc: svc, repo: repo, gate: gate, ownDir: ownDir, movRepo: movRepo}
}

func validCreateInput() CreateInput {
	return CreateInput{
		LotID:              "lot-1",
		CUIA:               "AR123",
		VisualTag:          "T-01",
		Name:               "Aurora",
		Sex:                SexFemale,
		ProductionStatus:   ProductionMilking,
		ReproductiveStatus: ReproductiveOpen,
		Owners:             []OwnerShare{{OwnerID: "owner-1", SharePercent: 100}},
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_RecordsInitialPlacement(t *testing.T) {
	env := newTestEnv()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	a, err := env.svc.Create(context.Background(), "user-1", validCreateInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.FarmID != "farm-1" || a.LotID != "lot-1" {
		t.Fatalf("expected farm-1/lot-1, got %s/%s", a.FarmID, a.LotID)
	}
	if a.LifeStatus != LifeActive {
		t.Fatalf("expected life status active, got %s", a.LifeStatus)
	}
	if a.HealthStatus != HealthHealthy {
		t.Fatalf("expected health default healthy, got %s", a.HealthStatus)
	}
	if a.CreatedAt != now || a.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}

	if len(env.movRepo.rows) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(env.movRepo.rows))
	}
	mov := env.movRepo.rows[0]
	if mov.EntityType != movements.EntityAnimal || mov.EntityID != a.ID {
		t.Fatalf("movement entity mismatch: %s %s", mov.EntityType, mov.EntityID)
	}
	if mov.FromID != nil {
		t.Fatalf("expected initial movement with nil FromID, got %v", *mov.FromID)
	}
	if mov.ToID != "lot-1" {
		t.Fatalf("expected ToID lot-1, got %s", mov.ToID)
	}
	if mov.Reason != "initial placement" {
		t.Fatalf("expected reason 'initial placement', got %q", mov.Reason)
	}
}

func TestService_Create_Forbidden_WritesNothing(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Create(context.Background(), "intruder", validCreateInput())
	if !errors.Is(err, farms.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(env.repo.byID) != 0 || len(env.movRepo.rows) != 0 {
		t.Fatalf("expected no writes on forbidden create")
	}
}

func TestService_Create_RejectsInactiveLot(t *testing.T) {
	env := newTestEnv()

	in := validCreateInput()
	in.LotID = "lot-closed"
	_, err := env.svc.Create(context.Background(), "user-1", in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Create_RejectsUnknownOwner(t *testing.T) {
	env := newTestEnv()

	in := validCreateInput()
	in.Owners = []OwnerShare{{OwnerID: "ghost", SharePercent: 100}}
	_, err := env.svc.Create(context.Background(), "user-1", in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Create_UniquenessBlocksWhileActive(t *testing.T) {
	env := newTestEnv()

	first, err := env.svc.Create(context.Background(), "user-1", validCreateInput())
	if err != nil {
		t.Fatalf("Create #1 error: %v", err)
	}

	// Mismo CUIA, otro nombre: choca mientras el primero está active.
	in := validCreateInput()
	in.Name = "Belinda"
	if _, err := env.svc.Create(context.Background(), "user-1", in); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on CUIA clash, got %v", err)
	}

	// Mismo nombre, sin CUIA: también choca.
	in = validCreateInput()
	in.CUIA = ""
	if _, err := env.svc.Create(context.Background(), "user-1", in); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on name clash, got %v", err)
	}

	// Vendido el primero, los identificadores quedan libres.
	sold := LifeSold
	if _, err := env.svc.Update(context.Background(), "user-1", first.ID, UpdateInput{LifeStatus: &sold}); err != nil {
		t.Fatalf("Update to sold error: %v", err)
	}
	if _, err := env.svc.Create(context.Background(), "user-1", validCreateInput()); err != nil {
		t.Fatalf("expected create to succeed after identifier released, got %v", err)
	}
}

func TestService_Update_ReactivationReChecksUniqueness(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, err := env.svc.Create(ctx, "user-1", validCreateInput())
	if err != nil {
		t.Fatalf("Create #1 error: %v", err)
	}

	// Vendido el primero, los identificadores se reutilizan legítimamente.
	sold := LifeSold
	if _, err := env.svc.Update(ctx, "user-1", first.ID, UpdateInput{LifeStatus: &sold}); err != nil {
		t.Fatalf("Update to sold error: %v", err)
	}
	if _, err := env.svc.Create(ctx, "user-1", validCreateInput()); err != nil {
		t.Fatalf("Create #2 error: %v", err)
	}

	// Reactivar el vendido dejaría dos animales bloqueantes con el mismo
	// CUIA y nombre en la farm: duplicate, y el status no cambia.
	for _, status := range []LifeStatus{LifeActive, LifeMissing} {
		st := status
		if _, err := env.svc.Update(ctx, "user-1", first.ID, UpdateInput{LifeStatus: &st}); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate reactivating to %s, got %v", st, err)
		}
	}
	stored, _ := env.repo.GetByID(ctx, first.ID)
	if stored.LifeStatus != LifeSold {
		t.Fatalf("expected first animal to stay sold, got %s", stored.LifeStatus)
	}

	// Con los identificadores libres otra vez, la reactivación pasa.
	empty := ""
	if _, err := env.svc.Update(ctx, "user-1", first.ID, UpdateInput{CUIA: &empty}); err != nil {
		t.Fatalf("Update clearing CUIA error: %v", err)
	}
	renamed := "Aurora II"
	if _, err := env.svc.Update(ctx, "user-1", first.ID, UpdateInput{Name: &renamed}); err != nil {
		t.Fatalf("Update renaming error: %v", err)
	}
	active := LifeActive
	if _, err := env.svc.Update(ctx, "user-1", first.ID, UpdateInput{LifeStatus: &active}); err != nil {
		t.Fatalf("expected reactivation to pass with free identifiers, got %v", err)
	}
}

func TestService_Create_ValidatesParents(t *testing.T) {
	env := newTestEnv()

	mom, err := env.svc.Create(context.Background(), "user-1", validCreateInput())
	if err != nil {
		t.Fatalf("Create mother error: %v", err)
	}

	// Madre con sexo correcto: ok.
	in := validCreateInput()
	in.Name = "Cría"
	in.CUIA = "AR124"
	in.MotherID = &mom.ID
	calf, err := env.svc.Create(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("Create calf error: %v", err)
	}
	if calf.MotherID == nil || *calf.MotherID != mom.ID {
		t.Fatalf("expected mother set")
	}

	// La misma hembra como padre: rechazado.
	in = validCreateInput()
	in.Name = "Otra"
	in.CUIA = "AR125"
	in.FatherID = &mom.ID
	if _, err := env.svc.Create(context.Background(), "user-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for female father, got %v", err)
	}

	// Padre inexistente: rechazado.
	ghost := "no-such-animal"
	in = validCreateInput()
	in.Name = "Tercera"
	in.CUIA = "AR126"
	in.FatherID = &ghost
	if _, err := env.svc.Create(context.Background(), "user-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing father, got %v", err)
	}
}

func TestService_Update_StatusesRevalidatedAgainstSex(t *testing.T) {
	env := newTestEnv()

	a, err := env.svc.Create(context.Background(), "user-1", validCreateInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// female -> bull no pasa.
	bull := ProductionBull
	if _, err := env.svc.Update(context.Background(), "user-1", a.ID, UpdateInput{ProductionStatus: &bull}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// milking -> dry pasa.
	dry := ProductionDry
	updated, err := env.svc.Update(context.Background(), "user-1", a.ID, UpdateInput{ProductionStatus: &dry})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.ProductionStatus != ProductionDry {
		t.Fatalf("expected dry, got %s", updated.ProductionStatus)
	}
}

func TestService_Update_ClearsParentWithEmptyPointer(t *testing.T) {
	env := newTestEnv()

	mom, _ := env.svc.Create(context.Background(), "user-1", validCreateInput())
	in := validCreateInput()
	in.Name = "Cría"
	in.CUIA = "AR124"
	in.MotherID = &mom.ID
	calf, err := env.svc.Create(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	empty := ""
	updated, err := env.svc.Update(context.Background(), "user-1", calf.ID, UpdateInput{MotherID: &empty})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.MotherID != nil {
		t.Fatalf("expected mother cleared, got %v", *updated.MotherID)
	}
}

func TestService_Move_RecordsMovement(t *testing.T) {
	env := newTestEnv()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	a, err := env.svc.Create(context.Background(), "user-1", validCreateInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	mov, err := env.svc.Move(context.Background(), "user-1", a.ID, "lot-2", "rotación de pastura")
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if mov.FromID == nil || *mov.FromID != "lot-1" {
		t.Fatalf("expected FromID lot-1")
	}
	if mov.ToID != "lot-2" {
		t.Fatalf("expected ToID lot-2, got %s", mov.ToID)
	}
	if mov.Reason != "rotación de pastura" {
		t.Fatalf("unexpected reason %q", mov.Reason)
	}

	stored, _ := env.repo.GetByID(context.Background(), a.ID)
	if stored.LotID != "lot-2" {
		t.Fatalf("expected animal in lot-2, got %s", stored.LotID)
	}
}

func TestService_Move_RejectsSameLot(t *testing.T) {
	env := newTestEnv()

	a, _ := env.svc.Create(context.Background(), "user-1", validCreateInput())
	if _, err := env.svc.Move(context.Background(), "user-1", a.ID, "lot-1", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Move_RejectsInactiveTarget(t *testing.T) {
	env := newTestEnv()

	a, _ := env.svc.Create(context.Background(), "user-1", validCreateInput())
	if _, err := env.svc.Move(context.Background(), "user-1", a.ID, "lot-closed", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Move_CrossFarm_ReassignsFarmAndChecksUniqueness(t *testing.T) {
	env := newTestEnv()

	a, err := env.svc.Create(context.Background(), "user-1", validCreateInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Animal con el mismo nombre ya active en farm-2.
	clash := Animal{
		ID: "pre-existing", FarmID: "farm-2", LotID: "lot-other",
		Name: "Aurora", Sex: SexFemale, LifeStatus: LifeActive,
		ProductionStatus: ProductionMilking, ReproductiveStatus: ReproductiveOpen,
		HealthStatus: HealthHealthy,
		Owners:       []OwnerShare{{OwnerID: "owner-1", SharePercent: 100}},
	}
	if err := env.repo.Create(context.Background(), clash); err != nil {
		t.Fatalf("seed error: %v", err)
	}

	if _, err := env.svc.Move(context.Background(), "user-1", a.ID, "lot-other", ""); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on cross-farm clash, got %v", err)
	}

	// Sin choque, el move cross-farm reasigna la farm.
	clash.LifeStatus = LifeSold
	if err := env.repo.Update(context.Background(), clash); err != nil {
		t.Fatalf("seed update error: %v", err)
	}
	if _, err := env.svc.Move(context.Background(), "user-1", a.ID, "lot-other", "venta parcial"); err != nil {
		t.Fatalf("Move error: %v", err)
	}
	moved, _ := env.repo.GetByID(context.Background(), a.ID)
	if moved.FarmID != "farm-2" || moved.LotID != "lot-other" {
		t.Fatalf("expected farm-2/lot-other, got %s/%s", moved.FarmID, moved.LotID)
	}
}

func TestService_Detail_ResolvesLotOwnersAndParents(t *testing.T) {
	env := newTestEnv()

	mom, _ := env.svc.Create(context.Background(), "user-1", validCreateInput())
	in := validCreateInput()
	in.Name = "Cría"
	in.CUIA = "AR124"
	in.MotherID = &mom.ID
	in.Owners = []OwnerShare{
		{OwnerID: "owner-1", SharePercent: 60},
		{OwnerID: "owner-2", SharePercent: 40},
	}
	calf, err := env.svc.Create(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	d, err := env.svc.Detail(context.Background(), calf.ID)
	if err != nil {
		t.Fatalf("Detail error: %v", err)
	}
	if d.LotName != "lot lot-1" {
		t.Fatalf("expected lot name resolved, got %q", d.LotName)
	}
	if d.MotherTag == nil || *d.MotherTag != "T-01" {
		t.Fatalf("expected mother tag T-01")
	}
	if len(d.Owners) != 2 {
		t.Fatalf("expected 2 owner views, got %d", len(d.Owners))
	}
	names := map[string]string{}
	for _, v := range d.Owners {
		names[v.OwnerID] = v.Name
	}
	if names["owner-1"] != "Juan" || names["owner-2"] != "Ana" {
		t.Fatalf("expected owner names resolved, got %v", names)
	}
}

func TestService_ListByFarm_FiltersByLifeStatus(t *testing.T) {
	env := newTestEnv()

	a, _ := env.svc.Create(context.Background(), "user-1", validCreateInput())
	in := validCreateInput()
	in.Name = "Belinda"
	in.CUIA = "AR200"
	b, _ := env.svc.Create(context.Background(), "user-1", in)

	sold := LifeSold
	if _, err := env.svc.Update(context.Background(), "user-1", b.ID, UpdateInput{LifeStatus: &sold}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	active := LifeActive
	got, err := env.svc.ListByFarm(context.Background(), "farm-1", ListFilter{LifeStatus: &active})
	if err != nil {
		t.Fatalf("ListByFarm error: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("expected only the active animal, got %d", len(got))
	}
}

// seedAnimal inserta directo en el repo, salteando el service.
func seedAnimal(t *testing.T, repo *testRepo, id, name string, sex Sex, motherID, fatherID *string) Animal {
	t.Helper()
	a := Animal{
		ID: id, FarmID: "farm-1", LotID: "lot-1",
		Name: name, VisualTag: "tag-" + id, Sex: sex,
		LifeStatus: LifeActive, ProductionStatus: ProductionCalf,
		ReproductiveStatus: ReproductiveNotApplicable, HealthStatus: HealthHealthy,
		MotherID: motherID, FatherID: fatherID,
		Owners: []OwnerShare{{OwnerID: "owner-1", SharePercent: 100}},
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	return a
}

func TestService_Genealogy_ThreeGenerations(t *testing.T) {
	env := newTestEnv()

	grandma := seedAnimal(t, env.repo, "g1", "Abuela", SexFemale, nil, nil)
	grandpa := seedAnimal(t, env.repo, "g2", "Abuelo", SexMale, nil, nil)
	mom := seedAnimal(t, env.repo, "m1", "Madre", SexFemale, &grandma.ID, &grandpa.ID)
	dad := seedAnimal(t, env.repo, "f1", "Padre", SexMale, nil, nil)
	root := seedAnimal(t, env.repo, "r1", "Raíz", SexFemale, &mom.ID, &dad.ID)
	child := seedAnimal(t, env.repo, "c1", "Hija", SexFemale, &root.ID, nil)

	tree, err := env.svc.Genealogy(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("Genealogy error: %v", err)
	}

	if tree.Mother == nil || tree.Mother.ID != mom.ID {
		t.Fatalf("expected mother m1")
	}
	if tree.Mother.Mother == nil || tree.Mother.Mother.ID != grandma.ID {
		t.Fatalf("expected grandmother g1")
	}
	if tree.Mother.Father == nil || tree.Mother.Father.ID != grandpa.ID {
		t.Fatalf("expected grandfather g2")
	}
	if tree.Father == nil || tree.Father.ID != dad.ID {
		t.Fatalf("expected father f1")
	}
	if tree.Father.Mother != nil || tree.Father.Father != nil {
		t.Fatalf("expected father branch to end")
	}

	if len(tree.Children) != 1 || tree.Children[0].ID != child.ID {
		t.Fatalf("expected one child c1, got %d", len(tree.Children))
	}
	// La hoja termina con lista de hijos vacía, no nil.
	if tree.Children[0].Children == nil || len(tree.Children[0].Children) != 0 {
		t.Fatalf("expected empty children list at leaf")
	}
}

func TestService_Genealogy_DanglingParentCutsBranch(t *testing.T) {
	env := newTestEnv()

	ghost := "gone"
	root := seedAnimal(t, env.repo, "r1", "Raíz", SexFemale, &ghost, nil)

	tree, err := env.svc.Genealogy(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("Genealogy error: %v", err)
	}
	if tree.Mother != nil {
		t.Fatalf("expected dangling mother branch cut")
	}
}

// failingRepo corta GetByID con un error de infraestructura para un id dado.
type failingRepo struct {
	*testRepo
	failID string
	err    error
}

func (r *failingRepo) GetByID(ctx context.Context, id string) (Animal, error) {
	if id == r.failID {
		return Animal{}, r.err
	}
	return r.testRepo.GetByID(ctx, id)
}

func TestService_Genealogy_PropagatesStorageErrors(t *testing.T) {
	env := newTestEnv()

	mom := seedAnimal(t, env.repo, "m1", "Madre", SexFemale, nil, nil)
	root := seedAnimal(t, env.repo, "r1", "Raíz", SexFemale, &mom.ID, nil)

	errDown := errors.New("storage unavailable")
	failing := &failingRepo{testRepo: env.repo, failID: mom.ID, err: errDown}
	svc := NewService(failing, env.gate, env.ownDir, movements.NewRecorder(env.movRepo), passthroughUOW{})

	// Una falla de storage al resolver un ancestro no es una FK colgante:
	// el error sube en vez de podar la rama.
	if _, err := svc.Genealogy(context.Background(), root.ID); !errors.Is(err, errDown) {
		t.Fatalf("expected storage error propagated, got %v", err)
	}
}

func TestService_GetByID_KeepsStorageErrorsOpaque(t *testing.T) {
	env := newTestEnv()

	errDown := errors.New("storage unavailable")
	failing := &failingRepo{testRepo: env.repo, failID: "a1", err: errDown}
	svc := NewService(failing, env.gate, env.ownDir, movements.NewRecorder(env.movRepo), passthroughUOW{})

	if _, err := svc.GetByID(context.Background(), "a1"); !errors.Is(err, errDown) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected opaque storage error, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent id, got %v", err)
	}
}

func TestService_Genealogy_CycleTerminates(t *testing.T) {
	env := newTestEnv()

	// Ciclo armado directo en el repo: a es madre de b y b es madre de a.
	idA, idB := "a", "b"
	seedAnimal(t, env.repo, idA, "A", SexFemale, &idB, nil)
	seedAnimal(t, env.repo, idB, "B", SexFemale, &idA, nil)

	tree, err := env.svc.Genealogy(context.Background(), idA)
	if err != nil {
		t.Fatalf("Genealogy error: %v", err)
	}
	if tree.Mother == nil || tree.Mother.ID != idB {
		t.Fatalf("expected mother b")
	}
	// b apunta de vuelta a `a`, ya visitado: la rama corta ahí.
	if tree.Mother.Mother != nil {
		t.Fatalf("expected cycle to terminate, got another ancestor")
	}
}

func TestService_Genealogy_RepeatedReadsAreStable(t *testing.T) {
	env := newTestEnv()

	mom := seedAnimal(t, env.repo, "m1", "Madre", SexFemale, nil, nil)
	root := seedAnimal(t, env.repo, "r1", "Raíz", SexFemale, &mom.ID, nil)
	seedAnimal(t, env.repo, "c1", "Hija", SexFemale, &root.ID, nil)

	t1, err := env.svc.Genealogy(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("Genealogy #1 error: %v", err)
	}
	t2, err := env.svc.Genealogy(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("Genealogy #2 error: %v", err)
	}
	if !reflect.DeepEqual(t1, t2) {
		t.Fatalf("expected identical trees on repeated reads")
	}
}
