package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"herd-registry/internal/domain/farms"
	"herd-registry/internal/domain/movements"
	"herd-registry/internal/domain/owners"
	"herd-registry/internal/ports/uow"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrDuplicate es una violación de la uniqueness policy. Para el caller
	// es un error de validación, pero lo separamos para que el adapter
	// postgres pueda re-mapear la violación de unique index al mismo kind.
	ErrDuplicate = errors.New("duplicate identifier")
)

// FarmGate autoriza mutaciones/lecturas contra la farm dueña de un lot.
// Lo implementa farms.Service; los errores de permiso son farms.ErrForbidden.
type FarmGate interface {
	AuthorizeLotMutation(ctx context.Context, lotID, userID string) (farms.Lot, farms.Farm, error)
	GetLot(ctx context.Context, id string) (farms.Lot, error)
}

// OwnerDirectory resuelve owners por id (validación de shares y detail view).
type OwnerDirectory interface {
	GetByID(ctx context.Context, id string) (owners.Owner, error)
}

type Service struct {
	repo     Repository
	gate     FarmGate
	owners   OwnerDirectory
	recorder *movements.Recorder
	uow      uow.UnitOfWork
	now      func() time.Time
}

func NewService(repo Repository, gate FarmGate, ownerDir OwnerDirectory, recorder *movements.Recorder, unit uow.UnitOfWork) *Service {
	return &Service{
		repo:     repo,
		gate:     gate,
		owners:   ownerDir,
		recorder: recorder,
		uow:      unit,
		now:      time.Now,
	}
}

type CreateInput struct {
	LotID     string
	CUIA      string
	VisualTag string
	Name      string
	Sex       Sex
	BirthDate *time.Time

	MotherID *string
	FatherID *string

	ProductionStatus   ProductionStatus
	ReproductiveStatus ReproductiveStatus
	HealthStatus       HealthStatus

	Owners []OwnerShare

	PhotoURL string
}

// Create registra un animal: gate → validadores → persistencia + movimiento
// inicial (fromId nil) en un solo unit of work. El animal nace active.
func (s *Service) Create(ctx context.Context, actorUserID string, in CreateInput) (Animal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Animal{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.LotID) == "" {
		return Animal{}, fmt.Errorf("%w: lot id is required", ErrInvalidInput)
	}

	lot, farm, err := s.gate.AuthorizeLotMutation(ctx, in.LotID, actorUserID)
	if err != nil {
		return Animal{}, err
	}
	if lot.Status != farms.LotActive {
		return Animal{}, fmt.Errorf("%w: lot %s is %s, cannot receive animals", ErrInvalidInput, lot.ID, lot.Status)
	}

	health := in.HealthStatus
	if health == "" {
		health = HealthHealthy
	}
	if !health.Valid() {
		return Animal{}, fmt.Errorf("%w: unknown health status %q", ErrInvalidInput, health)
	}
	if err := ValidateStatuses(in.Sex, in.ProductionStatus, in.ReproductiveStatus); err != nil {
		return Animal{}, err
	}
	if err := ValidateOwnerShares(in.Owners); err != nil {
		return Animal{}, err
	}
	if err := s.ensureOwnersExist(ctx, in.Owners); err != nil {
		return Animal{}, err
	}
	if err := s.ensureNameUnique(ctx, farm.ID, name, ""); err != nil {
		return Animal{}, err
	}
	if err := s.ensureCUIAUnique(ctx, farm.ID, in.CUIA, ""); err != nil {
		return Animal{}, err
	}

	motherID, err := s.validateParent(ctx, in.MotherID, SexFemale, farm.ID, "mother")
	if err != nil {
		return Animal{}, err
	}
	fatherID, err := s.validateParent(ctx, in.FatherID, SexMale, farm.ID, "father")
	if err != nil {
		return Animal{}, err
	}

	now := s.now()
	a := Animal{
		ID:                 uuid.NewString(),
		FarmID:             farm.ID,
		LotID:              lot.ID,
		CUIA:               strings.TrimSpace(in.CUIA),
		VisualTag:          strings.TrimSpace(in.VisualTag),
		Name:               name,
		Sex:                in.Sex,
		BirthDate:          in.BirthDate,
		MotherID:           motherID,
		FatherID:           fatherID,
		LifeStatus:         LifeActive,
		ProductionStatus:   in.ProductionStatus,
		ReproductiveStatus: in.ReproductiveStatus,
		HealthStatus:       health,
		Owners:             in.Owners,
		PhotoURL:           strings.TrimSpace(in.PhotoURL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, movements.RecordInput{
			EntityType: movements.EntityAnimal,
			EntityID:   a.ID,
			FromID:     nil,
			ToID:       lot.ID,
			Reason:     "initial placement",
			MovedBy:    actorUserID,
		})
		return err
	})
	if err != nil {
		return Animal{}, err
	}
	return a, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	CUIA      *string
	VisualTag *string
	Name      *string
	BirthDate *time.Time

	// Para limpiar un padre: puntero a string vacío.
	MotherID *string
	FatherID *string

	LifeStatus         *LifeStatus
	ProductionStatus   *ProductionStatus
	ReproductiveStatus *ReproductiveStatus
	HealthStatus       *HealthStatus

	// Reemplazo completo de la lista de owners; nil = no tocar.
	Owners []OwnerShare

	PhotoURL *string
}

// Update aplica un patch al animal. Sex es inmutable: los status se
// re-validan contra el sexo existente cuando cambian.
func (s *Service) Update(ctx context.Context, actorUserID, animalID string, in UpdateInput) (Animal, error) {
	a, err := s.GetByID(ctx, animalID)
	if err != nil {
		return Animal{}, err
	}

	if _, _, err := s.gate.AuthorizeLotMutation(ctx, a.LotID, actorUserID); err != nil {
		return Animal{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Animal{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		if name != a.Name {
			if err := s.ensureNameUnique(ctx, a.FarmID, name, a.ID); err != nil {
				return Animal{}, err
			}
		}
		a.Name = name
	}
	if in.CUIA != nil {
		cuia := strings.TrimSpace(*in.CUIA)
		if cuia != a.CUIA {
			if err := s.ensureCUIAUnique(ctx, a.FarmID, cuia, a.ID); err != nil {
				return Animal{}, err
			}
		}
		a.CUIA = cuia
	}
	if in.VisualTag != nil {
		a.VisualTag = strings.TrimSpace(*in.VisualTag)
	}
	if in.BirthDate != nil {
		a.BirthDate = in.BirthDate
	}

	if in.MotherID != nil {
		motherID, err := s.validateParent(ctx, in.MotherID, SexFemale, a.FarmID, "mother")
		if err != nil {
			return Animal{}, err
		}
		a.MotherID = motherID
	}
	if in.FatherID != nil {
		fatherID, err := s.validateParent(ctx, in.FatherID, SexMale, a.FarmID, "father")
		if err != nil {
			return Animal{}, err
		}
		a.FatherID = fatherID
	}

	if in.LifeStatus != nil {
		if !in.LifeStatus.Valid() {
			return Animal{}, fmt.Errorf("%w: unknown life status %q", ErrInvalidInput, *in.LifeStatus)
		}
		// Reactivación: volver a un estado bloqueante re-reserva los
		// identificadores, que pudieron ser legítimamente reutilizados
		// mientras el animal estaba sold/dead.
		if !a.LifeStatus.Blocking() && in.LifeStatus.Blocking() {
			if err := s.ensureNameUnique(ctx, a.FarmID, a.Name, a.ID); err != nil {
				return Animal{}, err
			}
			if err := s.ensureCUIAUnique(ctx, a.FarmID, a.CUIA, a.ID); err != nil {
				return Animal{}, err
			}
		}
		a.LifeStatus = *in.LifeStatus
	}
	if in.HealthStatus != nil {
		if !in.HealthStatus.Valid() {
			return Animal{}, fmt.Errorf("%w: unknown health status %q", ErrInvalidInput, *in.HealthStatus)
		}
		a.HealthStatus = *in.HealthStatus
	}

	if in.ProductionStatus != nil || in.ReproductiveStatus != nil {
		production := a.ProductionStatus
		reproductive := a.ReproductiveStatus
		if in.ProductionStatus != nil {
			production = *in.ProductionStatus
		}
		if in.ReproductiveStatus != nil {
			reproductive = *in.ReproductiveStatus
		}
		if err := ValidateStatuses(a.Sex, production, reproductive); err != nil {
			return Animal{}, err
		}
		a.ProductionStatus = production
		a.ReproductiveStatus = reproductive
	}

	if in.Owners != nil {
		if err := ValidateOwnerShares(in.Owners); err != nil {
			return Animal{}, err
		}
		if err := s.ensureOwnersExist(ctx, in.Owners); err != nil {
			return Animal{}, err
		}
		a.Owners = in.Owners
	}

	if in.PhotoURL != nil {
		a.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}

	a.UpdatedAt = s.now()

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, a)
	})
	if err != nil {
		return Animal{}, err
	}
	return a, nil
}

// Move traslada el animal a otro lot. El actor debe poder mutar la farm
// origen y la destino (relevante cuando el lot destino es de otra farm).
// El update de la FK y el registro de movimiento commitean juntos.
func (s *Service) Move(ctx context.Context, actorUserID, animalID, toLotID, reason string) (movements.Movement, error) {
	toLotID = strings.TrimSpace(toLotID)
	if toLotID == "" {
		return movements.Movement{}, fmt.Errorf("%w: target lot id is required", ErrInvalidInput)
	}

	a, err := s.GetByID(ctx, animalID)
	if err != nil {
		return movements.Movement{}, err
	}
	if a.LotID == toLotID {
		return movements.Movement{}, fmt.Errorf("%w: animal already in lot %s", ErrInvalidInput, toLotID)
	}

	// Gate en origen y destino.
	if _, _, err := s.gate.AuthorizeLotMutation(ctx, a.LotID, actorUserID); err != nil {
		return movements.Movement{}, err
	}
	target, targetFarm, err := s.gate.AuthorizeLotMutation(ctx, toLotID, actorUserID)
	if err != nil {
		return movements.Movement{}, err
	}
	if target.Status != farms.LotActive {
		return movements.Movement{}, fmt.Errorf("%w: lot %s is %s, cannot receive animals", ErrInvalidInput, target.ID, target.Status)
	}

	// Transferencia cross-farm: el identificador no puede chocar en destino.
	if targetFarm.ID != a.FarmID {
		if err := s.ensureNameUnique(ctx, targetFarm.ID, a.Name, a.ID); err != nil {
			return movements.Movement{}, err
		}
		if err := s.ensureCUIAUnique(ctx, targetFarm.ID, a.CUIA, a.ID); err != nil {
			return movements.Movement{}, err
		}
	}

	fromID := a.LotID
	a.LotID = target.ID
	a.FarmID = targetFarm.ID
	a.UpdatedAt = s.now()

	var mov movements.Movement
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		var err error
		mov, err = s.recorder.Record(ctx, movements.RecordInput{
			EntityType: movements.EntityAnimal,
			EntityID:   a.ID,
			FromID:     &fromID,
			ToID:       target.ID,
			Reason:     reason,
			MovedBy:    actorUserID,
		})
		return err
	})
	if err != nil {
		return movements.Movement{}, err
	}
	return mov, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrInvalidInput
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Animal{}, ErrNotFound
		}
		// Falla de infraestructura, no ausencia: se propaga tal cual.
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) ListByFarm(ctx context.Context, farmID string, filter ListFilter) ([]Animal, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByFarm(ctx, farmID, filter)
}

// Detail es la vista plana para capas de presentación: lot resuelto, tags de
// los padres y nombres de owners.
type Detail struct {
	Animal

	LotName   string
	MotherTag *string
	FatherTag *string
	Owners    []OwnerView
}

type OwnerView struct {
	OwnerID      string
	Name         string
	SharePercent float64
}

func (s *Service) Detail(ctx context.Context, id string) (Detail, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Animal: a}

	if lot, err := s.gate.GetLot(ctx, a.LotID); err == nil {
		d.LotName = lot.Name
	}
	d.MotherTag = s.parentTag(ctx, a.MotherID)
	d.FatherTag = s.parentTag(ctx, a.FatherID)

	d.Owners = make([]OwnerView, 0, len(a.Owners))
	for _, share := range a.Owners {
		view := OwnerView{OwnerID: share.OwnerID, SharePercent: share.SharePercent}
		if o, err := s.owners.GetByID(ctx, share.OwnerID); err == nil {
			view.Name = o.Name
		}
		d.Owners = append(d.Owners, view)
	}

	return d, nil
}

func (s *Service) parentTag(ctx context.Context, parentID *string) *string {
	if parentID == nil {
		return nil
	}
	p, err := s.repo.GetByID(ctx, *parentID)
	if err != nil {
		return nil
	}
	tag := p.VisualTag
	if tag == "" {
		tag = p.Name
	}
	return &tag
}

// validateParent resuelve y valida una referencia a padre/madre: debe
// existir, tener el sexo esperado y pertenecer a la misma farm. Un puntero a
// string vacío limpia la referencia.
func (s *Service) validateParent(ctx context.Context, parentID *string, wantSex Sex, farmID, label string) (*string, error) {
	if parentID == nil {
		return nil, nil
	}
	id := strings.TrimSpace(*parentID)
	if id == "" {
		return nil, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s not found", ErrInvalidInput, label, id)
	}
	if p.Sex != wantSex {
		return nil, fmt.Errorf("%w: %s must be a %s animal", ErrInvalidInput, label, wantSex)
	}
	if p.FarmID != farmID {
		return nil, fmt.Errorf("%w: %s must belong to the same farm", ErrInvalidInput, label)
	}
	return &p.ID, nil
}

func (s *Service) ensureOwnersExist(ctx context.Context, shares []OwnerShare) error {
	for _, share := range shares {
		if _, err := s.owners.GetByID(ctx, share.OwnerID); err != nil {
			return fmt.Errorf("%w: owner %s not found", ErrInvalidInput, share.OwnerID)
		}
	}
	return nil
}
