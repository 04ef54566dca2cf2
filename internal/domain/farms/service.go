package farms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"herd-registry/internal/domain/movements"
	"herd-registry/internal/ports/uow"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo     Repository
	recorder *movements.Recorder
	uow      uow.UnitOfWork
	now      func() time.Time
}

func NewService(repo Repository, recorder *movements.Recorder, unit uow.UnitOfWork) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		uow:      unit,
		now:      time.Now,
	}
}

// CreateFarm crea la farm y deja al creador como member con rol owner,
// en el mismo unit of work.
func (s *Service) CreateFarm(ctx context.Context, createdBy, name string) (Farm, error) {
	createdBy = strings.TrimSpace(createdBy)
	name = strings.TrimSpace(name)
	if createdBy == "" || name == "" {
		return Farm{}, ErrInvalidInput
	}

	now := s.now()
	f := Farm{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateFarm(ctx, f); err != nil {
			return err
		}
		return s.repo.AddMember(ctx, Member{
			FarmID:    f.ID,
			UserID:    createdBy,
			Role:      RoleOwner,
			CreatedAt: now,
		})
	})
	if err != nil {
		return Farm{}, err
	}
	return f, nil
}

func (s *Service) GetFarm(ctx context.Context, id string) (Farm, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Farm{}, ErrInvalidInput
	}
	f, err := s.repo.GetFarm(ctx, id)
	if err != nil {
		return Farm{}, ErrNotFound
	}
	return f, nil
}

// AddMember agrega un miembro; solo owner/admin de la farm pueden hacerlo.
func (s *Service) AddMember(ctx context.Context, actorUserID, farmID, userID string, role Role) (Member, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Member{}, ErrInvalidInput
	}
	switch role {
	case RoleOwner, RoleAdmin, RoleViewer:
	default:
		return Member{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if _, err := s.GetFarm(ctx, farmID); err != nil {
		return Member{}, err
	}
	if err := s.AuthorizeMutator(ctx, farmID, actorUserID); err != nil {
		return Member{}, err
	}

	m := Member{
		FarmID:    strings.TrimSpace(farmID),
		UserID:    userID,
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddMember(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

func (s *Service) ListMembers(ctx context.Context, actorUserID, farmID string) ([]Member, error) {
	if err := s.AuthorizeMember(ctx, farmID, actorUserID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, farmID)
}

func (s *Service) CreatePaddock(ctx context.Context, actorUserID, farmID, name string) (Paddock, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Paddock{}, ErrInvalidInput
	}
	if _, err := s.GetFarm(ctx, farmID); err != nil {
		return Paddock{}, err
	}
	if err := s.AuthorizeMutator(ctx, farmID, actorUserID); err != nil {
		return Paddock{}, err
	}

	now := s.now()
	p := Paddock{
		ID:        uuid.NewString(),
		FarmID:    strings.TrimSpace(farmID),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePaddock(ctx, p); err != nil {
		return Paddock{}, err
	}
	return p, nil
}

func (s *Service) ListPaddocks(ctx context.Context, actorUserID, farmID string) ([]Paddock, error) {
	if err := s.AuthorizeMember(ctx, farmID, actorUserID); err != nil {
		return nil, err
	}
	return s.repo.ListPaddocksByFarm(ctx, farmID)
}

func (s *Service) CreateLot(ctx context.Context, actorUserID, paddockID, name string) (Lot, error) {
	name = strings.TrimSpace(name)
	paddockID = strings.TrimSpace(paddockID)
	if name == "" || paddockID == "" {
		return Lot{}, ErrInvalidInput
	}

	paddock, err := s.repo.GetPaddock(ctx, paddockID)
	if err != nil {
		return Lot{}, fmt.Errorf("%w: paddock %s", ErrNotFound, paddockID)
	}
	if err := s.AuthorizeMutator(ctx, paddock.FarmID, actorUserID); err != nil {
		return Lot{}, err
	}

	now := s.now()
	l := Lot{
		ID:        uuid.NewString(),
		PaddockID: paddockID,
		Name:      name,
		Status:    LotActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateLot(ctx, l); err != nil {
		return Lot{}, err
	}
	return l, nil
}

func (s *Service) GetLot(ctx context.Context, id string) (Lot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Lot{}, ErrInvalidInput
	}
	l, err := s.repo.GetLot(ctx, id)
	if err != nil {
		return Lot{}, ErrNotFound
	}
	return l, nil
}

func (s *Service) ListLots(ctx context.Context, actorUserID, paddockID string) ([]Lot, error) {
	paddock, err := s.repo.GetPaddock(ctx, strings.TrimSpace(paddockID))
	if err != nil {
		return nil, fmt.Errorf("%w: paddock %s", ErrNotFound, paddockID)
	}
	if err := s.AuthorizeMember(ctx, paddock.FarmID, actorUserID); err != nil {
		return nil, err
	}
	return s.repo.ListLotsByPaddock(ctx, paddock.ID)
}

// SetLotStatus cambia el status del lot (active/inactive/maintenance).
func (s *Service) SetLotStatus(ctx context.Context, actorUserID, lotID string, status LotStatus) (Lot, error) {
	switch status {
	case LotActive, LotInactive, LotMaintenance:
	default:
		return Lot{}, fmt.Errorf("%w: unknown lot status %q", ErrInvalidInput, status)
	}

	lot, _, err := s.AuthorizeLotMutation(ctx, lotID, actorUserID)
	if err != nil {
		return Lot{}, err
	}

	lot.Status = status
	lot.UpdatedAt = s.now()
	if err := s.repo.UpdateLot(ctx, lot); err != nil {
		return Lot{}, err
	}
	return lot, nil
}

// MoveLot traslada un lot a otro paddock. El movimiento LOT y el update de
// la FK se confirman juntos o no se aplica ninguno. Si el paddock destino
// pertenece a otra farm, el actor debe poder mutar ambas farms.
func (s *Service) MoveLot(ctx context.Context, actorUserID, lotID, toPaddockID, reason string) (movements.Movement, error) {
	toPaddockID = strings.TrimSpace(toPaddockID)
	if toPaddockID == "" {
		return movements.Movement{}, ErrInvalidInput
	}

	lot, _, err := s.AuthorizeLotMutation(ctx, lotID, actorUserID)
	if err != nil {
		return movements.Movement{}, err
	}

	target, err := s.repo.GetPaddock(ctx, toPaddockID)
	if err != nil {
		return movements.Movement{}, fmt.Errorf("%w: paddock %s", ErrNotFound, toPaddockID)
	}
	if err := s.AuthorizeMutator(ctx, target.FarmID, actorUserID); err != nil {
		return movements.Movement{}, err
	}

	if lot.PaddockID == toPaddockID {
		return movements.Movement{}, fmt.Errorf("%w: lot already in paddock %s", ErrInvalidInput, toPaddockID)
	}

	fromID := lot.PaddockID
	var mov movements.Movement
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		lot.PaddockID = toPaddockID
		lot.UpdatedAt = s.now()
		if err := s.repo.UpdateLot(ctx, lot); err != nil {
			return err
		}
		var err error
		mov, err = s.recorder.Record(ctx, movements.RecordInput{
			EntityType: movements.EntityLot,
			EntityID:   lot.ID,
			FromID:     &fromID,
			ToID:       toPaddockID,
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
