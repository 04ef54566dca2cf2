package farms

import (
	"context"
	"fmt"
	"strings"
)

// Access Gate: todos los paths de mutación autorizan por acá, no se duplica
// el chequeo de membresía por operación.

// FarmOfLot resuelve la farm dueña de un lot siguiendo lot → paddock → farm.
func (s *Service) FarmOfLot(ctx context.Context, lotID string) (Farm, error) {
	lotID = strings.TrimSpace(lotID)
	if lotID == "" {
		return Farm{}, ErrInvalidInput
	}

	lot, err := s.repo.GetLot(ctx, lotID)
	if err != nil {
		return Farm{}, fmt.Errorf("%w: lot %s", ErrNotFound, lotID)
	}
	paddock, err := s.repo.GetPaddock(ctx, lot.PaddockID)
	if err != nil {
		return Farm{}, fmt.Errorf("%w: paddock %s", ErrNotFound, lot.PaddockID)
	}
	farm, err := s.repo.GetFarm(ctx, paddock.FarmID)
	if err != nil {
		return Farm{}, fmt.Errorf("%w: farm %s", ErrNotFound, paddock.FarmID)
	}
	return farm, nil
}

// AuthorizeMember exige una membresía (cualquier rol) en la farm.
func (s *Service) AuthorizeMember(ctx context.Context, farmID, userID string) error {
	farmID = strings.TrimSpace(farmID)
	userID = strings.TrimSpace(userID)
	if farmID == "" || userID == "" {
		return ErrInvalidInput
	}
	if _, err := s.repo.GetMember(ctx, farmID, userID); err != nil {
		return ErrForbidden
	}
	return nil
}

// AuthorizeMutator exige membresía con rol que habilite escritura.
// Un viewer obtiene Forbidden, igual que un no-miembro.
func (s *Service) AuthorizeMutator(ctx context.Context, farmID, userID string) error {
	farmID = strings.TrimSpace(farmID)
	userID = strings.TrimSpace(userID)
	if farmID == "" || userID == "" {
		return ErrInvalidInput
	}
	m, err := s.repo.GetMember(ctx, farmID, userID)
	if err != nil {
		return ErrForbidden
	}
	if !m.Role.CanMutate() {
		return ErrForbidden
	}
	return nil
}

// AuthorizeLotMutation resuelve la farm del lot y autoriza la escritura.
// Es el gate que usan los módulos de animales y lotes antes de persistir.
func (s *Service) AuthorizeLotMutation(ctx context.Context, lotID, userID string) (Lot, Farm, error) {
	lotID = strings.TrimSpace(lotID)
	if lotID == "" {
		return Lot{}, Farm{}, ErrInvalidInput
	}
	lot, err := s.repo.GetLot(ctx, lotID)
	if err != nil {
		return Lot{}, Farm{}, fmt.Errorf("%w: lot %s", ErrNotFound, lotID)
	}
	farm, err := s.FarmOfLot(ctx, lotID)
	if err != nil {
		return Lot{}, Farm{}, err
	}
	if err := s.AuthorizeMutator(ctx, farm.ID, userID); err != nil {
		return Lot{}, Farm{}, err
	}
	return lot, farm, nil
}

// AuthorizeLotRead es la variante de lectura (cualquier rol de la farm).
func (s *Service) AuthorizeLotRead(ctx context.Context, lotID, userID string) (Farm, error) {
	farm, err := s.FarmOfLot(ctx, lotID)
	if err != nil {
		return Farm{}, err
	}
	if err := s.AuthorizeMember(ctx, farm.ID, userID); err != nil {
		return Farm{}, err
	}
	return farm, nil
}
