package animals

import (
	"context"
	"fmt"
	"strings"
)

// Uniqueness policy: CUIA y nombre son únicos por farm solo entre animales
// en LifeStatus bloqueante (active, missing). Un animal sold/dead libera sus
// identificadores. El chequeo es advisory — "check, then write" sin lock —
// el backstop real es el unique index parcial del storage, que el adapter
// postgres re-mapea a ErrDuplicate.

func (s *Service) ensureCUIAUnique(ctx context.Context, farmID, cuia, excludeAnimalID string) error {
	cuia = strings.TrimSpace(cuia)
	if cuia == "" {
		return nil // CUIA es opcional
	}

	matches, err := s.repo.ListByCUIA(ctx, farmID, cuia)
	if err != nil {
		return err
	}
	if hasBlockingConflict(matches, excludeAnimalID) {
		return fmt.Errorf("%w: %s already exists in this Farm", ErrDuplicate, cuia)
	}
	return nil
}

func (s *Service) ensureNameUnique(ctx context.Context, farmID, name, excludeAnimalID string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidInput
	}

	matches, err := s.repo.ListByName(ctx, farmID, name)
	if err != nil {
		return err
	}
	if hasBlockingConflict(matches, excludeAnimalID) {
		return fmt.Errorf("%w: %s already exists in this Farm", ErrDuplicate, name)
	}
	return nil
}

func hasBlockingConflict(matches []Animal, excludeAnimalID string) bool {
	for _, a := range matches {
		if a.ID == excludeAnimalID {
			continue
		}
		if a.LifeStatus.Blocking() {
			return true
		}
	}
	return false
}
