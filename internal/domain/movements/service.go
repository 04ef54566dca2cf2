package movements

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Recorder crea registros de movimiento y expone el historial ordenado.
// El llamador es responsable de ejecutar Record dentro del mismo unit of
// work que actualiza la FK de contenedor de la entidad.
type Recorder struct {
	repo Repository
	now  func() time.Time
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{
		repo: repo,
		now:  time.Now,
	}
}

type RecordInput struct {
	EntityType EntityType
	EntityID   string
	FromID     *string // nil = primera asignación
	ToID       string
	Reason     string
	MovedBy    string
}

func (r *Recorder) Record(ctx context.Context, in RecordInput) (Movement, error) {
	if in.EntityType != EntityAnimal && in.EntityType != EntityLot {
		return Movement{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.EntityID) == "" {
		return Movement{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.ToID) == "" {
		return Movement{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.MovedBy) == "" {
		return Movement{}, ErrInvalidInput
	}

	m := Movement{
		ID:         uuid.NewString(),
		EntityType: in.EntityType,
		EntityID:   strings.TrimSpace(in.EntityID),
		FromID:     in.FromID,
		ToID:       strings.TrimSpace(in.ToID),
		MovedAt:    r.now(),
		Reason:     strings.TrimSpace(in.Reason),
		MovedBy:    strings.TrimSpace(in.MovedBy),
	}

	if err := r.repo.Create(ctx, m); err != nil {
		return Movement{}, err
	}
	return m, nil
}

// History devuelve los movimientos de una entidad, más reciente primero.
func (r *Recorder) History(ctx context.Context, entityType EntityType, entityID string, limit int) ([]Movement, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, ErrInvalidInput
	}
	if entityType != EntityAnimal && entityType != EntityLot {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return r.repo.ListByEntity(ctx, entityType, entityID, limit)
}

// AnimalHistory es el atajo con entityType fijo en ANIMAL.
func (r *Recorder) AnimalHistory(ctx context.Context, animalID string, limit int) ([]Movement, error) {
	return r.History(ctx, EntityAnimal, animalID, limit)
}
