package animals

import "context"

// Los adapters devuelven ErrNotFound cuando el animal no existe; cualquier
// otro error es de infraestructura y el service lo propaga sin re-mapear.
type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)

	// ListByCUIA / ListByName devuelven todos los animales de la farm con ese
	// identificador, cualquier LifeStatus; el filtro de estados bloqueantes
	// lo aplica la uniqueness policy.
	ListByCUIA(ctx context.Context, farmID, cuia string) ([]Animal, error)
	ListByName(ctx context.Context, farmID, name string) ([]Animal, error)

	// ListByParent hace el reverse lookup mother_id == id OR father_id == id.
	ListByParent(ctx context.Context, parentID string) ([]Animal, error)

	ListByFarm(ctx context.Context, farmID string, filter ListFilter) ([]Animal, error)
}

type ListFilter struct {
	LifeStatus *LifeStatus
	LotID      string
	Query      string // busca en name, visual tag y cuia
	Limit      int
	Offset     int
}
