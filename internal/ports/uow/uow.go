package uow

import "context"

// UnitOfWork agrupa todas las escrituras de una operación lógica en un
// commit atómico: si fn devuelve error, nada queda aplicado.
//
// La implementación postgres propaga la transacción por el context, así los
// repos participan sin conocer el UnitOfWork. La implementación in-memory
// hace snapshot/restore de sus repos.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
