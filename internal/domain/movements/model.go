package movements

import "time"

// EntityType indica qué clase de entidad se movió.
type EntityType string

const (
	EntityAnimal EntityType = "ANIMAL"
	EntityLot    EntityType = "LOT"
)

// Movement es un registro de auditoría inmutable: se inserta una vez por
// cambio de contenedor y nunca se actualiza ni se borra.
type Movement struct {
	ID string

	EntityType EntityType
	EntityID   string

	// FromID es nil en la primera asignación de contenedor.
	FromID *string
	ToID   string

	MovedAt time.Time
	Reason  string
	MovedBy string // user id del actor
}
