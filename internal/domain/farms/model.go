package farms

import "time"

// Role controla qué puede hacer un miembro dentro de la farm.
// @Enum owner, admin, viewer
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// CanMutate indica si el rol habilita escrituras sobre la farm.
func (r Role) CanMutate() bool {
	return r == RoleOwner || r == RoleAdmin
}

// LotStatus es independiente del ciclo de vida de los animales.
// @Enum active, inactive, maintenance
type LotStatus string

const (
	LotActive      LotStatus = "active"
	LotInactive    LotStatus = "inactive"
	LotMaintenance LotStatus = "maintenance"
)

// Farm es la raíz de la jerarquía espacial farm → paddock → lot.
type Farm struct {
	ID   string
	Name string

	CreatedBy string // user id del creador (queda como member owner)

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Paddock struct {
	ID     string
	FarmID string
	Name   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Lot struct {
	ID        string
	PaddockID string
	Name      string
	Status    LotStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Member struct {
	FarmID string
	UserID string
	Role   Role

	CreatedAt time.Time
}
