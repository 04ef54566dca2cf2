package animals

import "time"

// OwnerShare es una fila de equity (owner, porcentaje). Los porcentajes de
// un animal siempre suman exactamente 100 (ver ownership.go).
type OwnerShare struct {
	OwnerID      string
	SharePercent float64
}

// Animal es el agregado central. La genealogía se guarda plana: MotherID y
// FatherID son FKs nullable, el árbol se reconstruye on demand (genealogy.go).
type Animal struct {
	ID     string
	FarmID string
	LotID  string // FK denormalizada al lot actual, mutable vía Move

	// CUIA es el identificador nacional, opcional, único por farm entre
	// animales en estado bloqueante. VisualTag es texto libre, no único.
	CUIA      string
	VisualTag string
	Name      string

	Sex       Sex
	BirthDate *time.Time

	MotherID *string
	FatherID *string

	LifeStatus         LifeStatus
	ProductionStatus   ProductionStatus
	ReproductiveStatus ReproductiveStatus
	HealthStatus       HealthStatus

	Owners []OwnerShare

	PhotoURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}
