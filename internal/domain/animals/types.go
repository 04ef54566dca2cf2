package animals

// Sex define el sexo del animal. Inmutable en la práctica.
// @Enum male, female
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// LifeStatus es el estado de ciclo de vida. Active y Missing son estados
// "bloqueantes": reservan CUIA y nombre contra reuso dentro de la farm.
// @Enum active, sold, dead, missing
type LifeStatus string

const (
	LifeActive  LifeStatus = "active"
	LifeSold    LifeStatus = "sold"
	LifeDead    LifeStatus = "dead"
	LifeMissing LifeStatus = "missing"
)

func (l LifeStatus) Valid() bool {
	switch l {
	case LifeActive, LifeSold, LifeDead, LifeMissing:
		return true
	}
	return false
}

// Blocking indica si el status reserva identificadores contra reuso.
func (l LifeStatus) Blocking() bool {
	return l == LifeActive || l == LifeMissing
}

// ProductionStatus es el rol productivo, condicionado por sexo (ver status.go).
// @Enum calf, heifer, milking, dry, bull, steer
type ProductionStatus string

const (
	ProductionCalf    ProductionStatus = "calf"
	ProductionHeifer  ProductionStatus = "heifer"
	ProductionMilking ProductionStatus = "milking"
	ProductionDry     ProductionStatus = "dry"
	ProductionBull    ProductionStatus = "bull"
	ProductionSteer   ProductionStatus = "steer"
)

func (p ProductionStatus) Valid() bool {
	switch p {
	case ProductionCalf, ProductionHeifer, ProductionMilking, ProductionDry, ProductionBull, ProductionSteer:
		return true
	}
	return false
}

// ReproductiveStatus está condicionado por sexo: machos siempre not_applicable.
// @Enum not_applicable, open, pregnant
type ReproductiveStatus string

const (
	ReproductiveNotApplicable ReproductiveStatus = "not_applicable"
	ReproductiveOpen          ReproductiveStatus = "open"
	ReproductivePregnant      ReproductiveStatus = "pregnant"
)

func (r ReproductiveStatus) Valid() bool {
	switch r {
	case ReproductiveNotApplicable, ReproductiveOpen, ReproductivePregnant:
		return true
	}
	return false
}

// HealthStatus no se cruza con los demás status.
// @Enum healthy, sick, in_treatment
type HealthStatus string

const (
	HealthHealthy     HealthStatus = "healthy"
	HealthSick        HealthStatus = "sick"
	HealthInTreatment HealthStatus = "in_treatment"
)

func (h HealthStatus) Valid() bool {
	switch h {
	case HealthHealthy, HealthSick, HealthInTreatment:
		return true
	}
	return false
}
