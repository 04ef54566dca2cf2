package animals

import "fmt"

// ValidateStatuses chequea la consistencia de la tripla
// (sex, production, reproductive). Las reglas se evalúan en orden y gana la
// primera violación. LifeStatus y HealthStatus no se cruzan acá.
func ValidateStatuses(sex Sex, production ProductionStatus, reproductive ReproductiveStatus) error {
	if !sex.Valid() {
		return fmt.Errorf("%w: unknown sex %q", ErrInvalidInput, sex)
	}
	if !production.Valid() {
		return fmt.Errorf("%w: unknown production status %q", ErrInvalidInput, production)
	}
	if !reproductive.Valid() {
		return fmt.Errorf("%w: unknown reproductive status %q", ErrInvalidInput, reproductive)
	}

	// 1. bull/steer => macho
	if production == ProductionBull || production == ProductionSteer {
		if sex != SexMale {
			return fmt.Errorf("%w: production status %q requires a male animal", ErrInvalidInput, production)
		}
	}

	// 2. heifer/milking/dry => hembra
	if production == ProductionHeifer || production == ProductionMilking || production == ProductionDry {
		if sex != SexFemale {
			return fmt.Errorf("%w: production status %q requires a female animal", ErrInvalidInput, production)
		}
	}

	// 3. macho => reproductive not_applicable
	if sex == SexMale && reproductive != ReproductiveNotApplicable {
		return fmt.Errorf("%w: reproductive status %q is not applicable to a male animal", ErrInvalidInput, reproductive)
	}

	// 4. pregnant => hembra
	if reproductive == ReproductivePregnant && sex != SexFemale {
		return fmt.Errorf("%w: reproductive status %q requires a female animal", ErrInvalidInput, reproductive)
	}

	return nil
}
