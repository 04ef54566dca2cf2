package animals

import (
	"errors"
	"testing"
)

func TestValidateStatuses_AcceptsConsistentTriples(t *testing.T) {
	cases := []struct {
		name         string
		sex          Sex
		production   ProductionStatus
		reproductive ReproductiveStatus
	}{
		{"milking pregnant cow", SexFemale, ProductionMilking, ReproductivePregnant},
		{"dry open cow", SexFemale, ProductionDry, ReproductiveOpen},
		{"open heifer", SexFemale, ProductionHeifer, ReproductiveOpen},
		{"female calf", SexFemale, ProductionCalf, ReproductiveNotApplicable},
		{"bull", SexMale, ProductionBull, ReproductiveNotApplicable},
		{"steer", SexMale, ProductionSteer, ReproductiveNotApplicable},
		{"male calf", SexMale, ProductionCalf, ReproductiveNotApplicable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateStatuses(tc.sex, tc.production, tc.reproductive); err != nil {
				t.Fatalf("ValidateStatuses(%s, %s, %s) error: %v", tc.sex, tc.production, tc.reproductive, err)
			}
		})
	}
}

func TestValidateStatuses_RejectsInconsistentTriples(t *testing.T) {
	cases := []struct {
		name         string
		sex          Sex
		production   ProductionStatus
		reproductive ReproductiveStatus
	}{
		{"female bull", SexFemale, ProductionBull, ReproductiveNotApplicable},
		{"female steer", SexFemale, ProductionSteer, ReproductiveNotApplicable},
		{"male heifer", SexMale, ProductionHeifer, ReproductiveNotApplicable},
		{"male milking", SexMale, ProductionMilking, ReproductiveNotApplicable},
		{"male dry", SexMale, ProductionDry, ReproductiveNotApplicable},
		{"male open", SexMale, ProductionBull, ReproductiveOpen},
		{"male pregnant", SexMale, ProductionBull, ReproductivePregnant},
		{"unknown sex", Sex("unknown"), ProductionCalf, ReproductiveNotApplicable},
		{"unknown production", SexFemale, ProductionStatus("plowing"), ReproductiveOpen},
		{"unknown reproductive", SexFemale, ProductionMilking, ReproductiveStatus("maybe")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStatuses(tc.sex, tc.production, tc.reproductive)
			if err == nil {
				t.Fatalf("expected error for (%s, %s, %s)", tc.sex, tc.production, tc.reproductive)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestValidateStatuses_FirstViolationWins(t *testing.T) {
	// bull+female viola dos reglas a la vez; debe reportar production primero.
	err := ValidateStatuses(SexFemale, ProductionBull, ReproductivePregnant)
	if err == nil {
		t.Fatal("expected error")
	}
	want := `invalid input: production status "bull" requires a male animal`
	if got := err.Error(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
