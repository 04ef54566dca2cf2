package movements

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

type testRepo struct {
	rows []Movement
}

func (r *testRepo) Create(ctx context.Context, m Movement) error {
	r.rows = append(r.rows, m)
	return nil
}

func (r *testRepo) ListByEntity(ctx context.Context, entityType EntityType, entityID string, limit int) ([]Movement, error) {
	out := make([]Movement, 0)
	for _, m := range r.rows {
		if m.EntityType == entityType && m.EntityID == entityID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MovedAt.After(out[j].MovedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestRecorder_Record_StampsIDAndTime(t *testing.T) {
	repo := &testRepo{}
	rec := NewRecorder(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return now }

	from := "lot-1"
	m, err := rec.Record(context.Background(), RecordInput{
		EntityType: EntityAnimal,
		EntityID:   "animal-1",
		FromID:     &from,
		ToID:       "lot-2",
		Reason:     "rotación",
		MovedBy:    "user-1",
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if m.ID == "" {
		t.Fatalf("expected generated id")
	}
	if m.MovedAt != now {
		t.Fatalf("expected MovedAt = now")
	}
	if m.FromID == nil || *m.FromID != "lot-1" {
		t.Fatalf("expected FromID preserved")
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.rows))
	}
}

func TestRecorder_Record_Validation(t *testing.T) {
	rec := NewRecorder(&testRepo{})

	cases := []struct {
		name string
		in   RecordInput
	}{
		{"unknown entity type", RecordInput{EntityType: "BARN", EntityID: "x", ToID: "y", MovedBy: "u"}},
		{"missing entity id", RecordInput{EntityType: EntityAnimal, ToID: "y", MovedBy: "u"}},
		{"missing to id", RecordInput{EntityType: EntityAnimal, EntityID: "x", MovedBy: "u"}},
		{"missing moved by", RecordInput{EntityType: EntityLot, EntityID: "x", ToID: "y"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := rec.Record(context.Background(), tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRecorder_History_NewestFirstAndClamped(t *testing.T) {
	repo := &testRepo{}
	rec := NewRecorder(repo)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		rec.now = func() time.Time { return ts }
		if _, err := rec.Record(context.Background(), RecordInput{
			EntityType: EntityAnimal,
			EntityID:   "animal-1",
			ToID:       "lot-2",
			MovedBy:    "user-1",
		}); err != nil {
			t.Fatalf("Record #%d error: %v", i, err)
		}
	}

	got, err := rec.AnimalHistory(context.Background(), "animal-1", 0)
	if err != nil {
		t.Fatalf("AnimalHistory error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 movements, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].MovedAt.After(got[i-1].MovedAt) {
			t.Fatalf("expected newest first ordering")
		}
	}

	got, err = rec.AnimalHistory(context.Background(), "animal-1", 2)
	if err != nil {
		t.Fatalf("AnimalHistory error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit 2 respected, got %d", len(got))
	}
	if got[0].MovedAt != base.Add(4*time.Hour) {
		t.Fatalf("expected latest movement first")
	}
}

func TestRecorder_History_RejectsEmptyEntity(t *testing.T) {
	rec := NewRecorder(&testRepo{})
	if _, err := rec.History(context.Background(), EntityAnimal, "  ", 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
