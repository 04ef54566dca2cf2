package memory

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("not found")

// snapshotter lo implementan los repos in-memory para participar del
// unit of work: capturar estado antes de fn y restaurarlo si fn falla.
type snapshotter interface {
	snapshot() any
	restore(snap any)
}

// UnitOfWork in-memory: serializa las operaciones con un lock global y hace
// snapshot/restore de los repos registrados. Suficiente para dev y tests;
// la atomicidad real de producción la da la implementación postgres.
type UnitOfWork struct {
	mu    sync.Mutex
	repos []snapshotter
}

func NewUnitOfWork(repos ...any) *UnitOfWork {
	u := &UnitOfWork{}
	for _, r := range repos {
		if s, ok := r.(snapshotter); ok {
			u.repos = append(u.repos, s)
		}
	}
	return u
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	snaps := make([]any, len(u.repos))
	for i, r := range u.repos {
		snaps[i] = r.snapshot()
	}

	if err := fn(ctx); err != nil {
		for i, r := range u.repos {
			r.restore(snaps[i])
		}
		return err
	}
	return nil
}
