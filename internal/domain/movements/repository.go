package movements

import "context"

// Repository es append-only: no hay Update ni Delete.
type Repository interface {
	Create(ctx context.Context, m Movement) error
	ListByEntity(ctx context.Context, entityType EntityType, entityID string, limit int) ([]Movement, error)
}
