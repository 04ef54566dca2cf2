package farms

import "context"

type Repository interface {
	CreateFarm(ctx context.Context, f Farm) error
	GetFarm(ctx context.Context, id string) (Farm, error)

	CreatePaddock(ctx context.Context, p Paddock) error
	GetPaddock(ctx context.Context, id string) (Paddock, error)
	ListPaddocksByFarm(ctx context.Context, farmID string) ([]Paddock, error)

	CreateLot(ctx context.Context, l Lot) error
	GetLot(ctx context.Context, id string) (Lot, error)
	UpdateLot(ctx context.Context, l Lot) error
	ListLotsByPaddock(ctx context.Context, paddockID string) ([]Lot, error)

	AddMember(ctx context.Context, m Member) error
	GetMember(ctx context.Context, farmID, userID string) (Member, error)
	ListMembers(ctx context.Context, farmID string) ([]Member, error)
}
