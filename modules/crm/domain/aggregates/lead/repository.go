package lead

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/pkg/policy"
	"github.com/vantagecrm/vantage/pkg/serrors"
)

var ErrNotFound = serrors.NewError("LEAD_NOT_FOUND", "lead not found", "")

type FindParams struct {
	Limit  int
	Offset int
	Query  string
	Status Status
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Lead, error)
	FilterViewable(ctx context.Context, clause policy.Clause, params *FindParams) ([]Lead, error)
	CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Create(ctx context.Context, entity Lead) (Lead, error)
	Update(ctx context.Context, entity Lead) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
