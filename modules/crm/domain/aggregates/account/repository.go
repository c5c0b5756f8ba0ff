package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/pkg/policy"
	"github.com/vantagecrm/vantage/pkg/serrors"
)

var ErrNotFound = serrors.NewError("ACCOUNT_NOT_FOUND", "account not found", "")

type FindParams struct {
	Limit  int
	Offset int
	Query  string
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Account, error)
	// FilterViewable lists rows matching the caller's viewable clause,
	// applied in SQL on top of tenant isolation.
	FilterViewable(ctx context.Context, clause policy.Clause, params *FindParams) ([]Account, error)
	CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Create(ctx context.Context, entity Account) (Account, error)
	Update(ctx context.Context, entity Account) (Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
