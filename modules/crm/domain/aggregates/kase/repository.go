package kase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/pkg/policy"
	"github.com/vantagecrm/vantage/pkg/serrors"
)

var ErrNotFound = serrors.NewError("CASE_NOT_FOUND", "case not found", "")

type FindParams struct {
	Limit  int
	Offset int
	Query  string
	Status Status
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Case, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Case, error)
	FilterViewable(ctx context.Context, clause policy.Clause, params *FindParams) ([]Case, error)
	CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error)
	// GetSLAOverdue lists open cases past their due time that are not
	// yet marked breached.
	GetSLAOverdue(ctx context.Context, asOf time.Time, limit int) ([]Case, error)
	Create(ctx context.Context, entity Case) (Case, error)
	Update(ctx context.Context, entity Case) (Case, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
