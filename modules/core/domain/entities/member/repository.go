package member

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/pkg/policy"
)

var ErrNotFound = errors.New("tenant member not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Member, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (Member, error)
	// FilterViewable lists members matching the policy clause for the
	// requesting actor; the clause is the whole access predicate.
	FilterViewable(ctx context.Context, clause policy.Clause) ([]Member, error)
	Create(ctx context.Context, m Member) (Member, error)
	Update(ctx context.Context, m Member) error
	Delete(ctx context.Context, id uuid.UUID) error
}
