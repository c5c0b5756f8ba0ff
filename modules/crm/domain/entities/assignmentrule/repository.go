package assignmentrule

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/pkg/serrors"
)

var ErrNotFound = serrors.NewError("ASSIGNMENT_RULE_NOT_FOUND", "assignment rule not found", "")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Rule, error)
	GetAll(ctx context.Context) ([]Rule, error)
	// GetActiveByRecordType lists active rules for the tenant ordered
	// by priority descending, name ascending.
	GetActiveByRecordType(ctx context.Context, recordType string) ([]Rule, error)
	Create(ctx context.Context, entity Rule) (Rule, error)
	Update(ctx context.Context, entity Rule) (Rule, error)
	// UpdateCursor persists only the round robin position.
	UpdateCursor(ctx context.Context, id uuid.UUID, cursor int) error
	Delete(ctx context.Context, id uuid.UUID) error
}
