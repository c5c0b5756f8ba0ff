package composables

import (
	"context"

	"github.com/vantagecrm/vantage/pkg/constants"
	"github.com/vantagecrm/vantage/pkg/policy"
	"github.com/vantagecrm/vantage/pkg/serrors"
)

var ErrNoPolicies = serrors.NewError("NO_POLICIES_IN_CONTEXT", "no policy registry in context", "")

// WithPolicies returns a new context carrying the frozen policy registry.
func WithPolicies(ctx context.Context, reg *policy.Registry) context.Context {
	return context.WithValue(ctx, constants.PoliciesKey, reg)
}

// UsePolicies returns the policy registry from the context.
func UsePolicies(ctx context.Context) (*policy.Registry, error) {
	reg, ok := ctx.Value(constants.PoliciesKey).(*policy.Registry)
	if !ok {
		return nil, ErrNoPolicies
	}
	return reg, nil
}
