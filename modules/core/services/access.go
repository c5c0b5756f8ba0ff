package services

import (
	"context"
	"errors"

	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/policy"
)

func useActor(ctx context.Context) (policy.Actor, bool, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		if errors.Is(err, composables.ErrNoUser) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}

func ensureCanView(ctx context.Context, reg *policy.Registry, obj policy.Object) error {
	actor, ok, err := useActor(ctx)
	if err != nil || !ok {
		return err
	}
	if !reg.CanView(actor, obj) {
		return policy.ErrForbidden.WithDetail(obj.EntityType())
	}
	return nil
}

func ensureCanChange(ctx context.Context, reg *policy.Registry, obj policy.Object) error {
	actor, ok, err := useActor(ctx)
	if err != nil || !ok {
		return err
	}
	if !reg.CanChange(actor, obj) {
		return policy.ErrForbidden.WithDetail(obj.EntityType())
	}
	return nil
}

func ensureCanDelete(ctx context.Context, reg *policy.Registry, obj policy.Object) error {
	actor, ok, err := useActor(ctx)
	if err != nil || !ok {
		return err
	}
	if !reg.CanDelete(actor, obj) {
		return policy.ErrForbidden.WithDetail(obj.EntityType())
	}
	return nil
}

func viewableClause(ctx context.Context, reg *policy.Registry, entityType string) (policy.Clause, error) {
	actor, ok, err := useActor(ctx)
	if err != nil {
		return policy.DenyAll, err
	}
	if !ok {
		return policy.AllowAll, nil
	}
	p, err := reg.Lookup(entityType)
	if err != nil {
		return policy.DenyAll, err
	}
	return p.ViewableClause(actor), nil
}
