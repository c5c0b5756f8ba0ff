package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/pkg/authz"
	"github.com/vantagecrm/vantage/pkg/composables"
)

const (
	TenantsAuthzObject = "core.tenants"
	UsersAuthzObject   = "core.users"
	MembersAuthzObject = "core.members"
)

const coreAuthzDomain = "core"

var authorizeCoreFn = defaultAuthorizeCore

func authorizeCore(ctx context.Context, object, action string) error {
	return authorizeCoreFn(ctx, object, action)
}

func defaultAuthorizeCore(ctx context.Context, object, action string) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		tenantID = uuid.Nil
	}

	currentUser, err := composables.UseUser(ctx)
	if err != nil {
		// Internal callers (workers, seeds) carry no user.
		if errors.Is(err, composables.ErrNoUser) {
			return nil
		}
		return err
	}

	req := authz.NewRequest(
		authz.SubjectForUser(tenantID, currentUser.ID()),
		coreAuthzDomain,
		object,
		authz.NormalizeAction(action),
	)
	return authz.Use().Authorize(ctx, req)
}
