package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/pkg/authz"
	"github.com/vantagecrm/vantage/pkg/composables"
)

// Capability objects for the coarse service-entry guard. Per-object
// decisions happen in the policy registry afterwards.
const (
	AccountsAuthzObject = "crm.accounts"
	LeadsAuthzObject    = "crm.leads"
	CasesAuthzObject    = "crm.cases"
	RulesAuthzObject    = "crm.assignment_rules"
)

const crmAuthzDomain = "crm"

var authorizeCRMFn = defaultAuthorizeCRM

func authorizeCRM(ctx context.Context, object, action string) error {
	return authorizeCRMFn(ctx, object, action)
}

func defaultAuthorizeCRM(ctx context.Context, object, action string) error {
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
		crmAuthzDomain,
		object,
		authz.NormalizeAction(action),
	)
	return authz.Use().Authorize(ctx, req)
}
