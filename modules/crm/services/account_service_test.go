package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/core/domain/aggregates/user"
	"github.com/vantagecrm/vantage/modules/core/permissions"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/account"
	crmpolicies "github.com/vantagecrm/vantage/modules/crm/policies"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/policy"
	"github.com/vantagecrm/vantage/pkg/serrors"
)

type stubPublisher struct{}

func (stubPublisher) Publish(args ...interface{})     {}
func (stubPublisher) Subscribe(handler interface{})   {}
func (stubPublisher) Unsubscribe(handler interface{}) {}
func (stubPublisher) Clear()                          {}
func (stubPublisher) SubscribersCount() int           { return 0 }

func crmRegistry(t *testing.T) *policy.Registry {
	t.Helper()
	reg := policy.NewRegistry()
	reg.Register("accounts.Account", crmpolicies.NewAccountPolicy())
	reg.Register("leads.Lead", crmpolicies.NewLeadPolicy())
	reg.Register("cases.Case", crmpolicies.NewCasePolicy())
	reg.Freeze()
	return reg
}

func userCtx(tenantID uuid.UUID, u user.User) context.Context {
	return composables.WithUser(testCtx(tenantID), u)
}

func TestAccountService_CreateDeniedByGuard(t *testing.T) {
	t.Cleanup(func() { authorizeCRMFn = defaultAuthorizeCRM })

	denied := serrors.NewError("AUTHZ_FORBIDDEN", "access denied", "")
	var gotObject, gotAction string
	authorizeCRMFn = func(_ context.Context, object, action string) error {
		gotObject = object
		gotAction = action
		return denied
	}

	repo := newMemAccountRepo()
	svc := NewAccountService(repo, stubPublisher{}, crmRegistry(t))

	tenantID := uuid.New()
	_, err := svc.Create(userCtx(tenantID, user.New("rep@acme.test")), account.New(tenantID, "Acme"))
	require.ErrorIs(t, err, denied)
	require.Equal(t, AccountsAuthzObject, gotObject)
	require.Equal(t, "create", gotAction)
	require.Empty(t, repo.records)
}

func TestAccountService_GetByID_OwnershipStrict(t *testing.T) {
	tenantID := uuid.New()
	owner := user.New("owner@acme.test", user.WithTenantID(tenantID))
	coworker := user.New("coworker@acme.test", user.WithTenantID(tenantID))

	repo := newMemAccountRepo()
	acc := account.New(tenantID, "Acme", account.WithOwnerID(owner.ID()))
	repo.records[acc.ID()] = acc

	svc := NewAccountService(repo, stubPublisher{}, crmRegistry(t))

	got, err := svc.GetByID(userCtx(tenantID, owner), acc.ID())
	require.NoError(t, err)
	require.Equal(t, acc.ID(), got.ID())

	// Same tenant without ownership or a grant is not enough.
	_, err = svc.GetByID(userCtx(tenantID, coworker), acc.ID())
	require.ErrorIs(t, err, policy.ErrForbidden)

	granted := user.New("manager@acme.test",
		user.WithTenantID(tenantID),
		user.WithPermissions([]string{permissions.AccountsWildcard}),
	)
	_, err = svc.GetByID(userCtx(tenantID, granted), acc.ID())
	require.NoError(t, err)
}

func TestAccountService_UpdateOwnerOrChangeGrant(t *testing.T) {
	t.Cleanup(func() { authorizeCRMFn = defaultAuthorizeCRM })
	authorizeCRMFn = func(context.Context, string, string) error { return nil }

	tenantID := uuid.New()
	owner := user.New("owner@acme.test", user.WithTenantID(tenantID))

	repo := newMemAccountRepo()
	acc := account.New(tenantID, "Acme", account.WithOwnerID(owner.ID()))
	repo.records[acc.ID()] = acc

	svc := NewAccountService(repo, stubPublisher{}, crmRegistry(t))

	// The owner may change their own record without an explicit grant.
	_, err := svc.Update(userCtx(tenantID, owner), acc.WithOwner(owner.ID()))
	require.NoError(t, err)

	// A coworker in the same tenant without the change grant may not.
	coworker := user.New("coworker@acme.test", user.WithTenantID(tenantID))
	_, err = svc.Update(userCtx(tenantID, coworker), acc)
	require.ErrorIs(t, err, policy.ErrForbidden)

	editor := user.New("editor@acme.test",
		user.WithTenantID(tenantID),
		user.WithPermissions([]string{permissions.ChangeAccount}),
	)
	_, err = svc.Update(userCtx(tenantID, editor), acc)
	require.NoError(t, err)
}

func TestAccountService_SystemCallerBypassesPolicies(t *testing.T) {
	tenantID := uuid.New()
	repo := newMemAccountRepo()
	acc := account.New(tenantID, "Acme", account.WithOwnerID(uuid.New()))
	repo.records[acc.ID()] = acc

	svc := NewAccountService(repo, stubPublisher{}, crmRegistry(t))

	// No user in context means an internal caller.
	got, err := svc.GetByID(testCtx(tenantID), acc.ID())
	require.NoError(t, err)
	require.Equal(t, acc.ID(), got.ID())
}

func TestAccountService_Assign(t *testing.T) {
	tenantID := uuid.New()
	repo := newMemAccountRepo()
	acc := account.New(tenantID, "Acme")
	repo.records[acc.ID()] = acc

	svc := NewAccountService(repo, stubPublisher{}, crmRegistry(t))

	newOwner := uuid.New()
	updated, err := svc.Assign(testCtx(tenantID), acc.ID(), newOwner)
	require.NoError(t, err)
	require.Equal(t, newOwner, updated.OwnerID())
	require.Equal(t, newOwner, repo.records[acc.ID()].OwnerID())
}
