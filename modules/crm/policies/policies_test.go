package policies

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/core/permissions"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/account"
	"github.com/vantagecrm/vantage/pkg/policy"
)

type testActor struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	superuser bool
	perms     map[string]bool
}

func (a testActor) ID() uuid.UUID        { return a.id }
func (a testActor) TenantID() uuid.UUID  { return a.tenantID }
func (a testActor) IsSuperuser() bool    { return a.superuser }
func (a testActor) Can(perm string) bool { return a.perms[perm] }

type testObject struct {
	entityType string
	tenantID   uuid.UUID
	ownerID    uuid.UUID
}

func (o testObject) EntityType() string  { return o.entityType }
func (o testObject) TenantID() uuid.UUID { return o.tenantID }
func (o testObject) OwnerID() uuid.UUID  { return o.ownerID }

func TestAccountPolicy_View(t *testing.T) {
	p := NewAccountPolicy()
	tenantA := uuid.New()
	tenantB := uuid.New()
	owner := uuid.New()
	obj := testObject{entityType: "accounts.Account", tenantID: tenantA, ownerID: owner}

	tests := []struct {
		name  string
		actor testActor
		want  bool
	}{
		{"superuser crosses tenants", testActor{id: uuid.New(), tenantID: tenantB, superuser: true}, true},
		{"wildcard within tenant", testActor{id: uuid.New(), tenantID: tenantA, perms: map[string]bool{permissions.AccountsWildcard: true}}, true},
		{"wildcard other tenant denied", testActor{id: uuid.New(), tenantID: tenantB, perms: map[string]bool{permissions.AccountsWildcard: true}}, false},
		{"owner", testActor{id: owner, tenantID: tenantA}, true},
		// Sharing a tenant with the owner grants nothing on its own.
		{"same tenant non-owner denied", testActor{id: uuid.New(), tenantID: tenantA}, false},
		{"other tenant denied", testActor{id: uuid.New(), tenantID: tenantB}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, p.CanView(tt.actor, obj))
		})
	}
}

func TestAccountPolicy_UnownedRecord(t *testing.T) {
	p := NewAccountPolicy()
	tenantA := uuid.New()
	obj := testObject{entityType: "accounts.Account", tenantID: tenantA}

	// owner_id of nil matches nobody, not even an actor with a nil id.
	require.False(t, p.CanView(testActor{id: uuid.Nil, tenantID: tenantA}, obj))
	require.False(t, p.CanView(testActor{id: uuid.New(), tenantID: tenantA}, obj))
	require.True(t, p.CanView(testActor{superuser: true}, obj))
}

func TestAccountPolicy_ChangeDelete(t *testing.T) {
	p := NewAccountPolicy()
	tenantA := uuid.New()
	owner := uuid.New()
	obj := testObject{entityType: "accounts.Account", tenantID: tenantA, ownerID: owner}

	require.True(t, p.CanChange(testActor{id: owner, tenantID: tenantA}, obj))
	require.True(t, p.CanDelete(testActor{id: owner, tenantID: tenantA}, obj))

	granted := testActor{id: uuid.New(), tenantID: tenantA, perms: map[string]bool{permissions.ChangeAccount: true}}
	require.True(t, p.CanChange(granted, obj))
	require.False(t, p.CanDelete(granted, obj))

	deleter := testActor{id: uuid.New(), tenantID: tenantA, perms: map[string]bool{permissions.DeleteAccount: true}}
	require.True(t, p.CanDelete(deleter, obj))
	require.False(t, p.CanChange(deleter, obj))

	crossTenant := testActor{id: uuid.New(), tenantID: uuid.New(), perms: map[string]bool{permissions.ChangeAccount: true}}
	require.False(t, p.CanChange(crossTenant, obj))
}

func TestLeadAndCasePolicies(t *testing.T) {
	tenantA := uuid.New()
	owner := uuid.New()

	leadObj := testObject{entityType: "leads.Lead", tenantID: tenantA, ownerID: owner}
	caseObj := testObject{entityType: "cases.Case", tenantID: tenantA, ownerID: owner}

	lp := NewLeadPolicy()
	cp := NewCasePolicy()

	stranger := testActor{id: uuid.New(), tenantID: tenantA}
	require.False(t, lp.CanView(stranger, leadObj))
	require.False(t, cp.CanView(stranger, caseObj))

	leadWildcard := testActor{id: uuid.New(), tenantID: tenantA, perms: map[string]bool{permissions.LeadsWildcard: true}}
	require.True(t, lp.CanView(leadWildcard, leadObj))
	// A leads grant says nothing about cases.
	require.False(t, cp.CanView(leadWildcard, caseObj))
}

func TestViewableClause(t *testing.T) {
	p := NewAccountPolicy()
	tenantA := uuid.New()
	actorID := uuid.New()

	require.Equal(t, policy.AllowAll, p.ViewableClause(testActor{superuser: true}))
	require.Equal(t, policy.DenyAll, p.ViewableClause(testActor{id: actorID}))

	wildcard := p.ViewableClause(testActor{id: actorID, tenantID: tenantA, perms: map[string]bool{permissions.AccountsWildcard: true}})
	require.Equal(t, "tenant_id = $1", wildcard.Expr)
	require.Equal(t, []any{tenantA}, wildcard.Args)

	owned := p.ViewableClause(testActor{id: actorID, tenantID: tenantA})
	require.Equal(t, "tenant_id = $1 AND owner_id = $2", owned.Expr)
	require.Equal(t, []any{tenantA, actorID}, owned.Args)
}

// The in-memory filter and the per-object predicate must agree.
func TestFilterViewableEquivalence(t *testing.T) {
	p := NewAccountPolicy()
	tenantA := uuid.New()
	tenantB := uuid.New()
	actor := testActor{id: uuid.New(), tenantID: tenantA}

	objs := []account.Account{
		account.New(tenantA, "mine", account.WithOwnerID(actor.id)),
		account.New(tenantA, "colleague", account.WithOwnerID(uuid.New())),
		account.New(tenantB, "foreign", account.WithOwnerID(actor.id)),
		account.New(tenantA, "unowned"),
	}

	filtered := policy.FilterViewable(p, actor, objs)
	require.Len(t, filtered, 1)
	require.Equal(t, "mine", filtered[0].Name())
	for _, obj := range objs {
		require.Equal(t, p.CanView(actor, obj), contains(filtered, obj.ID()))
	}

	// Filtering is idempotent.
	again := policy.FilterViewable(p, actor, filtered)
	require.Equal(t, filtered, again)
}

func contains(objs []account.Account, id uuid.UUID) bool {
	for _, o := range objs {
		if o.ID() == id {
			return true
		}
	}
	return false
}
